package retcode

// 业务码沿用旧系统取值，HTTP 状态码另行表达
const (
	SUCCESS              = 1
	INVALID              = -1
	DB_READ_ERROR        = -3
	DB_READ_TIMEOUT      = -23
	AUTH_ERROR           = -14
	PERMISSION_DENIED    = -15
	PARAM_INVALID        = -995
	ACCESS_TOKEN_TIMEOUT = -996
	UNKNOWN              = -998
	EXCEPTION            = -999
)

type CodeInfo struct {
	Code    int
	Message string
}

func All() map[string]CodeInfo {
	return map[string]CodeInfo{
		"SUCCESS":              {SUCCESS, "请求成功"},
		"INVALID":              {INVALID, "非法操作"},
		"DB_READ_ERROR":        {DB_READ_ERROR, "数据读取失败"},
		"DB_READ_TIMEOUT":      {DB_READ_TIMEOUT, "数据读取超时"},
		"AUTH_ERROR":           {AUTH_ERROR, "权限认证失败"},
		"PERMISSION_DENIED":    {PERMISSION_DENIED, "无访问权限"},
		"PARAM_INVALID":        {PARAM_INVALID, "数据类型非法"},
		"ACCESS_TOKEN_TIMEOUT": {ACCESS_TOKEN_TIMEOUT, "身份令牌过期"},
		"UNKNOWN":              {UNKNOWN, "未知错误"},
		"EXCEPTION":            {EXCEPTION, "系统异常"},
	}
}

// Message 返回业务码的默认提示
func Message(code int) string {
	for _, info := range All() {
		if info.Code == code {
			return info.Message
		}
	}
	return ""
}
