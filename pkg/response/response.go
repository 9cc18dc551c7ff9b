package response

import (
	"net/http"

	"go-adminstats/internal/util/retcode"

	"github.com/gin-gonic/gin"
)

type Body struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// OK 成功时直接输出资源本身
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error 约定：code 传入 legacy 业务码(负值)。若传入 >=0，将自动转为 retcode.INVALID。
// status 为 HTTP 状态码；msg 为空时取业务码默认提示。
func Error(c *gin.Context, status, code int, msg string) {
	if code >= 0 {
		code = retcode.INVALID
	}
	if msg == "" {
		msg = retcode.Message(code)
	}
	c.JSON(status, Body{Code: code, Msg: msg, Data: nil})
}

// Abort 写出错误并终止后续 handler
func Abort(c *gin.Context, status, code int, msg string) {
	Error(c, status, code, msg)
	c.Abort()
}
