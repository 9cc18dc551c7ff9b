package admin

import (
	"fmt"
	"net/http"
	"strconv"

	"go-adminstats/internal/logging"
	"go-adminstats/internal/service"
	"go-adminstats/internal/util/retcode"
	"go-adminstats/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// qStr 空串视为未提供
func qStr(c *gin.Context, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

// qPositiveInt 参数缺省返回 nil；出现时必须是正整数
func qPositiveInt(c *gin.Context, key string) (*int, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 1 {
		return nil, fmt.Errorf("%s must be a positive integer", key)
	}
	return &i, nil
}

// writeError 按错误分类映射 HTTP 状态码与业务码
func writeError(c *gin.Context, lg *logging.Logger, err error) {
	kind := service.KindOf(err)
	l := logging.FromContext(c.Request.Context(), lg)
	switch kind {
	case service.KindValidation:
		response.Error(c, http.StatusBadRequest, retcode.PARAM_INVALID, err.Error())
	case service.KindAuth:
		response.Error(c, http.StatusForbidden, retcode.PERMISSION_DENIED, "")
	case service.KindDeadlineExceeded:
		l.Warn("admin read timed out", zap.String("kind", string(kind)), zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, retcode.DB_READ_TIMEOUT, "")
	default:
		l.Error("admin read failed", zap.String("kind", string(kind)), zap.Error(err))
		response.Error(c, http.StatusBadGateway, retcode.DB_READ_ERROR, "")
	}
	_ = c.Error(err)
}
