package observability

import (
	"go-adminstats/internal/logging"

	"github.com/gin-gonic/gin"
)

// LoggerContextMiddleware 把带 trace_id 的 logger 放入请求 context，
// handler 通过 logging.FromContext(c.Request.Context(), fallback) 获取。
// user_id 在 Auth 中追加。
func LoggerContextMiddleware(base *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(logging.IntoContext(ctx, base.WithContext(ctx)))
		c.Next()
	}
}
