package observability

import (
	"time"

	"go-adminstats/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog 输出基础 HTTP 访问日志：method, path, status, latency, ip
func AccessLog(l *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		// Auth 写入的 user_id 在 c.Request 上，重新派生以带上该字段
		lg := l.WithContext(c.Request.Context())
		if c.Writer.Status() >= 500 {
			lg.Warn("http_access", fields...)
			return
		}
		lg.Info("http_access", fields...)
	}
}
