package observability

import (
	"context"
	"strconv"
	"time"

	"go-adminstats/internal/metrics"

	"github.com/gin-gonic/gin"
)

// SignalRecorder 请求信号写入端（signals.MemoryRecorder / signals.RedisRecorder）
type SignalRecorder interface {
	Record(ctx context.Context, latency time.Duration, failed bool)
}

// Metrics 记录 prometheus 指标；rec 非空时同时写入健康评分使用的请求信号（5xx 记为失败）
func Metrics(rec SignalRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.Inflight.Inc()
		start := time.Now()
		c.Next()
		metrics.Inflight.Dec()
		elapsed := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		metrics.RequestDuration.WithLabelValues(path, c.Request.Method).Observe(elapsed.Seconds())
		metrics.RequestTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(status)).Inc()
		if rec != nil && path != "/metrics" {
			rec.Record(context.WithoutCancel(c.Request.Context()), elapsed, status >= 500)
		}
	}
}
