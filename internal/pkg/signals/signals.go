// Package signals 记录 API 请求的延迟与失败（5xx），按分钟分桶，
// 供健康评分读取尾随窗口。Redis 可用时跨实例共享，否则使用进程内环形桶。
package signals

import (
	"context"
	"time"

	"go-adminstats/internal/service"
)

// Recorder 写入端（中间件）与读取端（StatsService）
type Recorder interface {
	Record(ctx context.Context, latency time.Duration, failed bool)
	Window(ctx context.Context, window time.Duration) (service.SignalWindow, error)
}

type bucket struct {
	minute    int64
	requests  int64
	errors    int64
	latencyUS int64
}

func minuteOf(t time.Time) int64 { return t.Unix() / 60 }

// minutesIn 窗口覆盖的分钟桶数（含当前分钟），至少 1
func minutesIn(window time.Duration) int64 {
	n := int64(window / time.Minute)
	if n < 1 {
		n = 1
	}
	return n
}

func summarize(bs []bucket) service.SignalWindow {
	var w service.SignalWindow
	var latSum int64
	for _, b := range bs {
		w.Requests += b.requests
		w.Errors += b.errors
		latSum += b.latencyUS
	}
	if w.Requests > 0 {
		w.AvgLatency = time.Duration(latSum/w.Requests) * time.Microsecond
	}
	return w
}
