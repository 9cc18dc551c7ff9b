package signals

import (
	"context"
	"sync"
	"time"

	"go-adminstats/internal/service"
)

// MemoryRecorder 进程内环形分钟桶
type MemoryRecorder struct {
	mu      sync.Mutex
	buckets []bucket
	now     func() time.Time
}

// NewMemoryRecorder size 为保留的分钟数
func NewMemoryRecorder(size int) *MemoryRecorder {
	if size < 1 {
		size = 1
	}
	return &MemoryRecorder{buckets: make([]bucket, size), now: time.Now}
}

func (m *MemoryRecorder) Record(_ context.Context, latency time.Duration, failed bool) {
	cur := minuteOf(m.now())
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &m.buckets[int(cur%int64(len(m.buckets)))]
	if b.minute != cur {
		*b = bucket{minute: cur}
	}
	b.requests++
	if failed {
		b.errors++
	}
	b.latencyUS += latency.Microseconds()
}

func (m *MemoryRecorder) Window(ctx context.Context, window time.Duration) (service.SignalWindow, error) {
	if err := ctx.Err(); err != nil {
		return service.SignalWindow{}, err
	}
	cur := minuteOf(m.now())
	oldest := cur - minutesIn(window) + 1
	m.mu.Lock()
	picked := make([]bucket, 0, len(m.buckets))
	for _, b := range m.buckets {
		if b.minute >= oldest && b.minute <= cur && b.requests > 0 {
			picked = append(picked, b)
		}
	}
	m.mu.Unlock()
	return summarize(picked), nil
}
