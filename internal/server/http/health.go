package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go-adminstats/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// DepCheck 单个外部依赖的就绪探测
type DepCheck struct {
	Name    string
	Timeout time.Duration
	Up      prometheus.Gauge
	Check   func(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck 未配置的依赖（nil）不参与探测
func PingCheck(name string, p Pinger, gauge prometheus.Gauge) *DepCheck {
	if p == nil {
		return nil
	}
	return &DepCheck{Name: name, Timeout: 300 * time.Millisecond, Up: gauge, Check: p.Ping}
}

// HealthChecker 聚合健康检查（liveness / readiness）
type HealthChecker struct {
	checks []DepCheck

	cacheMu     sync.Mutex
	cacheResult map[string]interface{}
	cacheStatus int
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

func NewHealthChecker(checks ...*DepCheck) *HealthChecker {
	h := &HealthChecker{cacheTTL: 2 * time.Second}
	for _, c := range checks {
		if c != nil {
			h.checks = append(h.checks, *c)
		}
	}
	return h
}

// Liveness 仅表示进程活着，不依赖外部组件
func (h *HealthChecker) Liveness() map[string]interface{} {
	return map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
}

// Readiness 并发探测全部依赖，带短缓存与耗时指标；任一依赖不可用返回 503
func (h *HealthChecker) Readiness(ctx context.Context) (map[string]interface{}, int) {
	h.cacheMu.Lock()
	if time.Now().Before(h.cacheExpiry) && h.cacheResult != nil {
		res, code := h.cacheResult, h.cacheStatus
		h.cacheMu.Unlock()
		return res, code
	}
	h.cacheMu.Unlock()

	type depResult struct {
		name string
		up   bool
		err  string
		dur  time.Duration
	}
	results := make([]depResult, len(h.checks))
	var wg sync.WaitGroup
	for i, dc := range h.checks {
		wg.Add(1)
		go func(i int, dc DepCheck) {
			defer wg.Done()
			start := time.Now()
			out := depResult{name: dc.Name}
			ctx2, cancel := context.WithTimeout(ctx, dc.Timeout)
			if err := dc.Check(ctx2); err == nil {
				out.up = true
			} else {
				out.err = err.Error()
			}
			cancel()
			out.dur = time.Since(start)
			metrics.DependencyCheckDuration.WithLabelValues(dc.Name).Observe(out.dur.Seconds())
			if dc.Up != nil {
				if out.up {
					dc.Up.Set(1)
				} else {
					dc.Up.Set(0)
				}
			}
			results[i] = out
		}(i, dc)
	}
	wg.Wait()

	res := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	detail := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		if r.up {
			res[r.name] = "up"
		} else {
			res[r.name] = r.err
			res["status"] = "degraded"
		}
		detail = append(detail, map[string]interface{}{
			"dep": r.name, "up": r.up, "error": r.err, "duration_ms": float64(r.dur.Microseconds()) / 1000.0,
		})
	}
	res["detail"] = detail

	code := http.StatusOK
	if res["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	h.cacheMu.Lock()
	h.cacheResult, h.cacheStatus = res, code
	h.cacheExpiry = time.Now().Add(h.cacheTTL)
	h.cacheMu.Unlock()
	return res, code
}
