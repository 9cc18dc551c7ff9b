package service

import (
	"math"
	"time"

	"go-adminstats/internal/domain/model"
)

// HealthThresholds 两级阈值：>= Degraded 为 degraded，>= Down 为 down
type HealthThresholds struct {
	DBDegraded         time.Duration
	DBDown             time.Duration
	APIDegraded        time.Duration
	APIDown            time.Duration
	ErrorDegradedRatio float64
	ErrorDownRatio     float64
	PercentageFloor    float64 // 延迟达到 down 阈值时的百分比下限
}

func DefaultHealthThresholds() HealthThresholds {
	return HealthThresholds{
		DBDegraded:         100 * time.Millisecond,
		DBDown:             time.Second,
		APIDegraded:        300 * time.Millisecond,
		APIDown:            2 * time.Second,
		ErrorDegradedRatio: 0.05,
		ErrorDownRatio:     0.25,
	}
}

// HealthMeasurements 由调用方采集；HealthScorer 本身不做 I/O
type HealthMeasurements struct {
	StoreLatency time.Duration
	APILatency   time.Duration
	ErrorRatio   float64
}

type HealthScorer struct {
	t HealthThresholds
}

func NewHealthScorer(t HealthThresholds) *HealthScorer {
	d := DefaultHealthThresholds()
	// 每组须满足 0 < degraded < down，否则整组回退默认值
	if t.DBDegraded <= 0 || t.DBDown <= t.DBDegraded {
		t.DBDegraded, t.DBDown = d.DBDegraded, d.DBDown
	}
	if t.APIDegraded <= 0 || t.APIDown <= t.APIDegraded {
		t.APIDegraded, t.APIDown = d.APIDegraded, d.APIDown
	}
	if t.ErrorDegradedRatio <= 0 || t.ErrorDownRatio <= t.ErrorDegradedRatio {
		t.ErrorDegradedRatio, t.ErrorDownRatio = d.ErrorDegradedRatio, d.ErrorDownRatio
	}
	t.PercentageFloor = clamp(t.PercentageFloor, 0, 100)
	return &HealthScorer{t: t}
}

// Thresholds 补齐默认值后的生效阈值
func (h *HealthScorer) Thresholds() HealthThresholds { return h.t }

// Score database 取存储延迟；api 取 API 延迟与错误率中较差者；整体取三者最差
func (h *HealthScorer) Score(m HealthMeasurements) model.SystemHealth {
	db := h.latencyMetric(m.StoreLatency, h.t.DBDegraded, h.t.DBDown)
	apiLat := h.latencyMetric(m.APILatency, h.t.APIDegraded, h.t.APIDown)
	errRate := h.errorMetric(m.ErrorRatio)

	api := apiLat
	api.Status = model.WorseStatus(apiLat.Status, errRate.Status)

	return model.SystemHealth{
		Status:    model.WorseStatus(db.Status, api.Status),
		Database:  db,
		API:       api,
		ErrorRate: errRate,
	}
}

func (h *HealthScorer) latencyMetric(lat, degraded, down time.Duration) model.HealthMetric {
	if lat < 0 {
		lat = 0
	}
	ms := float64(lat) / float64(time.Millisecond)
	downMs := float64(down) / float64(time.Millisecond)
	floor := h.t.PercentageFloor
	pct := clamp(100-(100-floor)*ms/downMs, floor, 100)
	return model.HealthMetric{
		Status:         levelStatus(ms, float64(degraded)/float64(time.Millisecond), downMs),
		ResponseTimeMs: ms,
		Percentage:     pct,
	}
}

func (h *HealthScorer) errorMetric(ratio float64) model.HealthMetric {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	return model.HealthMetric{
		Status:     levelStatus(ratio, h.t.ErrorDegradedRatio, h.t.ErrorDownRatio),
		Percentage: clamp(ratio*100, 0, 100),
	}
}

func levelStatus(v, degraded, down float64) model.HealthStatus {
	switch {
	case v >= down:
		return model.HealthDown
	case v >= degraded:
		return model.HealthDegraded
	default:
		return model.HealthHealthy
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
