package service

import (
	"math"
	"testing"
	"time"

	"go-adminstats/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestHealthScorer_PercentageAlwaysInRange(t *testing.T) {
	for _, floor := range []float64{0, 20} {
		th := DefaultHealthThresholds()
		th.PercentageFloor = floor
		h := NewHealthScorer(th)
		latencies := []time.Duration{-time.Second, 0, time.Millisecond, 500 * time.Millisecond, time.Second, time.Hour, math.MaxInt64}
		ratios := []float64{math.NaN(), -1, 0, 0.1, 1, 42, math.Inf(1)}
		for _, lat := range latencies {
			for _, r := range ratios {
				s := h.Score(HealthMeasurements{StoreLatency: lat, APILatency: lat, ErrorRatio: r})
				for _, m := range []model.HealthMetric{s.Database, s.API, s.ErrorRate} {
					assert.GreaterOrEqual(t, m.Percentage, 0.0)
					assert.LessOrEqual(t, m.Percentage, 100.0)
					assert.GreaterOrEqual(t, m.ResponseTimeMs, 0.0)
				}
			}
		}
	}
}

func TestHealthScorer_LatencyMapping(t *testing.T) {
	th := DefaultHealthThresholds()
	th.PercentageFloor = 10
	h := NewHealthScorer(th)

	s := h.Score(HealthMeasurements{})
	assert.Equal(t, 100.0, s.Database.Percentage)
	assert.Equal(t, model.HealthHealthy, s.Status)

	s = h.Score(HealthMeasurements{StoreLatency: 500 * time.Millisecond})
	assert.InDelta(t, 55.0, s.Database.Percentage, 1e-9)
	assert.Equal(t, model.HealthDegraded, s.Database.Status)
	assert.InDelta(t, 500.0, s.Database.ResponseTimeMs, 1e-9)

	s = h.Score(HealthMeasurements{StoreLatency: 10 * time.Second})
	assert.Equal(t, 10.0, s.Database.Percentage)
	assert.Equal(t, model.HealthDown, s.Database.Status)
	assert.Equal(t, model.HealthDown, s.Status)
}

func TestHealthScorer_ErrorRate(t *testing.T) {
	h := NewHealthScorer(DefaultHealthThresholds())

	s := h.Score(HealthMeasurements{ErrorRatio: 0.1})
	assert.InDelta(t, 10.0, s.ErrorRate.Percentage, 1e-9)
	assert.Equal(t, model.HealthDegraded, s.ErrorRate.Status)

	s = h.Score(HealthMeasurements{ErrorRatio: math.NaN()})
	assert.Zero(t, s.ErrorRate.Percentage)
	assert.Equal(t, model.HealthHealthy, s.ErrorRate.Status)

	s = h.Score(HealthMeasurements{ErrorRatio: 3})
	assert.Equal(t, 100.0, s.ErrorRate.Percentage)
	assert.Equal(t, model.HealthDown, s.ErrorRate.Status)
}

func TestHealthScorer_APIIsWorseOfLatencyAndErrors(t *testing.T) {
	h := NewHealthScorer(DefaultHealthThresholds())

	// 延迟正常但错误率很高
	s := h.Score(HealthMeasurements{APILatency: 10 * time.Millisecond, ErrorRatio: 0.5})
	assert.Equal(t, model.HealthDown, s.API.Status)
	assert.Greater(t, s.API.Percentage, 99.0)
	assert.Equal(t, model.HealthHealthy, s.Database.Status)
	assert.Equal(t, model.HealthDown, s.Status)

	// 错误率正常但延迟偏高
	s = h.Score(HealthMeasurements{APILatency: 400 * time.Millisecond})
	assert.Equal(t, model.HealthDegraded, s.API.Status)
	assert.Equal(t, model.HealthDegraded, s.Status)
}

func TestNewHealthScorer_FillsMissingThresholds(t *testing.T) {
	h := NewHealthScorer(HealthThresholds{PercentageFloor: 150})
	assert.Equal(t, DefaultHealthThresholds().DBDown, h.t.DBDown)
	assert.Equal(t, 100.0, h.t.PercentageFloor)
}

func TestNewHealthScorer_InvalidPairsFallBackToDefaults(t *testing.T) {
	d := DefaultHealthThresholds()
	h := NewHealthScorer(HealthThresholds{
		DBDegraded:         0,
		DBDown:             time.Second,
		APIDegraded:        3 * time.Second,
		APIDown:            time.Second,
		ErrorDegradedRatio: 0.5,
		ErrorDownRatio:     0.5,
	})
	got := h.Thresholds()
	assert.Equal(t, d.DBDegraded, got.DBDegraded)
	assert.Equal(t, d.DBDown, got.DBDown)
	assert.Equal(t, d.APIDegraded, got.APIDegraded)
	assert.Equal(t, d.APIDown, got.APIDown)
	assert.Equal(t, d.ErrorDegradedRatio, got.ErrorDegradedRatio)
	assert.Equal(t, d.ErrorDownRatio, got.ErrorDownRatio)

	// 近零延迟不再被判为 degraded；介于两阈值之间仍是 degraded
	s := h.Score(HealthMeasurements{StoreLatency: time.Millisecond, APILatency: time.Millisecond})
	assert.Equal(t, model.HealthHealthy, s.Status)
	s = h.Score(HealthMeasurements{APILatency: 500 * time.Millisecond})
	assert.Equal(t, model.HealthDegraded, s.API.Status)
}

func TestNewHealthScorer_KeepsValidCustomPairs(t *testing.T) {
	h := NewHealthScorer(HealthThresholds{
		DBDegraded: 50 * time.Millisecond, DBDown: 200 * time.Millisecond,
		APIDegraded: 100 * time.Millisecond, APIDown: 400 * time.Millisecond,
		ErrorDegradedRatio: 0.01, ErrorDownRatio: 0.1,
	})
	got := h.Thresholds()
	assert.Equal(t, 50*time.Millisecond, got.DBDegraded)
	assert.Equal(t, 400*time.Millisecond, got.APIDown)
	assert.Equal(t, 0.1, got.ErrorDownRatio)
}
