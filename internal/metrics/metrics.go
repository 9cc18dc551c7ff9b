package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})
	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Database connectivity (1=up,0=down)",
	})
	RedisUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redis_up",
		Help: "Redis connectivity (1=up,0=down)",
	})
	KafkaUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kafka_up",
		Help: "Kafka connectivity (1=up,0=down)",
	})
	EtcdUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etcd_up",
		Help: "Etcd connectivity (1=up,0=down)",
	})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Latency of dependency health checks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1},
	}, []string{"dep"})

	// ===== 仪表盘 / 审计查询 =====
	StatsSnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "admin_stats_snapshot_duration_seconds",
		Help:    "Latency of a full admin stats fan-out",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	StatsTaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admin_stats_task_duration_seconds",
		Help:    "Latency of each stats sub-query",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	}, []string{"task"})
	StatsFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_stats_failures_total",
		Help: "Failed stats snapshots / audit queries by error kind",
	}, []string{"op", "kind"})
	AuditCountCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_count_cache_total",
		Help: "Audit total-count cache lookups (hit/miss)",
	}, []string{"result"})
	AuditIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_ingest_total",
		Help: "Audit events consumed from kafka (ok/invalid/error)",
	}, []string{"result"})
)
