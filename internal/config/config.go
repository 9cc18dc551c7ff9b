package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Storage struct {
		Driver string `mapstructure:"driver"` // postgres | memory
	} `mapstructure:"storage"`
	Postgres struct {
		DSN         string `mapstructure:"dsn"`
		MaxOpen     int    `mapstructure:"max_open"`
		MaxIdle     int    `mapstructure:"max_idle"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"postgres"`
	Redis struct {
		Addr           string `mapstructure:"addr"` // 为空表示禁用
		Password       string `mapstructure:"password"`
		DB             int    `mapstructure:"db"`
		DialTimeoutMS  int    `mapstructure:"dial_timeout_ms"`
		ReadTimeoutMS  int    `mapstructure:"read_timeout_ms"`
		WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
		PingTimeoutMS  int    `mapstructure:"ping_timeout_ms"`
		HeartbeatSec   int    `mapstructure:"heartbeat_sec"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers      []string `mapstructure:"brokers"`
		AuditTopic   string   `mapstructure:"audit_topic"`
		GroupID      string   `mapstructure:"group_id"`
		ConsumeAudit bool     `mapstructure:"consume_audit"`
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints []string `mapstructure:"endpoints"`
		TTL       int      `mapstructure:"ttl"`
	} `mapstructure:"etcd"`
	JWT struct {
		Secret string `mapstructure:"secret"`
		Issuer string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	AppMeta struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		Env     string `mapstructure:"env"`
	} `mapstructure:"app_meta"`
	OTel struct {
		Endpoint     string  `mapstructure:"endpoint"` // OTLP gRPC endpoint
		Insecure     bool    `mapstructure:"insecure"`
		SamplerRatio float64 `mapstructure:"sampler_ratio"`
		Enable       bool    `mapstructure:"enable"`
	} `mapstructure:"otel"`
	Stats  StatsConfig  `mapstructure:"stats"`
	Audit  AuditConfig  `mapstructure:"audit"`
	Health HealthConfig `mapstructure:"health"`
}

// StatsConfig 仪表盘快照相关窗口与上限
type StatsConfig struct {
	TimeoutMS         int `mapstructure:"timeout_ms"`
	GrowthWindowDays  int `mapstructure:"growth_window_days"`
	RecentWindowDays  int `mapstructure:"recent_window_days"`
	ActivityLimit     int `mapstructure:"activity_limit"`
	ActivityPerSource int `mapstructure:"activity_per_source"`
}

type AuditConfig struct {
	DefaultLimit     int `mapstructure:"default_limit"`
	MaxLimit         int `mapstructure:"max_limit"`
	QueryTimeoutMS   int `mapstructure:"query_timeout_ms"`
	CountCacheTTLSec int `mapstructure:"count_cache_ttl_sec"` // 0 = 每次请求重新 count
}

// HealthConfig 健康评分阈值。延迟单位 ms，错误率为 0~1 比例。
type HealthConfig struct {
	DBDegradedMS        float64 `mapstructure:"db_degraded_ms"`
	DBDownMS            float64 `mapstructure:"db_down_ms"`
	APIDegradedMS       float64 `mapstructure:"api_degraded_ms"`
	APIDownMS           float64 `mapstructure:"api_down_ms"`
	ErrorDegradedRatio  float64 `mapstructure:"error_degraded_ratio"`
	ErrorDownRatio      float64 `mapstructure:"error_down_ratio"`
	PercentageFloor     float64 `mapstructure:"percentage_floor"`
	SignalWindowMinutes int     `mapstructure:"signal_window_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", StorageDriverPostgres)
	v.SetDefault("app_meta.name", "AdminStats")
	v.SetDefault("app_meta.version", "v1")
	v.SetDefault("app_meta.env", "dev")
	v.SetDefault("redis.dial_timeout_ms", 500)
	v.SetDefault("redis.read_timeout_ms", 300)
	v.SetDefault("redis.write_timeout_ms", 300)
	v.SetDefault("redis.ping_timeout_ms", 300)
	v.SetDefault("redis.heartbeat_sec", 10)
	v.SetDefault("kafka.audit_topic", "audit-events")
	v.SetDefault("kafka.group_id", "adminstats-audit")
	v.SetDefault("kafka.consume_audit", false)
	v.SetDefault("etcd.ttl", 10)
	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.sampler_ratio", 1.0)
	v.SetDefault("otel.insecure", true)

	v.SetDefault("stats.timeout_ms", 3000)
	v.SetDefault("stats.growth_window_days", 30)
	v.SetDefault("stats.recent_window_days", 7)
	v.SetDefault("stats.activity_limit", 10)
	v.SetDefault("stats.activity_per_source", 10)

	v.SetDefault("audit.default_limit", 20)
	v.SetDefault("audit.max_limit", 100)
	v.SetDefault("audit.query_timeout_ms", 2000)
	v.SetDefault("audit.count_cache_ttl_sec", 0)

	v.SetDefault("health.db_degraded_ms", 100)
	v.SetDefault("health.db_down_ms", 1000)
	v.SetDefault("health.api_degraded_ms", 300)
	v.SetDefault("health.api_down_ms", 2000)
	v.SetDefault("health.error_degraded_ratio", 0.05)
	v.SetDefault("health.error_down_ratio", 0.25)
	v.SetDefault("health.percentage_floor", 0)
	v.SetDefault("health.signal_window_minutes", 5)
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 逻辑校验；Load 之外的调用方（测试）也可直接使用
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr required")
	}
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn required when storage.driver=postgres")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, c.Storage.Driver)
	}
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("jwt.secret too short (>=16)")
	}
	if c.Kafka.ConsumeAudit && (len(c.Kafka.Brokers) == 0 || c.Kafka.AuditTopic == "") {
		return errors.New("kafka.brokers and kafka.audit_topic required when kafka.consume_audit=true")
	}
	if c.OTel.Enable {
		if c.OTel.Endpoint == "" {
			return errors.New("otel.endpoint required when otel.enable=true")
		}
		if c.OTel.SamplerRatio < 0 || c.OTel.SamplerRatio > 1 {
			return errors.New("otel.sampler_ratio must be in [0,1]")
		}
	}
	if c.Stats.TimeoutMS <= 0 {
		return fmt.Errorf("stats.timeout_ms must >0")
	}
	if c.Stats.GrowthWindowDays <= 0 || c.Stats.RecentWindowDays <= 0 {
		return fmt.Errorf("stats window days must >0")
	}
	if c.Stats.ActivityLimit <= 0 || c.Stats.ActivityPerSource <= 0 {
		return fmt.Errorf("stats.activity_limit and stats.activity_per_source must >0")
	}
	if c.Audit.DefaultLimit <= 0 || c.Audit.MaxLimit < c.Audit.DefaultLimit {
		return fmt.Errorf("audit.default_limit must >0 and <= audit.max_limit")
	}
	if c.Audit.QueryTimeoutMS <= 0 {
		return fmt.Errorf("audit.query_timeout_ms must >0")
	}
	if c.Audit.CountCacheTTLSec < 0 {
		return fmt.Errorf("audit.count_cache_ttl_sec must >=0")
	}
	h := c.Health
	if h.DBDegradedMS <= 0 || h.DBDownMS <= h.DBDegradedMS {
		return errors.New("health.db_down_ms must be greater than health.db_degraded_ms (>0)")
	}
	if h.APIDegradedMS <= 0 || h.APIDownMS <= h.APIDegradedMS {
		return errors.New("health.api_down_ms must be greater than health.api_degraded_ms (>0)")
	}
	if h.ErrorDegradedRatio <= 0 || h.ErrorDownRatio <= h.ErrorDegradedRatio || h.ErrorDownRatio > 1 {
		return errors.New("health error ratios must satisfy 0 < degraded < down <= 1")
	}
	if h.PercentageFloor < 0 || h.PercentageFloor >= 100 {
		return errors.New("health.percentage_floor must be in [0,100)")
	}
	if h.SignalWindowMinutes <= 0 {
		return errors.New("health.signal_window_minutes must >0")
	}
	return nil
}
