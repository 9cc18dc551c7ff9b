package boot

import (
	"context"
	"time"

	"go-adminstats/internal/config"
	"go-adminstats/internal/discovery/etcd"
	"go-adminstats/internal/logging"
	"go-adminstats/internal/metrics"
	"go-adminstats/internal/mq/kafka"
	"go-adminstats/internal/pkg/cache"
	"go-adminstats/internal/pkg/signals"
	"go-adminstats/internal/repository/dao"
	"go-adminstats/internal/repository/memory"
	redisrepo "go-adminstats/internal/repository/redis"
	jwtsec "go-adminstats/internal/security/jwt"
	httpSrv "go-adminstats/internal/server/http"
	handlerset "go-adminstats/internal/server/http/handler"
	adminh "go-adminstats/internal/server/http/handler/admin"
	sec "go-adminstats/internal/server/http/middleware/security"
	"go-adminstats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProvideConfig wraps config.Load for wire with external path param
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

// Stores 按 storage.driver 选择的一组存储实现
type Stores struct {
	Audit    service.AuditLogStore
	Users    service.UserStore
	Sessions service.SessionStore
	Content  service.ContentStore
	Probe    service.StoreProber
	Admin    sec.AdminChecker
}

// NewStores db 为 nil（memory 驱动）时使用进程内存储，重启即丢失
func NewStores(db *gorm.DB, l *logging.Logger) *Stores {
	if db == nil {
		l.Warn("storage_memory_driver", zap.String("hint", "data is not persisted"))
		m := memory.New()
		users := m.Users()
		return &Stores{Audit: m.Audit(), Users: users, Sessions: m.Sessions(), Content: m.Content(), Probe: m.Probe(), Admin: users}
	}
	users := dao.NewUserDAO(db)
	return &Stores{
		Audit:    dao.NewAuditLogDAO(db),
		Users:    users,
		Sessions: dao.NewSessionDAO(db),
		Content:  dao.NewContentDAO(db),
		Probe:    dao.NewStoreProbe(db),
		Admin:    users,
	}
}

// NewSignalRecorder 有 Redis 时跨实例聚合，否则按进程统计
func NewSignalRecorder(c *config.Config, r *redisrepo.Client) signals.Recorder {
	window := time.Duration(c.Health.SignalWindowMinutes) * time.Minute
	if r != nil {
		return signals.NewRedisRecorder(r, "", window)
	}
	return signals.NewMemoryRecorder(c.Health.SignalWindowMinutes + 1)
}

// NewCountCache L1 本地 + L2 Redis；count_cache_ttl_sec=0 时不缓存
func NewCountCache(c *config.Config, r *redisrepo.Client) cache.Cache {
	if c.Audit.CountCacheTTLSec <= 0 {
		return nil
	}
	if r == nil {
		return cache.NewLocal()
	}
	return cache.NewLayered(cache.NewLocal(), cache.NewRedisAdapter(r))
}

func NewAuditQueryService(c *config.Config, s *Stores, cc cache.Cache) *service.AuditQueryService {
	return service.NewAuditQueryService(s.Audit, service.AuditQueryOptions{
		DefaultLimit:  c.Audit.DefaultLimit,
		MaxLimit:      c.Audit.MaxLimit,
		Timeout:       time.Duration(c.Audit.QueryTimeoutMS) * time.Millisecond,
		CountCacheTTL: time.Duration(c.Audit.CountCacheTTLSec) * time.Second,
	}, cc)
}

func NewHealthScorer(c *config.Config) *service.HealthScorer {
	ms := func(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }
	h := c.Health
	return service.NewHealthScorer(service.HealthThresholds{
		DBDegraded:         ms(h.DBDegradedMS),
		DBDown:             ms(h.DBDownMS),
		APIDegraded:        ms(h.APIDegradedMS),
		APIDown:            ms(h.APIDownMS),
		ErrorDegradedRatio: h.ErrorDegradedRatio,
		ErrorDownRatio:     h.ErrorDownRatio,
		PercentageFloor:    h.PercentageFloor,
	})
}

// NewActivityFeed 来源顺序即同一时间戳下的优先级
func NewActivityFeed(c *config.Config, s *Stores) *service.ActivityFeed {
	return service.NewActivityFeed(c.Stats.ActivityLimit, c.Stats.ActivityPerSource,
		service.AuditActivitySource(s.Audit),
		service.PostActivitySource(s.Content),
		service.CommentActivitySource(s.Content),
		service.SignupActivitySource(s.Users),
	)
}

func NewStatsService(c *config.Config, s *Stores, rec signals.Recorder, feed *service.ActivityFeed, scorer *service.HealthScorer) *service.StatsService {
	return service.NewStatsService(s.Users, s.Sessions, s.Content, s.Probe, rec, feed, scorer, service.StatsOptions{
		Timeout:          time.Duration(c.Stats.TimeoutMS) * time.Millisecond,
		GrowthWindowDays: c.Stats.GrowthWindowDays,
		RecentWindowDays: c.Stats.RecentWindowDays,
		SignalWindow:     time.Duration(c.Health.SignalWindowMinutes) * time.Minute,
	})
}

func ProvideHandlers(l *logging.Logger, stats *service.StatsService, audit *service.AuditQueryService) *handlerset.HandlerSet {
	return handlerset.NewHandlerSet(adminh.Dependencies{Stats: stats, Audit: audit, Logger: l})
}

// ProvideHealthChecker 只探测已配置的依赖；nil 指针不能直接转成接口
func ProvideHealthChecker(db *gorm.DB, s *Stores, r *redisrepo.Client, k *kafka.Producer, e *etcd.Client) *httpSrv.HealthChecker {
	var checks []*httpSrv.DepCheck
	if db != nil {
		checks = append(checks, &httpSrv.DepCheck{Name: "db", Timeout: 300 * time.Millisecond, Up: metrics.DBUp,
			Check: func(ctx context.Context) error { _, err := s.Probe.Ping(ctx); return err }})
	}
	if r != nil {
		checks = append(checks, httpSrv.PingCheck("redis", r, metrics.RedisUp))
	}
	if k != nil {
		checks = append(checks, httpSrv.PingCheck("kafka", k, metrics.KafkaUp))
	}
	if e != nil {
		checks = append(checks, httpSrv.PingCheck("etcd", e, metrics.EtcdUp))
	}
	return httpSrv.NewHealthChecker(checks...)
}

func ProvideRouter(l *logging.Logger, j *jwtsec.Manager, s *Stores, h *handlerset.HandlerSet, hc *httpSrv.HealthChecker, k *kafka.Producer, rec signals.Recorder) *gin.Engine {
	d := httpSrv.RouterDeps{Logger: l, JWT: j, Admin: s.Admin, Handlers: h, Health: hc, Signals: rec}
	if k != nil {
		d.Publisher = k
	}
	return httpSrv.NewRouter(d)
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewTracing,
	NewPostgres,
	NewRedis,
	NewKafkaProducer,
	NewAuditConsumer,
	NewEtcd,
	NewJWTManager,
	NewStores,
	NewSignalRecorder,
	NewCountCache,
	NewAuditQueryService,
	NewHealthScorer,
	NewActivityFeed,
	NewStatsService,
	ProvideHandlers,
	ProvideHealthChecker,
	ProvideRouter,
	NewApp,
)
