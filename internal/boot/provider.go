package boot

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"go-adminstats/internal/config"
	"go-adminstats/internal/consumer/auditlog"
	"go-adminstats/internal/discovery/etcd"
	"go-adminstats/internal/logging"
	"go-adminstats/internal/metrics"
	"go-adminstats/internal/mq/kafka"
	"go-adminstats/internal/repository/postgres"
	redisrepo "go-adminstats/internal/repository/redis"
	"go-adminstats/internal/security/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	go_otel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "adminstats"

type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	DB       *gorm.DB
	Redis    *redisrepo.Client
	Kafka    *kafka.Producer
	Etcd     *etcd.Client
	Consumer *kafka.Consumer
	HTTP     *gin.Engine

	tracing    *Tracing
	mu         sync.Mutex
	serviceKey string
	leaseID    clientv3.LeaseID
	stopCh     chan struct{}      // 心跳协程关闭
	cancel     context.CancelFunc // 注册 keepalive 与消费循环
}

// Tracing 包装全局 TracerProvider；未启用时 tp 为 nil。
// DB / Redis provider 依赖它，保证插件注册时全局 provider 已就绪。
type Tracing struct{ tp *trace.TracerProvider }

func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.tp == nil {
		return nil
	}
	return t.tp.Shutdown(ctx)
}

func NewTracing(c *config.Config, l *logging.Logger) (*Tracing, error) {
	if !c.OTel.Enable {
		return &Tracing{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.OTel.Endpoint)}
	if c.OTel.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel exporter: %w", err)
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.AppMeta.Name),
		semconv.ServiceVersionKey.String(c.AppMeta.Version),
		semconv.DeploymentEnvironmentKey.String(c.AppMeta.Env),
	))
	sampler := trace.ParentBased(trace.TraceIDRatioBased(c.OTel.SamplerRatio))
	tp := trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res), trace.WithSampler(sampler))
	go_otel.SetTracerProvider(tp)
	l.Info("otel_tracer_provider_initialized", zap.String("endpoint", c.OTel.Endpoint))
	return &Tracing{tp: tp}, nil
}

// NewPostgres storage.driver=memory 时返回 nil
func NewPostgres(c *config.Config, l *logging.Logger, _ *Tracing) (*gorm.DB, error) {
	if c.Storage.Driver == config.StorageDriverMemory {
		return nil, nil
	}
	db, err := postgres.New(postgres.Config{
		DSN:         c.Postgres.DSN,
		MaxOpen:     c.Postgres.MaxOpen,
		MaxIdle:     c.Postgres.MaxIdle,
		AutoMigrate: c.Postgres.AutoMigrate,
		Tracing:     c.OTel.Enable,
	})
	if err != nil {
		return nil, err
	}
	metrics.DBUp.Set(1)
	l.Info("postgres_connected", zap.Bool("auto_migrate", c.Postgres.AutoMigrate))
	return db, nil
}

func NewRedis(c *config.Config, _ *Tracing) *redisrepo.Client {
	return redisrepo.New(redisrepo.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB,
		DialTimeout:  time.Duration(c.Redis.DialTimeoutMS) * time.Millisecond,
		ReadTimeout:  time.Duration(c.Redis.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(c.Redis.WriteTimeoutMS) * time.Millisecond,
		PingTimeout:  time.Duration(c.Redis.PingTimeoutMS) * time.Millisecond,
	})
}

// NewKafkaProducer 未配置 broker 时返回 nil，操作日志中间件随之关闭
func NewKafkaProducer(c *config.Config) *kafka.Producer {
	if len(c.Kafka.Brokers) == 0 {
		return nil
	}
	return kafka.NewProducer(kafka.Config{Brokers: c.Kafka.Brokers, Topic: c.Kafka.AuditTopic})
}

// NewAuditConsumer 仅 kafka.consume_audit 开启时创建
func NewAuditConsumer(c *config.Config, l *logging.Logger) *kafka.Consumer {
	if !c.Kafka.ConsumeAudit {
		return nil
	}
	return kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: c.Kafka.Brokers,
		GroupID: c.Kafka.GroupID,
		Topics:  []string{c.Kafka.AuditTopic},
	}, l)
}

func NewEtcd(c *config.Config) (*etcd.Client, error) {
	if len(c.Etcd.Endpoints) == 0 {
		return nil, nil
	}
	return etcd.New(etcd.Config{Endpoints: c.Etcd.Endpoints, TTL: c.Etcd.TTL})
}

// NewJWTManager 本服务只校验令牌，不签发
func NewJWTManager(c *config.Config) *jwt.Manager {
	return jwt.NewManager(c.JWT.Secret, 0, c.JWT.Issuer)
}

func NewLogger(c *config.Config) (*logging.Logger, error) {
	return logging.New(c.Log.Level, c.Log.Format)
}

func NewApp(c *config.Config, l *logging.Logger, tr *Tracing, db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, e *etcd.Client, consumer *kafka.Consumer, stores *Stores, engine *gin.Engine) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: c, Logger: l, DB: db, Redis: r, Kafka: k, Etcd: e, Consumer: consumer, HTTP: engine,
		tracing: tr, stopCh: make(chan struct{}), cancel: cancel}
	if r != nil {
		app.startRedisHeartbeat()
	}
	if e != nil {
		go app.register(ctx)
	}
	if consumer != nil {
		h := auditlog.NewHandler(stores.Audit, l)
		go func() {
			l.Info("audit_consumer_start", zap.String("topic", c.Kafka.AuditTopic), zap.String("group", c.Kafka.GroupID))
			if err := consumer.Start(ctx, h.Handle); err != nil && ctx.Err() == nil {
				l.Error("audit_consumer_stopped", zap.Error(err))
			}
		}()
	}
	return app
}

// startRedisHeartbeat 启动时探测一次，之后按间隔更新 RedisUp，仅在状态切换时记日志
func (a *App) startRedisHeartbeat() {
	c, l, r := a.Config, a.Logger, a.Redis
	pingTimeout := time.Duration(c.Redis.PingTimeoutMS) * time.Millisecond
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		return r.Ping(ctx)
	}
	lastUp := ping() == nil
	if lastUp {
		metrics.RedisUp.Set(1)
		l.Info("redis_ping_ok", zap.String("addr", c.Redis.Addr))
	} else {
		metrics.RedisUp.Set(0)
		l.Error("redis_ping_failed", zap.String("addr", c.Redis.Addr))
	}
	interval := time.Duration(c.Redis.HeartbeatSec) * time.Second
	if interval < 2*time.Second {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-a.stopCh:
				return
			case <-t.C:
				if err := ping(); err != nil {
					metrics.RedisUp.Set(0)
					if lastUp {
						l.Warn("redis_down", zap.Error(err))
					}
					lastUp = false
				} else {
					metrics.RedisUp.Set(1)
					if !lastUp {
						l.Info("redis_recovered")
					}
					lastUp = true
				}
			}
		}
	}()
}

// register 以 ip:port 作为实例标识注册到 etcd，失败按指数退避重试
func (a *App) register(ctx context.Context) {
	c, l := a.Config, a.Logger
	port := "0"
	addr := c.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}
	if _, p, err := net.SplitHostPort(addr); err == nil && p != "" {
		port = p
	}
	ip := firstNonLoopbackIPv4()
	if ip == "" {
		ip = "127.0.0.1"
	}
	key := etcd.ServiceKey(fmt.Sprintf("%s/%s/%s", serviceName, c.AppMeta.Env, c.AppMeta.Version), ip+":"+port)
	valBytes, _ := json.Marshal(map[string]interface{}{
		"instance_id":  uuid.New().String(),
		"env":          c.AppMeta.Env,
		"version":      c.AppMeta.Version,
		"ip":           ip,
		"port":         port,
		"addr":         c.HTTP.Addr,
		"startup_unix": time.Now().Unix(),
	})
	const maxAttempts = 5
	for attempt := 1; ; attempt++ {
		leaseID, err := a.Etcd.Register(ctx, key, string(valBytes), int64(c.Etcd.TTL))
		if err == nil {
			a.mu.Lock()
			a.serviceKey, a.leaseID = key, leaseID
			a.mu.Unlock()
			metrics.EtcdUp.Set(1)
			l.Info("etcd_registered", zap.String("key", key))
			return
		}
		if attempt >= maxAttempts {
			l.Error("etcd_register_failed", zap.Error(err), zap.Int("attempt", attempt))
			return
		}
		backoff := time.Duration(1<<attempt) * 100 * time.Millisecond
		l.Warn("etcd_register_retry", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (a *App) Close() {
	// 先从 etcd 下线，再停后台协程
	a.mu.Lock()
	key, leaseID := a.serviceKey, a.leaseID
	a.mu.Unlock()
	if a.Etcd != nil && key != "" && leaseID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.Etcd.Deregister(ctx, key, leaseID)
		cancel()
		metrics.EtcdUp.Set(0)
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.stopCh != nil {
		close(a.stopCh)
	}
	if a.Consumer != nil {
		if err := a.Consumer.Close(); err != nil {
			a.Logger.Error("kafka_consumer_close_error", zap.Error(err))
		}
	}
	if a.Kafka != nil {
		// Async writer 在 Close 时 flush 剩余消息
		if err := a.Kafka.Close(); err != nil {
			a.Logger.Error("kafka_close_error", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := postgres.Close(a.DB); err != nil {
			a.Logger.Error("db_close_error", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis_close_error", zap.Error(err))
		}
	}
	if a.Etcd != nil {
		if err := a.Etcd.Close(); err != nil {
			a.Logger.Error("etcd_close_error", zap.Error(err))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracing.Shutdown(ctx); err != nil {
		a.Logger.Error("otel_tracer_shutdown_error", zap.Error(err))
	}
	_ = a.Logger.Sync()
}

// 获取首个非 loopback IPv4
func firstNonLoopbackIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip = ip.To4(); ip != nil {
				return ip.String()
			}
		}
	}
	return ""
}
