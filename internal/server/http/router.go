package http

import (
	"context"
	"net/http"
	"time"

	"go-adminstats/internal/logging"
	"go-adminstats/internal/mq/kafka"
	"go-adminstats/internal/security/jwt"
	handlerset "go-adminstats/internal/server/http/handler"
	"go-adminstats/internal/server/http/middleware"
	obs "go-adminstats/internal/server/http/middleware/observability"
	sec "go-adminstats/internal/server/http/middleware/security"
	"go-adminstats/internal/util/retcode"
	"go-adminstats/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps Publisher / Signals 为 nil 时对应中间件不启用
type RouterDeps struct {
	Logger    *logging.Logger
	JWT       *jwt.Manager
	Admin     sec.AdminChecker
	Handlers  *handlerset.HandlerSet
	Health    *HealthChecker
	Publisher kafka.Publisher
	Signals   obs.SignalRecorder
}

// NewRouter 仅负责分组与中间件装配，具体业务放在 handler 层
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), obs.TraceMiddleware(), obs.LoggerContextMiddleware(d.Logger), obs.AccessLog(d.Logger), obs.Metrics(d.Signals))

	hc := d.Health
	if hc == nil {
		hc = NewHealthChecker()
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, hc.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			hc.cacheMu.Lock()
			hc.cacheExpiry = time.Time{}
			hc.cacheMu.Unlock()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		res, code := hc.Readiness(ctx)
		c.JSON(code, res)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 认证 -> 操作日志 -> 管理员校验；非管理员的拒绝同样留痕
	h := d.Handlers
	adminGrp := r.Group("", sec.Auth(d.JWT), obs.OperationLog(d.Publisher, d.Logger), sec.AdminOnly(d.Admin, d.Logger))
	{
		adminGrp.GET("/admin-stats", h.Stats.Get)
		adminGrp.GET("/admin-audit-logs", h.AuditLog.List)
		adminGrp.GET("/admin-audit-logs/actions", h.AuditLog.Actions)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, retcode.INVALID, "not found")
	})
	return r
}
