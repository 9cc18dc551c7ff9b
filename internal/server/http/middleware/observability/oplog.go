package observability

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/logging"
	"go-adminstats/internal/mq/kafka"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var skipOpLogPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

var sensitiveKeys = []string{"password", "passwd", "pwd", "token", "access_token", "authorization", "secret"}

// actionNames 路由到审计 action 的固定映射，其余按 method+path 推导
var actionNames = map[string]string{
	"/admin-stats":              "admin_view_stats",
	"/admin-audit-logs":         "admin_view_audit_logs",
	"/admin-audit-logs/actions": "admin_view_audit_actions",
}

// OperationLog 把已认证调用方的请求作为审计事件发布到 kafka。
// 只记录通过 Auth 的请求（无 user_id 的请求跳过）；发送失败只记日志。
func OperationLog(p kafka.Publisher, lg *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := skipOpLogPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		uid := c.GetString("user_id")
		if uid == "" || p == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		details := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if q := sanitizeQuery(c.Request.URL.RawQuery); len(q) > 0 {
			details["query"] = q
		}
		if ua := c.Request.UserAgent(); ua != "" {
			details["ua"] = truncateString(ua, 256)
		}
		if len(c.Errors) > 0 {
			errs := make([]string, 0, len(c.Errors))
			for _, er := range c.Errors {
				errs = append(errs, er.Error())
			}
			details["errors"] = errs
		}
		ev := model.AuditEvent{
			UserID:    uid,
			Action:    deriveActionName(path, c.Request.Method),
			IP:        c.ClientIP(),
			Details:   details,
			CreatedAt: time.Now().UTC(),
		}
		b, err := json.Marshal(ev)
		if err != nil {
			return
		}
		headers := map[string]string{"user_id": uid}
		if traceID := c.GetString(TraceIDKey); traceID != "" {
			headers["trace_id"] = traceID
		}
		// 请求 ctx 已结束，发送不随之取消
		ctx := context.WithoutCancel(c.Request.Context())
		if err := p.SendWithHeaders(ctx, []byte(uid), b, headers); err != nil {
			logging.FromContext(ctx, lg).Warn("publish audit event failed", zap.String("action", ev.Action), zap.Error(err))
		}
	}
}

// sanitizeQuery 敏感参数打码，单值截断到 100 字节
func sanitizeQuery(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	vals, err := url.ParseQuery(truncateString(raw, 1024))
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		if len(v) == 0 {
			continue
		}
		if isSensitive(k) {
			out[k] = "***"
			continue
		}
		out[k] = truncateString(v[0], 100)
	}
	return out
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if lower == s {
			return true
		}
	}
	return false
}

func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func deriveActionName(path, method string) string {
	if name, ok := actionNames[path]; ok {
		return name
	}
	p := strings.Trim(path, "/")
	if p == "" {
		return strings.ToLower(method)
	}
	p = strings.NewReplacer("/", "_", ":", "_", "-", "_").Replace(p)
	return strings.ToLower(method + "_" + p)
}
