package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/logging"
	"go-adminstats/internal/metrics"
	"go-adminstats/internal/repository/dao"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Appender 审计日志写入能力（AuditLogDAO / memory.AuditLogStore）
type Appender interface {
	Append(ctx context.Context, e *model.AuditLog) error
}

// Handler 将 kafka 审计事件写入存储；格式错误或缺字段的事件记录后跳过，不阻塞消费
type Handler struct {
	Store  Appender
	Logger *logging.Logger
}

func NewHandler(store Appender, lg *logging.Logger) *Handler {
	if lg == nil {
		lg = logging.NewNop()
	}
	return &Handler{Store: store, Logger: lg}
}

// Handle 签名与 kafka.MessageHandler 一致
func (h *Handler) Handle(ctx context.Context, msg kafkaGo.Message) error {
	lg := h.Logger.WithContext(ctx)
	var ev model.AuditEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		metrics.AuditIngested.WithLabelValues("invalid").Inc()
		lg.Warn("audit event decode failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}
	err := h.Store.Append(ctx, ev.ToAuditLog())
	switch {
	case err == nil:
		metrics.AuditIngested.WithLabelValues("ok").Inc()
		return nil
	case errors.Is(err, dao.ErrInvalidArgument):
		metrics.AuditIngested.WithLabelValues("invalid").Inc()
		lg.Warn("audit event rejected", zap.Int64("offset", msg.Offset), zap.String("action", ev.Action), zap.Error(err))
		return nil
	default:
		metrics.AuditIngested.WithLabelValues("error").Inc()
		return fmt.Errorf("append audit event: %w", err)
	}
}
