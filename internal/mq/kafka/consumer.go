package kafka

import (
	"context"
	"errors"
	"time"

	"go-adminstats/internal/logging"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	MinBytes       int
	MaxBytes       int
	CommitInterval time.Duration
	MaxAttempts    int           // handler 返回错误时的最大尝试次数，默认 3
	RetryBackoff   time.Duration // 首次重试间隔，之后翻倍，默认 200ms
}

// MessageHandler 返回 error 表示可重试的失败；不可恢复的坏消息应由 handler 自行吞掉
type MessageHandler func(ctx context.Context, msg kafkaGo.Message) error

// messageReader kafka-go Reader 中消费循环用到的部分
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type Consumer struct {
	reader      messageReader
	logger      *logging.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewConsumer(cfg ConsumerConfig, lg *logging.Logger) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1 << 10
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = time.Second
	}
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: cfg.CommitInterval,
	})
	return newConsumer(reader, cfg, lg)
}

func newConsumer(r messageReader, cfg ConsumerConfig, lg *logging.Logger) *Consumer {
	if lg == nil {
		lg = logging.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	return &Consumer{reader: r, logger: lg, maxAttempts: cfg.MaxAttempts, backoff: cfg.RetryBackoff}
}

// Start 逐条 fetch -> 处理 -> commit。handler 失败按退避重试，
// 用尽次数后记录日志并提交 offset，避免单条消息阻塞整个分区。
// ctx 取消时返回 nil，未提交的消息由下一次消费重新投递。
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	if c.reader == nil {
		return errors.New("nil reader")
	}
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !c.process(ctx, m, handler) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("kafka commit failed", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// process 返回 false 表示 ctx 已取消，消息不应提交
func (c *Consumer) process(ctx context.Context, m kafkaGo.Message, handler MessageHandler) bool {
	msgCtx, span := c.startSpan(ctx, m)
	defer span.End()
	lg := c.logger.WithContext(msgCtx)

	wait := c.backoff
	for attempt := 1; ; attempt++ {
		err := handler(msgCtx, m)
		if err == nil {
			return true
		}
		span.RecordError(err)
		if attempt >= c.maxAttempts {
			span.SetStatus(codes.Error, err.Error())
			lg.Error("kafka message dropped after retries",
				zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Int("attempts", attempt), zap.Error(err))
			return true
		}
		lg.Warn("kafka handler failed, retrying",
			zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Int("attempt", attempt), zap.Duration("backoff", wait), zap.Error(err))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait *= 2
	}
}

// startSpan 从 headers 恢复 W3C trace 上下文；trace_id header 写入 ctx 供日志使用
func (c *Consumer) startSpan(ctx context.Context, m kafkaGo.Message) (context.Context, trace.Span) {
	carrier := propagation.MapCarrier{}
	for _, h := range m.Headers {
		carrier[h.Key] = string(h.Value)
	}
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)
	if v := carrier["trace_id"]; v != "" {
		msgCtx = context.WithValue(msgCtx, logging.TraceIDKey, v)
	}
	return otel.Tracer("kafka-consumer").Start(msgCtx, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("kafka"),
			semconv.MessagingDestinationName(m.Topic),
			attribute.Int("messaging.kafka.partition", m.Partition),
			attribute.Int64("messaging.kafka.offset", m.Offset),
			attribute.Int("messaging.message.size", len(m.Value)),
		))
}

func (c *Consumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
