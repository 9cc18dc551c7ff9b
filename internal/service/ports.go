package service

import (
	"context"
	"time"

	"go-adminstats/internal/domain/model"
)

// 以下为存储能力接口，dao（postgres）与 memory 两套实现均满足

type AuditLogStore interface {
	Append(ctx context.Context, e *model.AuditLog) error
	Count(ctx context.Context, f model.AuditFilter) (int64, error)
	Query(ctx context.Context, f model.AuditFilter, page, limit int) ([]model.AuditLog, error)
	GroupByAction(ctx context.Context, f model.AuditFilter) ([]model.ActionDistributionRow, error)
	Recent(ctx context.Context, limit int) ([]model.AuditLog, error)
}

type UserStore interface {
	CountTotal(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountVerified(ctx context.Context) (int64, error)
	CountAdmins(ctx context.Context) (int64, error)
	CountCreatedByDay(ctx context.Context, from, to time.Time) ([]model.DailyCount, error)
	RecentSignups(ctx context.Context, limit int) ([]model.User, error)
}

type SessionStore interface {
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

type ContentStore interface {
	CountPosts(ctx context.Context) (int64, error)
	CountPublishedPosts(ctx context.Context) (int64, error)
	CountComments(ctx context.Context) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	CountPostsSince(ctx context.Context, since time.Time) (int64, error)
	CountCommentsSince(ctx context.Context, since time.Time) (int64, error)
	RecentPosts(ctx context.Context, limit int) ([]model.Post, error)
	RecentComments(ctx context.Context, limit int) ([]model.Comment, error)
}

// StoreProber 一次存储往返测量
type StoreProber interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// SignalWindow 尾随窗口内的 API 请求信号
type SignalWindow struct {
	Requests   int64
	Errors     int64
	AvgLatency time.Duration
}

// ErrorRatio errored / total；无请求时为 0
func (w SignalWindow) ErrorRatio() float64 {
	if w.Requests <= 0 {
		return 0
	}
	return float64(w.Errors) / float64(w.Requests)
}

// SignalReader 读取 API 层尾随窗口信号（由请求信号中间件写入）
type SignalReader interface {
	Window(ctx context.Context, window time.Duration) (SignalWindow, error)
}
