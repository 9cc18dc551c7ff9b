package service

import (
	"context"
	"errors"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/repository/memory"
)

var errStoreDown = errors.New("connection refused")

func strPtr(s string) *string { return &s }
func intPtr(n int) *int        { return &n }

// failingUsers 只让 CountVerified 失败，其余委托给内存实现
type failingUsers struct {
	UserStore
}

func (failingUsers) CountVerified(context.Context) (int64, error) { return 0, errStoreDown }

// slowContent CountComments 阻塞直到 ctx 结束
type slowContent struct {
	ContentStore
}

func (slowContent) CountComments(ctx context.Context) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

type failingAudit struct {
	AuditLogStore
	countErr error
	queryErr error
	counts   int
}

func (f *failingAudit) Count(ctx context.Context, flt model.AuditFilter) (int64, error) {
	f.counts++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.AuditLogStore.Count(ctx, flt)
}

func (f *failingAudit) Query(ctx context.Context, flt model.AuditFilter, page, limit int) ([]model.AuditLog, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.AuditLogStore.Query(ctx, flt, page, limit)
}

type fixedSignals struct {
	w   SignalWindow
	err error
}

func (f fixedSignals) Window(context.Context, time.Duration) (SignalWindow, error) { return f.w, f.err }

type fixedProbe struct{ d time.Duration }

func (p fixedProbe) Ping(context.Context) (time.Duration, error) { return p.d, nil }

func newStatsService(st *memory.Store, now time.Time) *StatsService {
	feed := NewActivityFeed(10, 10,
		AuditActivitySource(st.Audit()),
		PostActivitySource(st.Content()),
		CommentActivitySource(st.Content()),
		SignupActivitySource(st.Users()),
	)
	svc := NewStatsService(st.Users(), st.Sessions(), st.Content(), fixedProbe{d: 20 * time.Millisecond},
		fixedSignals{w: SignalWindow{Requests: 100, Errors: 2, AvgLatency: 50 * time.Millisecond}},
		feed, NewHealthScorer(DefaultHealthThresholds()), StatsOptions{Timeout: time.Second})
	svc.now = func() time.Time { return now }
	return svc
}
