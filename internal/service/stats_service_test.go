package service

import (
	"context"
	"testing"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDashboard(t *testing.T, now time.Time) *memory.Store {
	t.Helper()
	st := memory.New()
	day := 24 * time.Hour
	st.AddUser(model.User{ID: "admin", Name: "Root", Role: model.RoleAdmin, IsActive: true, EmailVerified: true, CreatedAt: now.Add(-100 * day)})
	st.AddUser(model.User{ID: "u1", Name: "Ann", IsActive: true, EmailVerified: true, CreatedAt: now.Add(-2 * day)})
	st.AddUser(model.User{ID: "u2", Name: "Bob", IsActive: true, CreatedAt: now.Add(-2 * day)})
	st.AddUser(model.User{ID: "u3", Name: "Cid", CreatedAt: now.Add(-20 * day)})
	st.AddSession(model.Session{ID: "s1", UserID: "u1", ExpiresAt: now.Add(time.Hour)})
	st.AddSession(model.Session{ID: "s2", UserID: "u2", ExpiresAt: now.Add(-time.Minute)})
	st.AddPost(model.Post{ID: "p1", Title: "old", Published: true, CreatedAt: now.Add(-30 * day)})
	st.AddPost(model.Post{ID: "p2", Title: "new", Published: true, CreatedAt: now.Add(-time.Hour)})
	st.AddPost(model.Post{ID: "p3", Title: "draft", CreatedAt: now.Add(-3 * day)})
	st.AddComment(model.Comment{ID: "c1", PostID: "p2", CreatedAt: now.Add(-30 * time.Minute)})
	st.AddCategory(model.Category{ID: "cat1", Name: "news"})
	st.AddCategory(model.Category{ID: "cat2", Name: "tech"})
	require.NoError(t, st.Audit().Append(context.Background(), &model.AuditLog{UserID: "admin", Action: "login", CreatedAt: now.Add(-10 * time.Minute)}))
	return st
}

func TestSnapshot_ComposesAllSections(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	st := seedDashboard(t, now)

	stats, err := newStatsService(st, now).Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.UserStats{Total: 4, Active: 3, Verified: 2, Admins: 1, ActiveSessions: 1}, stats.Users)
	assert.Equal(t, model.ContentStats{
		Posts: 3, PublishedPosts: 2, Comments: 1, Categories: 2, RecentPosts: 2, RecentComments: 1,
	}, stats.Content)

	require.Len(t, stats.Growth, 30)
	assert.Equal(t, "2026-07-15", stats.Growth[29].Date)
	assert.EqualValues(t, 2, stats.Growth[27].Count) // u1、u2 两天前注册
	assert.EqualValues(t, 1, stats.Growth[9].Count)  // u3 二十天前
	var sum int64
	for _, p := range stats.Growth {
		sum += p.Count
	}
	assert.EqualValues(t, 3, sum)

	require.NotEmpty(t, stats.RecentActivity)
	assert.LessOrEqual(t, len(stats.RecentActivity), 10)
	assert.Equal(t, ActivityTypeAudit, stats.RecentActivity[0].Type)
	for i := 1; i < len(stats.RecentActivity); i++ {
		assert.False(t, stats.RecentActivity[i].Timestamp.After(stats.RecentActivity[i-1].Timestamp))
	}

	assert.Equal(t, model.HealthHealthy, stats.SystemHealth.Status)
	assert.InDelta(t, 20.0, stats.SystemHealth.Database.ResponseTimeMs, 1e-9)
	assert.InDelta(t, 50.0, stats.SystemHealth.API.ResponseTimeMs, 1e-9)
	assert.InDelta(t, 2.0, stats.SystemHealth.ErrorRate.Percentage, 1e-9)
	assert.Equal(t, now, stats.GeneratedAt)
}

func TestSnapshot_EmptyStore(t *testing.T) {
	now := time.Now()
	stats, err := newStatsService(memory.New(), now).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats.Growth, 30)
	assert.NotNil(t, stats.RecentActivity)
	assert.Empty(t, stats.RecentActivity)
}

func TestSnapshot_AnyCounterFailureFailsWhole(t *testing.T) {
	now := time.Now()
	st := seedDashboard(t, now)
	svc := newStatsService(st, now)
	svc.Users = failingUsers{UserStore: st.Users()}

	stats, err := svc.Snapshot(context.Background())
	assert.Nil(t, stats)
	assert.True(t, IsKind(err, KindStoreUnavailable), "got %v", err)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSnapshot_FailingInputsFailWhole(t *testing.T) {
	now := time.Now()
	st := seedDashboard(t, now)

	svc := newStatsService(st, now)
	svc.Signals = fixedSignals{err: errStoreDown}
	_, err := svc.Snapshot(context.Background())
	assert.True(t, IsKind(err, KindStoreUnavailable))

	svc = newStatsService(st, now)
	svc.Feed = NewActivityFeed(10, 10, SourceFunc{SourceName: "broken", FetchFunc: func(context.Context, int) ([]model.ActivityItem, error) {
		return nil, errStoreDown
	}})
	_, err = svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSnapshot_DeadlineExceeded(t *testing.T) {
	now := time.Now()
	st := seedDashboard(t, now)
	svc := newStatsService(st, now)
	svc.Content = slowContent{ContentStore: st.Content()}
	svc.Opts.Timeout = 50 * time.Millisecond

	start := time.Now()
	stats, err := svc.Snapshot(context.Background())
	assert.Nil(t, stats)
	assert.True(t, IsKind(err, KindDeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSnapshot_CallerCancellation(t *testing.T) {
	now := time.Now()
	st := seedDashboard(t, now)
	svc := newStatsService(st, now)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := svc.Snapshot(ctx)
	assert.Nil(t, stats)
	assert.Error(t, err)
}
