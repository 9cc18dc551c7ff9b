package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/repository/dao"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func appendN(t *testing.T, a *AuditLogStore, n int, userID, action string, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, a.Append(context.Background(), &model.AuditLog{
			UserID:    userID,
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestAppend_RejectsMissingFields(t *testing.T) {
	a := New().Audit()
	ctx := context.Background()
	now := time.Now()

	cases := map[string]*model.AuditLog{
		"nil":        nil,
		"no user":    {Action: "login", CreatedAt: now},
		"no action":  {UserID: "u1", CreatedAt: now},
		"no created": {UserID: "u1", Action: "login"},
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, a.Append(ctx, e), dao.ErrInvalidArgument)
		})
	}

	e := &model.AuditLog{UserID: "u1", Action: "login", CreatedAt: now}
	require.NoError(t, a.Append(ctx, e))
	assert.NotEmpty(t, e.ID)
	n, err := a.Count(ctx, model.AuditFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestQuery_PageTwoOfTwentyFive(t *testing.T) {
	a := New().Audit()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	appendN(t, a, 25, "U1", "login", base)
	appendN(t, a, 5, "U2", "login", base)

	f := model.AuditFilter{UserID: strPtr("U1")}
	list, err := a.Query(ctx, f, 2, 10)
	require.NoError(t, err)
	require.Len(t, list, 10)
	// 倒序：第 11 条为 index 14（共 25 条，最新 index 24）
	assert.Equal(t, base.Add(14*time.Minute), list[0].CreatedAt)
	assert.Equal(t, base.Add(5*time.Minute), list[9].CreatedAt)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}

	n, err := a.Count(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 25, n)
}

func TestQuery_EqualTimestampsKeepInsertionOrder(t *testing.T) {
	a := New().Audit()
	ctx := context.Background()
	ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for _, action := range []string{"first", "second", "third"} {
		require.NoError(t, a.Append(ctx, &model.AuditLog{UserID: "u", Action: action, CreatedAt: ts}))
	}
	list, err := a.Query(ctx, model.AuditFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{list[0].Action, list[1].Action, list[2].Action})
}

func TestQuery_InvalidPaginationAndPastEnd(t *testing.T) {
	a := New().Audit()
	ctx := context.Background()
	appendN(t, a, 3, "u", "login", time.Now())

	_, err := a.Query(ctx, model.AuditFilter{}, 0, 10)
	assert.ErrorIs(t, err, dao.ErrInvalidArgument)
	_, err = a.Query(ctx, model.AuditFilter{}, 1, 0)
	assert.ErrorIs(t, err, dao.ErrInvalidArgument)

	list, err := a.Query(ctx, model.AuditFilter{}, 5, 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestQuery_OffsetOverflowIsPastEnd(t *testing.T) {
	a := New().Audit()
	appendN(t, a, 3, "u", "login", time.Now())

	for _, limit := range []int{1, 2, 100} {
		list, err := a.Query(context.Background(), model.AuditFilter{}, math.MaxInt, limit)
		require.NoError(t, err, limit)
		assert.NotNil(t, list)
		assert.Empty(t, list, limit)
	}
}

func TestDetailsAreNotShared(t *testing.T) {
	a := New().Audit()
	ctx := context.Background()
	in := &model.AuditLog{
		UserID: "u", Action: "update", CreatedAt: time.Now(),
		Details: datatypes.JSONMap{"field": "title", "diff": map[string]interface{}{"old": "a"}},
	}
	require.NoError(t, a.Append(ctx, in))
	in.Details["field"] = "changed-by-writer"

	list, err := a.Query(ctx, model.AuditFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "title", list[0].Details["field"])

	list[0].Details["field"] = "changed-by-reader"
	list[0].Details["diff"].(map[string]interface{})["old"] = "b"

	again, err := a.Query(ctx, model.AuditFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "title", again[0].Details["field"])
	assert.Equal(t, "a", again[0].Details["diff"].(map[string]interface{})["old"])
}

func TestQuery_FilterByAction(t *testing.T) {
	a := New().Audit()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	appendN(t, a, 4, "u1", "login", base)
	appendN(t, a, 3, "u1", "logout", base.Add(30*time.Second))

	list, err := a.Query(ctx, model.AuditFilter{Action: strPtr("login")}, 1, 100)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i, e := range list {
		assert.Equal(t, "login", e.Action)
		if i > 0 {
			assert.True(t, e.CreatedAt.Before(list[i-1].CreatedAt))
		}
	}
}

func TestGroupByAction_SortedByCountThenAction(t *testing.T) {
	a := New().Audit()
	ctx := context.Background()
	now := time.Now()
	appendN(t, a, 5, "u", "login", now)
	appendN(t, a, 2, "u", "logout", now)
	appendN(t, a, 1, "u", "login", now)
	appendN(t, a, 2, "u", "delete_post", now)

	rows, err := a.GroupByAction(ctx, model.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, []model.ActionDistributionRow{
		{Action: "login", Count: 6},
		{Action: "delete_post", Count: 2},
		{Action: "logout", Count: 2},
	}, rows)
}

func TestUsersAndContentCounters(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	s.AddUser(model.User{ID: "a", Role: model.RoleAdmin, IsActive: true, EmailVerified: true, CreatedAt: now})
	s.AddUser(model.User{ID: "b", IsActive: true, CreatedAt: now.Add(-48 * time.Hour)})
	s.AddUser(model.User{ID: "c", CreatedAt: now.Add(-40 * 24 * time.Hour)})
	s.AddSession(model.Session{UserID: "a", ExpiresAt: now.Add(time.Hour)})
	s.AddSession(model.Session{UserID: "b", ExpiresAt: now.Add(-time.Hour)})
	s.AddPost(model.Post{Published: true, CreatedAt: now})
	s.AddPost(model.Post{CreatedAt: now.Add(-10 * 24 * time.Hour)})
	s.AddComment(model.Comment{CreatedAt: now})
	s.AddCategory(model.Category{Name: "news"})

	total, _ := s.Users().CountTotal(ctx)
	active, _ := s.Users().CountActive(ctx)
	verified, _ := s.Users().CountVerified(ctx)
	admins, _ := s.Users().CountAdmins(ctx)
	assert.EqualValues(t, 3, total)
	assert.EqualValues(t, 2, active)
	assert.EqualValues(t, 1, verified)
	assert.EqualValues(t, 1, admins)

	isAdmin, err := s.Users().IsAdmin(ctx, "a")
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = s.Users().IsAdmin(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	sessions, _ := s.Sessions().CountActive(ctx, now)
	assert.EqualValues(t, 1, sessions)

	recentPosts, _ := s.Content().CountPostsSince(ctx, now.Add(-7*24*time.Hour))
	published, _ := s.Content().CountPublishedPosts(ctx)
	assert.EqualValues(t, 1, recentPosts)
	assert.EqualValues(t, 1, published)

	from := now.Add(-30 * 24 * time.Hour)
	days, err := s.Users().CountCreatedByDay(ctx, from, now.Add(time.Second))
	require.NoError(t, err)
	var sum int64
	for _, d := range days {
		sum += d.Count
		assert.Equal(t, time.UTC, d.Day.Location())
	}
	assert.EqualValues(t, 2, sum)
}

func TestCanceledContextFails(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Audit().Count(ctx, model.AuditFilter{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Probe().Ping(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
