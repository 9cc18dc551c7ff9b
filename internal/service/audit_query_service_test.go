package service

import (
	"context"
	"math"
	"testing"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/pkg/cache"
	"go-adminstats/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAudit(t *testing.T, a AuditLogStore, n int, userID, action string, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, a.Append(context.Background(), &model.AuditLog{
			UserID:    userID,
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
}

func newAuditService(store AuditLogStore) *AuditQueryService {
	return NewAuditQueryService(store, AuditQueryOptions{DefaultLimit: 20, MaxLimit: 100, Timeout: time.Second}, nil)
}

func TestAuditList_PageTwoOfTwentyFive(t *testing.T) {
	store := memory.New().Audit()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	seedAudit(t, store, 25, "U1", "login", base)
	seedAudit(t, store, 3, "U2", "login", base)

	res, err := newAuditService(store).List(context.Background(), AuditQuery{
		UserID: strPtr("U1"), Page: intPtr(2), Limit: intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, model.Pagination{Page: 2, Limit: 10, TotalCount: 25, TotalPages: 3}, res.Pagination)
	require.Len(t, res.Logs, 10)
	// 排名 11-20：最新为 index 24，因此第 11 名是 index 14
	assert.Equal(t, base.Add(14*time.Second), res.Logs[0].CreatedAt)
	assert.Equal(t, base.Add(5*time.Second), res.Logs[9].CreatedAt)
}

func TestAuditList_Defaults(t *testing.T) {
	store := memory.New().Audit()
	seedAudit(t, store, 30, "u", "login", time.Now())

	res, err := newAuditService(store).List(context.Background(), AuditQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)
	assert.Equal(t, 20, res.Pagination.Limit)
	assert.Len(t, res.Logs, 20)
	assert.Equal(t, 2, res.Pagination.TotalPages)
}

func TestAuditList_LimitCappedAtMax(t *testing.T) {
	store := memory.New().Audit()
	seedAudit(t, store, 5, "u", "login", time.Now())
	res, err := newAuditService(store).List(context.Background(), AuditQuery{Limit: intPtr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Pagination.Limit)
	assert.Len(t, res.Logs, 5)
	assert.Equal(t, 1, res.Pagination.TotalPages)
}

func TestAuditList_InvalidPaginationIsValidationError(t *testing.T) {
	svc := newAuditService(memory.New().Audit())
	cases := map[string]AuditQuery{
		"zero limit":     {Limit: intPtr(0)},
		"negative limit": {Limit: intPtr(-5)},
		"zero page":      {Page: intPtr(0)},
		"negative page":  {Page: intPtr(-1), Limit: intPtr(10)},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := svc.List(context.Background(), q)
			assert.Nil(t, res)
			assert.True(t, IsKind(err, KindValidation), "got %v", err)
		})
	}
}

func TestAuditList_PastEndAndEmpty(t *testing.T) {
	store := memory.New().Audit()
	svc := newAuditService(store)

	res, err := svc.List(context.Background(), AuditQuery{})
	require.NoError(t, err)
	assert.NotNil(t, res.Logs)
	assert.Empty(t, res.Logs)
	assert.Equal(t, 0, res.Pagination.TotalPages)

	seedAudit(t, store, 3, "u", "login", time.Now())
	res, err = svc.List(context.Background(), AuditQuery{Page: intPtr(9), Limit: intPtr(2)})
	require.NoError(t, err)
	assert.Empty(t, res.Logs)
	assert.EqualValues(t, 3, res.Pagination.TotalCount)
	assert.Equal(t, 2, res.Pagination.TotalPages)
}

func TestAuditList_HugePageIsEmpty(t *testing.T) {
	store := memory.New().Audit()
	seedAudit(t, store, 3, "u", "login", time.Now())

	res, err := newAuditService(store).List(context.Background(), AuditQuery{Page: intPtr(math.MaxInt), Limit: intPtr(100)})
	require.NoError(t, err)
	assert.NotNil(t, res.Logs)
	assert.Empty(t, res.Logs)
	assert.Equal(t, math.MaxInt, res.Pagination.Page)
	assert.EqualValues(t, 3, res.Pagination.TotalCount)
}

func TestAuditList_FilterByActionNewestFirst(t *testing.T) {
	store := memory.New().Audit()
	base := time.Now().Add(-time.Hour)
	seedAudit(t, store, 4, "u1", "login", base)
	seedAudit(t, store, 4, "u2", "logout", base)

	res, err := newAuditService(store).List(context.Background(), AuditQuery{Action: strPtr("login")})
	require.NoError(t, err)
	require.Len(t, res.Logs, 4)
	for i, e := range res.Logs {
		assert.Equal(t, "login", e.Action)
		if i > 0 {
			assert.False(t, e.CreatedAt.After(res.Logs[i-1].CreatedAt))
		}
	}
}

func TestAuditList_StoreFailures(t *testing.T) {
	mem := memory.New().Audit()

	svc := newAuditService(&failingAudit{AuditLogStore: mem, countErr: errStoreDown})
	_, err := svc.List(context.Background(), AuditQuery{})
	assert.True(t, IsKind(err, KindStoreUnavailable))
	assert.ErrorIs(t, err, errStoreDown)

	svc = newAuditService(&failingAudit{AuditLogStore: mem, queryErr: context.DeadlineExceeded})
	_, err = svc.List(context.Background(), AuditQuery{})
	assert.True(t, IsKind(err, KindDeadlineExceeded))
}

func TestAuditList_CountCache(t *testing.T) {
	mem := memory.New().Audit()
	seedAudit(t, mem, 3, "u", "login", time.Now())
	store := &failingAudit{AuditLogStore: mem}
	svc := NewAuditQueryService(store, AuditQueryOptions{
		DefaultLimit: 20, MaxLimit: 100, Timeout: time.Second, CountCacheTTL: time.Minute,
	}, cache.NewLocal())

	for i := 0; i < 3; i++ {
		res, err := svc.List(context.Background(), AuditQuery{Action: strPtr("login")})
		require.NoError(t, err)
		assert.EqualValues(t, 3, res.Pagination.TotalCount)
	}
	assert.Equal(t, 1, store.counts)

	// 不同过滤条件使用不同的 key
	_, err := svc.List(context.Background(), AuditQuery{Action: strPtr("logout")})
	require.NoError(t, err)
	assert.Equal(t, 2, store.counts)
}

func TestAuditList_CountRecomputedWithoutCache(t *testing.T) {
	mem := memory.New().Audit()
	store := &failingAudit{AuditLogStore: mem}
	svc := newAuditService(store)
	for i := 0; i < 3; i++ {
		_, err := svc.List(context.Background(), AuditQuery{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.counts)
}

func TestAuditDistribution(t *testing.T) {
	store := memory.New().Audit()
	now := time.Now()
	seedAudit(t, store, 5, "u", "login", now)
	seedAudit(t, store, 2, "u", "logout", now)
	seedAudit(t, store, 1, "u", "login", now)

	rows, err := newAuditService(store).Distribution(context.Background(), model.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, []model.ActionDistributionRow{
		{Action: "login", Count: 6},
		{Action: "logout", Count: 2},
	}, rows)
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0}, {1, 10, 1}, {10, 10, 1}, {11, 10, 2}, {25, 10, 3}, {100, 1, 100}, {5, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TotalPages(c.total, c.limit), "total=%d limit=%d", c.total, c.limit)
	}
}
