package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/metrics"
	"go-adminstats/internal/pkg/cache"
)

// AuditQuery 对外查询参数；nil 表示未提供（page 默认 1，limit 默认 DefaultLimit）
type AuditQuery struct {
	UserID *string
	Action *string
	Page   *int
	Limit  *int
}

type AuditPage struct {
	Logs       []model.AuditLog `json:"logs"`
	Pagination model.Pagination `json:"pagination"`
}

type AuditQueryOptions struct {
	DefaultLimit  int
	MaxLimit      int
	Timeout       time.Duration
	CountCacheTTL time.Duration // 0 = 每次重新 count
}

// AuditQueryService 审计日志浏览。count 与分页查询是两次独立读取，
// 并发写入下二者可能基于略有不同的存储状态（不做快照隔离）。
type AuditQueryService struct {
	Store AuditLogStore
	Opts  AuditQueryOptions
	Cache cache.Cache // 仅 CountCacheTTL > 0 时使用
}

func NewAuditQueryService(store AuditLogStore, opts AuditQueryOptions, c cache.Cache) *AuditQueryService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	return &AuditQueryService{Store: store, Opts: opts, Cache: c}
}

// normalize 填充默认值并对 limit 封顶；显式给出的非正数是校验错误，不做钳制
func (s *AuditQueryService) normalize(q AuditQuery) (int, int, error) {
	page, limit := 1, s.Opts.DefaultLimit
	if q.Page != nil {
		page = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}
	if page < 1 {
		return 0, 0, ValidationErrorf("audit.list", "page must be a positive integer, got %d", page)
	}
	if limit <= 0 {
		return 0, 0, ValidationErrorf("audit.list", "limit must be a positive integer, got %d", limit)
	}
	if limit > s.Opts.MaxLimit {
		limit = s.Opts.MaxLimit
	}
	return page, limit, nil
}

func (s *AuditQueryService) List(ctx context.Context, q AuditQuery) (*AuditPage, error) {
	page, limit, err := s.normalize(q)
	if err != nil {
		metrics.StatsFailures.WithLabelValues("audit_list", string(KindValidation)).Inc()
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.Opts.Timeout)
	defer cancel()

	f := model.AuditFilter{UserID: q.UserID, Action: q.Action}
	total, err := s.count(ctx, f)
	if err != nil {
		err = classify(ctx, "audit.count", err)
		metrics.StatsFailures.WithLabelValues("audit_list", string(KindOf(err))).Inc()
		return nil, err
	}
	logs, err := s.Store.Query(ctx, f, page, limit)
	if err != nil {
		err = classify(ctx, "audit.query", err)
		metrics.StatsFailures.WithLabelValues("audit_list", string(KindOf(err))).Inc()
		return nil, err
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return &AuditPage{
		Logs: logs,
		Pagination: model.Pagination{
			Page:       page,
			Limit:      limit,
			TotalCount: total,
			TotalPages: TotalPages(total, limit),
		},
	}, nil
}

// Distribution 按 action 分组计数
func (s *AuditQueryService) Distribution(ctx context.Context, f model.AuditFilter) ([]model.ActionDistributionRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Opts.Timeout)
	defer cancel()
	rows, err := s.Store.GroupByAction(ctx, f)
	if err != nil {
		err = classify(ctx, "audit.group_by_action", err)
		metrics.StatsFailures.WithLabelValues("audit_distribution", string(KindOf(err))).Inc()
		return nil, err
	}
	if rows == nil {
		rows = []model.ActionDistributionRow{}
	}
	return rows, nil
}

// count 可选短 TTL 缓存；缓存读写失败一律回落到存储
func (s *AuditQueryService) count(ctx context.Context, f model.AuditFilter) (int64, error) {
	if s.Cache == nil || s.Opts.CountCacheTTL <= 0 {
		return s.Store.Count(ctx, f)
	}
	key := countKey(f)
	if v, _ := s.Cache.Get(ctx, key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			metrics.AuditCountCache.WithLabelValues("hit").Inc()
			return n, nil
		}
	}
	metrics.AuditCountCache.WithLabelValues("miss").Inc()
	n, err := s.Store.Count(ctx, f)
	if err != nil {
		return 0, err
	}
	_ = s.Cache.SetEX(ctx, key, strconv.FormatInt(n, 10), s.Opts.CountCacheTTL)
	return n, nil
}

func countKey(f model.AuditFilter) string {
	uid, action := "*", "*"
	if f.UserID != nil {
		uid = strconv.Quote(*f.UserID)
	}
	if f.Action != nil {
		action = strconv.Quote(*f.Action)
	}
	return fmt.Sprintf("audit:count:%s|%s", uid, action)
}

// TotalPages ceil(total/limit)；limit<=0 返回 0
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
