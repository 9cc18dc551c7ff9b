// Package memory 提供全部存储能力的进程内实现，用于 storage.driver=memory 的本地运行与测试。
// 写入由 Store 的互斥锁串行化；读取返回副本，调用方修改不会影响存储。
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/repository/dao"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Store struct {
	mu         sync.RWMutex
	seq        int64
	audit      []model.AuditLog
	users      []model.User
	sessions   []model.Session
	posts      []model.Post
	comments   []model.Comment
	categories []model.Category
}

func New() *Store { return &Store{} }

func (s *Store) Audit() *AuditLogStore { return &AuditLogStore{s} }

func (s *Store) Users() *UserStore { return &UserStore{s} }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s} }

func (s *Store) Content() *ContentStore { return &ContentStore{s} }

func (s *Store) Probe() *Probe { return &Probe{s} }

// ===== 种子数据 =====

func (s *Store) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users = append(s.users, u)
}

func (s *Store) AddSession(ss model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss.ID == "" {
		ss.ID = uuid.NewString()
	}
	s.sessions = append(s.sessions, ss)
}

func (s *Store) AddPost(p model.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.posts = append(s.posts, p)
}

func (s *Store) AddComment(c model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.comments = append(s.comments, c)
}

func (s *Store) AddCategory(c model.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories = append(s.categories, c)
}

// ===== AuditLogStore =====

type AuditLogStore struct{ s *Store }

func (a *AuditLogStore) Append(ctx context.Context, e *model.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := dao.ValidateEntry(e); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	a.s.seq++
	e.Seq = a.s.seq
	e.CreatedAt = e.CreatedAt.UTC()
	stored := *e
	stored.Details = cloneDetails(e.Details)
	a.s.audit = append(a.s.audit, stored)
	return nil
}

func (a *AuditLogStore) matching(f model.AuditFilter) []model.AuditLog {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	out := make([]model.AuditLog, 0, len(a.s.audit))
	for i := range a.s.audit {
		if f.Matches(&a.s.audit[i]) {
			out = append(out, a.s.audit[i])
		}
	}
	return out
}

func (a *AuditLogStore) Count(ctx context.Context, f model.AuditFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(a.matching(f))), nil
}

func (a *AuditLogStore) Query(ctx context.Context, f model.AuditFilter, page, limit int) ([]model.AuditLog, error) {
	if err := dao.ValidatePage(page, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list := a.matching(f)
	// 插入序即 seq 升序，稳定排序后相同时间戳保持插入顺序
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	offset, ok := dao.PageOffset(page, limit)
	if !ok || offset >= len(list) {
		return []model.AuditLog{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	out := list[offset:end]
	for i := range out {
		out[i].Details = cloneDetails(out[i].Details)
	}
	return out, nil
}

func (a *AuditLogStore) GroupByAction(ctx context.Context, f model.AuditFilter) ([]model.ActionDistributionRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, e := range a.matching(f) {
		counts[e.Action]++
	}
	rows := make([]model.ActionDistributionRow, 0, len(counts))
	for action, n := range counts {
		rows = append(rows, model.ActionDistributionRow{Action: action, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Action < rows[j].Action
	})
	return rows, nil
}

func (a *AuditLogStore) Recent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	return a.Query(ctx, model.AuditFilter{}, 1, limit)
}

// ===== Users =====

type UserStore struct{ s *Store }

func (u *UserStore) countWhere(ctx context.Context, pred func(*model.User) bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var n int64
	for i := range u.s.users {
		if pred(&u.s.users[i]) {
			n++
		}
	}
	return n, nil
}

func (u *UserStore) CountTotal(ctx context.Context) (int64, error) {
	return u.countWhere(ctx, func(*model.User) bool { return true })
}

func (u *UserStore) CountActive(ctx context.Context) (int64, error) {
	return u.countWhere(ctx, func(x *model.User) bool { return x.IsActive })
}

func (u *UserStore) CountVerified(ctx context.Context) (int64, error) {
	return u.countWhere(ctx, func(x *model.User) bool { return x.EmailVerified })
}

func (u *UserStore) CountAdmins(ctx context.Context) (int64, error) {
	return u.countWhere(ctx, func(x *model.User) bool { return x.Role == model.RoleAdmin })
}

func (u *UserStore) CountCreatedByDay(ctx context.Context, from, to time.Time) ([]model.DailyCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	stamps := make([]time.Time, 0, len(u.s.users))
	for _, x := range u.s.users {
		stamps = append(stamps, x.CreatedAt)
	}
	u.s.mu.RUnlock()
	return groupByDay(stamps, from, to), nil
}

func (u *UserStore) RecentSignups(ctx context.Context, limit int) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	list := append([]model.User(nil), u.s.users...)
	u.s.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (u *UserStore) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, x := range u.s.users {
		if x.ID == userID {
			return x.Role == model.RoleAdmin, nil
		}
	}
	return false, nil
}

// ===== Sessions =====

type SessionStore struct{ s *Store }

func (ss *SessionStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	var n int64
	for _, x := range ss.s.sessions {
		if x.ExpiresAt.After(now) {
			n++
		}
	}
	return n, nil
}

// ===== Content =====

type ContentStore struct{ s *Store }

func (c *ContentStore) read(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	fn()
	return nil
}

func (c *ContentStore) CountPosts(ctx context.Context) (n int64, err error) {
	err = c.read(ctx, func() { n = int64(len(c.s.posts)) })
	return
}

func (c *ContentStore) CountPublishedPosts(ctx context.Context) (n int64, err error) {
	err = c.read(ctx, func() {
		for _, p := range c.s.posts {
			if p.Published {
				n++
			}
		}
	})
	return
}

func (c *ContentStore) CountComments(ctx context.Context) (n int64, err error) {
	err = c.read(ctx, func() { n = int64(len(c.s.comments)) })
	return
}

func (c *ContentStore) CountCategories(ctx context.Context) (n int64, err error) {
	err = c.read(ctx, func() { n = int64(len(c.s.categories)) })
	return
}

func (c *ContentStore) CountPostsSince(ctx context.Context, since time.Time) (n int64, err error) {
	err = c.read(ctx, func() {
		for _, p := range c.s.posts {
			if !p.CreatedAt.Before(since) {
				n++
			}
		}
	})
	return
}

func (c *ContentStore) CountCommentsSince(ctx context.Context, since time.Time) (n int64, err error) {
	err = c.read(ctx, func() {
		for _, x := range c.s.comments {
			if !x.CreatedAt.Before(since) {
				n++
			}
		}
	})
	return
}

func (c *ContentStore) RecentPosts(ctx context.Context, limit int) ([]model.Post, error) {
	var list []model.Post
	if err := c.read(ctx, func() { list = append([]model.Post(nil), c.s.posts...) }); err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (c *ContentStore) RecentComments(ctx context.Context, limit int) ([]model.Comment, error) {
	var list []model.Comment
	if err := c.read(ctx, func() { list = append([]model.Comment(nil), c.s.comments...) }); err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ===== Probe =====

type Probe struct{ s *Store }

func (p *Probe) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.s.mu.RLock()
	_ = len(p.s.audit)
	p.s.mu.RUnlock()
	return time.Since(start), nil
}

// cloneDetails 深拷贝 JSON 载荷，存储与调用方不共享任何 map/slice
func cloneDetails(m datatypes.JSONMap) datatypes.JSONMap {
	if m == nil {
		return nil
	}
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = cloneJSONValue(v)
	}
	return out
}

func cloneJSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, x := range t {
			out[k] = cloneJSONValue(x)
		}
		return out
	case datatypes.JSONMap:
		return cloneDetails(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, x := range t {
			out[i] = cloneJSONValue(x)
		}
		return out
	default:
		return v
	}
}

func groupByDay(stamps []time.Time, from, to time.Time) []model.DailyCount {
	counts := map[time.Time]int64{}
	for _, ts := range stamps {
		if ts.Before(from) || !ts.Before(to) {
			continue
		}
		u := ts.UTC()
		day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		counts[day]++
	}
	out := make([]model.DailyCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, model.DailyCount{Day: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
