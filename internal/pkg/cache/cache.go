package cache

import (
	"context"
	"sync"
	"time"
)

// Cache 字符串 KV 缓存；值的编解码由调用方负责。Get 未命中返回 ("", nil)。
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEX(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// TTLFetcher 可选能力：返回剩余 TTL，LayeredCache 回填 L1 时使用
type TTLFetcher interface {
	RemainingTTL(ctx context.Context, key string) (time.Duration, bool)
}

type entry struct {
	val string
	exp time.Time
}

// Local 进程内 L1，带 TTL，惰性过期
type Local struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewLocal() *Local { return &Local{data: make(map[string]entry), now: time.Now} }

func (c *Local) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || (!e.exp.IsZero() && c.now().After(e.exp)) {
		return "", nil
	}
	return e.val, nil
}

func (c *Local) SetEX(_ context.Context, key, val string, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = entry{val: val, exp: exp}
	c.mu.Unlock()
	return nil
}

func (c *Local) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *Local) RemainingTTL(_ context.Context, key string) (time.Duration, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || e.exp.IsZero() {
		return 0, false
	}
	d := e.exp.Sub(c.now())
	if d <= 0 {
		return 0, false
	}
	return d, true
}
