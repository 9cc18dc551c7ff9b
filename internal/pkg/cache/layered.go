package cache

import (
	"context"
	"time"
)

// LayeredCache L1 -> L2 读取，L2 命中时按剩余 TTL 回填 L1；写/删两层同时进行。
// L2 出错时降级为未命中，缓存永远不影响主流程的正确性。
type LayeredCache struct {
	L1 Cache
	L2 Cache
}

func NewLayered(l1, l2 Cache) *LayeredCache { return &LayeredCache{L1: l1, L2: l2} }

func (c *LayeredCache) Get(ctx context.Context, key string) (string, error) {
	if c.L1 != nil {
		if v, _ := c.L1.Get(ctx, key); v != "" {
			return v, nil
		}
	}
	if c.L2 == nil {
		return "", nil
	}
	v, err := c.L2.Get(ctx, key)
	if err != nil || v == "" {
		return "", nil
	}
	if c.L1 != nil {
		ttl := 5 * time.Second
		if tf, ok := c.L2.(TTLFetcher); ok {
			if d, ok2 := tf.RemainingTTL(ctx, key); ok2 {
				ttl = d
			}
		}
		_ = c.L1.SetEX(ctx, key, v, ttl)
	}
	return v, nil
}

func (c *LayeredCache) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	if c.L1 != nil {
		_ = c.L1.SetEX(ctx, key, val, ttl)
	}
	if c.L2 != nil {
		return c.L2.SetEX(ctx, key, val, ttl)
	}
	return nil
}

func (c *LayeredCache) Del(ctx context.Context, keys ...string) error {
	if c.L1 != nil {
		_ = c.L1.Del(ctx, keys...)
	}
	if c.L2 != nil {
		return c.L2.Del(ctx, keys...)
	}
	return nil
}
