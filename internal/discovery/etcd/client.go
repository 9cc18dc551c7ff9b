package etcd

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

type Config struct {
	Endpoints []string
	TTL       int
}

type Client struct{ *clientv3.Client }

func New(cfg Config) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{Endpoints: cfg.Endpoints, DialTimeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	return &Client{cli}, nil
}

// ServiceKey 服务实例注册路径
func ServiceKey(service, instanceID string) string {
	return fmt.Sprintf("/services/%s/%s", service, instanceID)
}

// Register 返回 leaseID 以便优雅下线时主动撤销；keepalive 随 ctx 结束
func (c *Client) Register(ctx context.Context, key, val string, ttl int64) (clientv3.LeaseID, error) {
	lease, err := c.Client.Grant(ctx, ttl)
	if err != nil {
		return 0, err
	}
	if _, err = c.Client.Put(ctx, key, val, clientv3.WithLease(lease.ID)); err != nil {
		return 0, err
	}
	ch, err := c.Client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return 0, err
	}
	go func() {
		for range ch { // 消耗 keepalive 响应
		}
	}()
	return lease.ID, nil
}

// Deregister 删除 key 并撤销租约；key 可能已过期，错误忽略
func (c *Client) Deregister(ctx context.Context, key string, leaseID clientv3.LeaseID) {
	_, _ = c.Client.Delete(ctx, key)
	if leaseID > 0 {
		_, _ = c.Client.Revoke(ctx, leaseID)
	}
}

// Ping 就绪检查用的一次轻量读
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Client.Get(ctx, "health", clientv3.WithCountOnly())
	return err
}

func (c *Client) Close() error { return c.Client.Close() }
