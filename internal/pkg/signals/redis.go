package signals

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisrepo "go-adminstats/internal/repository/redis"
	"go-adminstats/internal/service"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder 每分钟一个 hash：requests / errors / latency_us，过期时间为保留窗口
type RedisRecorder struct {
	c      *redisrepo.Client
	prefix string
	retain time.Duration
	now    func() time.Time
}

func NewRedisRecorder(c *redisrepo.Client, prefix string, retain time.Duration) *RedisRecorder {
	if prefix == "" {
		prefix = "apisig:"
	}
	if retain < time.Minute {
		retain = time.Minute
	}
	return &RedisRecorder{c: c, prefix: prefix, retain: retain + time.Minute, now: time.Now}
}

func (r *RedisRecorder) key(minute int64) string { return fmt.Sprintf("%s%d", r.prefix, minute) }

// Record 写失败只丢弃本次信号，不影响请求
func (r *RedisRecorder) Record(ctx context.Context, latency time.Duration, failed bool) {
	key := r.key(minuteOf(r.now()))
	pipe := r.c.Client.TxPipeline()
	pipe.HIncrBy(ctx, key, "requests", 1)
	if failed {
		pipe.HIncrBy(ctx, key, "errors", 1)
	}
	pipe.HIncrBy(ctx, key, "latency_us", latency.Microseconds())
	pipe.Expire(ctx, key, r.retain)
	_, _ = pipe.Exec(ctx)
}

func (r *RedisRecorder) Window(ctx context.Context, window time.Duration) (service.SignalWindow, error) {
	cur := minuteOf(r.now())
	n := minutesIn(window)
	pipe := r.c.Client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, n)
	for m := cur - n + 1; m <= cur; m++ {
		cmds = append(cmds, pipe.HGetAll(ctx, r.key(m)))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return service.SignalWindow{}, err
	}
	bs := make([]bucket, 0, len(cmds))
	for _, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil && err != redis.Nil {
			return service.SignalWindow{}, err
		}
		bs = append(bs, bucket{
			requests:  parseInt(vals["requests"]),
			errors:    parseInt(vals["errors"]),
			latencyUS: parseInt(vals["latency_us"]),
		})
	}
	return summarize(bs), nil
}

func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
