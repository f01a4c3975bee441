package regioncache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/bert82503/regioncache/batch"
)

type redisConn struct {
	cli redis.UniversalClient
}

// NewConn adapts a redis client to the command surface batch strategies
// run against.
func NewConn(cli redis.UniversalClient) batch.Conn {
	return &redisConn{cli: cli}
}

func (c *redisConn) Keys(ctx context.Context, pattern string) ([]string, error) {
	return c.cli.Keys(ctx, pattern).Result()
}

func (c *redisConn) Scan(ctx context.Context, opts batch.ScanOptions) batch.Cursor {
	return c.cli.Scan(ctx, 0, opts.Match, opts.Count).Iterator()
}

func (c *redisConn) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.cli.Del(ctx, keys...).Result()
}
