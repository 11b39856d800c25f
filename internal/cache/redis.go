// Package cache holds the optional Redis client and the cache-aside helpers
// the repositories read through.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"devconnector/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter counts failed commands by name. A cache miss is not a failure.
type errorCounter struct{}

func countFailure(op string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.RedisErrors.WithLabelValues(op).Inc()
	}
}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

// options accepts a bare host:port or a redis:// / rediss:// URL.
func options(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	return redis.ParseURL(addr)
}

// InitRedis connects to addr and installs the result as the shared client.
// It returns nil when addr is invalid or the server does not answer a ping;
// everything that reads the shared client then runs uncached.
func InitRedis(addr string) *redis.Client {
	client = nil

	opts, err := options(addr)
	if err != nil {
		middleware.Logger.Warn("invalid REDIS_URL, running without redis", slog.String("error", err.Error()))
		return nil
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, running without redis",
			slog.String("addr", opts.Addr), slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil
	}

	rdb.AddHook(errorCounter{})
	client = rdb
	middleware.Logger.Info("redis connected", slog.String("addr", opts.Addr))
	return client
}

// GetClient returns the shared client, or nil when running without Redis.
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the shared client. Passing nil disables caching.
func SetClient(rdb *redis.Client) {
	if rdb != nil {
		rdb.AddHook(errorCounter{})
	}
	client = rdb
}
