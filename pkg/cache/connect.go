package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectOption tunes the Redis connection opened by OpenRedis.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	poolSize      int
	retryAttempts int
	retryInterval time.Duration
	dialTimeout   time.Duration
	ioTimeout     time.Duration
}

func defaultConnectOptions() *connectOptions {
	return &connectOptions{
		poolSize:      4,
		retryAttempts: 3,
		retryInterval: time.Second,
		dialTimeout:   5 * time.Second,
		ioTimeout:     time.Second,
	}
}

// WithPoolSize caps open connections. Default: 4.
func WithPoolSize(n int) ConnectOption {
	return func(o *connectOptions) {
		o.poolSize = n
	}
}

// WithConnectRetry sets how many pings are attempted before giving up.
// The wait grows linearly: interval, 2*interval, ...
// Default: 3 attempts, 1 second.
func WithConnectRetry(attempts int, interval time.Duration) ConnectOption {
	return func(o *connectOptions) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithTimeouts sets the dial and read/write timeouts.
// Default: 5 seconds dial, 1 second read/write.
func WithTimeouts(dial, io time.Duration) ConnectOption {
	return func(o *connectOptions) {
		o.dialTimeout = dial
		o.ioTimeout = io
	}
}

// OpenRedis connects to a redis:// or rediss:// URL and pings the server.
// The caller owns the returned client.
func OpenRedis(ctx context.Context, url string, opts ...ConnectOption) (*redis.Client, error) {
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidRedisURL
	}

	o := defaultConnectOptions()
	for _, opt := range opts {
		opt(o)
	}

	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}
	ropts.PoolSize = o.poolSize
	ropts.DialTimeout = o.dialTimeout
	ropts.ReadTimeout = o.ioTimeout
	ropts.WriteTimeout = o.ioTimeout

	var lastErr error
	for i := range max(o.retryAttempts, 1) {
		client := redis.NewClient(ropts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == o.retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisUnavailable, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}

	return nil, errors.Join(ErrRedisUnavailable, lastErr)
}
