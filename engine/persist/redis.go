package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// RedisClient is the subset of the redis client the slot needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisSlot keeps documents under namespaced redis keys.
type RedisSlot struct {
	client RedisClient
	prefix string
}

func NewRedisSlot(client RedisClient, prefix string) *RedisSlot {
	if prefix == "" {
		prefix = "wrfconf:"
	}
	return &RedisSlot{client: client, prefix: prefix}
}

// DialRedisSlot connects to url and checks the server answers, retrying the
// ping a few times while the server comes up.
func DialRedisSlot(ctx context.Context, url string) (*RedisSlot, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	backoff := retry.WithMaxRetries(2, retry.NewExponential(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewRedisSlot(client, ""), nil
}

func (s *RedisSlot) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: read %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisSlot) Write(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: write %s: %w", key, err)
	}
	return nil
}

func (s *RedisSlot) Close() error {
	return s.client.Close()
}
