package dedupe

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store claims record IDs for the worker. SeenOrMark returns true when key
// was already claimed inside the window.
type Store interface {
	SeenOrMark(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// Local adapts an in-process Cache to Store.
func Local(c *Cache) Store {
	return localStore{c: c}
}

type localStore struct {
	c *Cache
}

func (s localStore) SeenOrMark(_ context.Context, key string) (bool, error) {
	return s.c.SeenOrMark(key), nil
}

func (s localStore) Forget(_ context.Context, key string) error {
	s.c.Forget(key)
	return nil
}

// Redis shares the window between worker replicas with SET NX EX.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis parses a redis:// URL and returns a Store keyed under prefix.
func NewRedis(rawURL, prefix string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Redis{client: redis.NewClient(opt), prefix: prefix, ttl: ttl}, nil
}

func (r *Redis) SeenOrMark(ctx context.Context, key string) (bool, error) {
	claimed, err := r.client.SetNX(ctx, r.prefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

func (r *Redis) Forget(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
