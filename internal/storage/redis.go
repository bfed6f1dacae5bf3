package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/topfiveapp/topfive/internal/task"
)

// RedisBackend stores each collection as a redis hash, one field per task,
// values JSON-encoded. This matches the layout the tracker has always used,
// so existing data is readable as-is.
type RedisBackend struct {
	client *redis.Client
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	// URL is a redis:// connection URL. Takes precedence over Addr.
	URL string
	// Addr is a host:port pair.
	Addr     string
	Password string
	DB       int
}

// NewRedisBackend connects to redis with the given settings.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		addr := cfg.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		opts = &redis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	return &RedisBackend{client: redis.NewClient(opts)}, nil
}

// GetAll implements Backend. A missing hash comes back from HGETALL as an
// empty map, which is exactly the no-data sentinel.
func (b *RedisBackend) GetAll(ctx context.Context, collection string) (map[string]*task.Task, bool, error) {
	raw, err := b.client.HGetAll(ctx, collection).Result()
	if err != nil {
		return nil, false, fmt.Errorf("hgetall %s: %w", collection, err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}

	tasks := make(map[string]*task.Task, len(raw))
	for id, value := range raw {
		tasks[id] = task.Decode(id, value)
	}
	return tasks, true, nil
}

// SetFields implements Backend. All fields go out in a single HSET, so the
// write is atomic.
func (b *RedisBackend) SetFields(ctx context.Context, collection string, fields map[string]*task.Task) error {
	if len(fields) == 0 {
		return nil
	}

	values := make([]any, 0, len(fields)*2)
	for id, t := range fields {
		encoded, err := task.Encode(t)
		if err != nil {
			return err
		}
		values = append(values, id, encoded)
	}

	if err := b.client.HSet(ctx, collection, values...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", collection, err)
	}
	return nil
}

// DeleteField implements Backend. HDEL of an absent field is a no-op.
func (b *RedisBackend) DeleteField(ctx context.Context, collection, id string) error {
	if err := b.client.HDel(ctx, collection, id).Err(); err != nil {
		return fmt.Errorf("hdel %s %s: %w", collection, id, err)
	}
	return nil
}

// Ping implements Backend.
func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close implements Backend.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
