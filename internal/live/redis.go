package live

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/watch"
)

// RedisRegister keeps the live slot as a JSON blob under a single key.
// Preferred backing when Redis is configured: the slot is hot (polled every
// second or two by the RSS consumer) and tiny.
type RedisRegister struct {
	client *redis.Client
	key    string
	events watch.Publisher
}

// NewRedisRegister creates a Redis-backed register. Key may be empty,
// defaulting to "liveTestimony".
func NewRedisRegister(client *redis.Client, key string, events watch.Publisher) *RedisRegister {
	if key == "" {
		key = "liveTestimony"
	}
	return &RedisRegister{client: client, key: key, events: events}
}

func (r *RedisRegister) notify() {
	if r.events != nil {
		r.events.Publish()
	}
}

func (r *RedisRegister) Set(ctx context.Context, rec *testimony.LiveTestimony) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return err
	}
	r.notify()
	return nil
}

func (r *RedisRegister) Get(ctx context.Context) (*testimony.LiveTestimony, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var rec testimony.LiveTestimony
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisRegister) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return err
	}
	r.notify()
	return nil
}
