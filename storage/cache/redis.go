package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
)

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// ResultCache stores analytics summaries as JSON.
type ResultCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ analytics.Cache = (*ResultCache)(nil) // interface compliance check

func NewResultCache(client redis.Cmdable, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func (c *ResultCache) Get(ctx context.Context, key string) (analytics.Summary, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return analytics.Summary{}, analytics.ErrCacheMiss
		}
		return analytics.Summary{}, errors.Wrap(err, "getting cached result")
	}
	var sum analytics.Summary
	if err = json.Unmarshal(data, &sum); err != nil {
		return analytics.Summary{}, errors.Wrap(err, "decoding cached result")
	}
	return sum, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, sum analytics.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}
	if err = c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "caching result")
	}
	return nil
}
