package tokenstore

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// Shares classifier tokens between multiple service instances.
type RedisTokenStore struct {
	Data *cache.Cache
}

var _ TokenStore = (*RedisTokenStore)(nil)

func NewRedisTokenStore(redisURL string) (*RedisTokenStore, error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(100, time.Minute),
	})
	return &RedisTokenStore{
		Data: data,
	}, nil
}

func redisTokenKey(key string) string {
	return "token/" + key
}

func (s RedisTokenStore) Load(ctx context.Context, key string) (string, error) {
	var tok Token
	err := s.Data.Get(ctx, redisTokenKey(key), &tok)
	if err == cache.ErrCacheMiss {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !tok.Valid() {
		return "", nil
	}
	return tok.Token, nil
}

func (s RedisTokenStore) Store(ctx context.Context, key, token string, ttl time.Duration) error {
	return s.Data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisTokenKey(key),
		Value: NewToken(token, ttl),
		TTL:   ttl,
	})
}

func (s RedisTokenStore) Purge(ctx context.Context, key string) error {
	err := s.Data.Delete(ctx, redisTokenKey(key))
	if err == cache.ErrCacheMiss {
		return nil
	}
	return err
}
