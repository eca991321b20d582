package tokenstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type MemTokenStore struct {
	Data *expirable.LRU[string, Token]
}

var _ TokenStore = (*MemTokenStore)(nil)

// The LRU has a single eviction TTL; per-token expiry is enforced on read.
func NewMemTokenStore(capacity int, ttl time.Duration) MemTokenStore {
	return MemTokenStore{
		Data: expirable.NewLRU[string, Token](capacity, nil, ttl),
	}
}

func (s MemTokenStore) Load(ctx context.Context, key string) (string, error) {
	tok, ok := s.Data.Get(key)
	if !ok || !tok.Valid() {
		return "", nil
	}
	return tok.Token, nil
}

func (s MemTokenStore) Store(ctx context.Context, key, token string, ttl time.Duration) error {
	s.Data.Add(key, NewToken(token, ttl))
	return nil
}

func (s MemTokenStore) Purge(ctx context.Context, key string) error {
	s.Data.Remove(key)
	return nil
}
