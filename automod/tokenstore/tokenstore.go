package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/spaolacci/murmur3"
)

// Provider tokens live for 24 hours; cached tokens are trusted a little longer and rely on the auth-error refresh path.
const DefaultTTL = 25 * time.Hour

var timeNow = time.Now

// Persisted token record. Expire is in epoch seconds.
type Token struct {
	Token  string `json:"token"`
	Expire int64  `json:"expire"`
}

func NewToken(token string, ttl time.Duration) Token {
	return Token{
		Token:  token,
		Expire: timeNow().Add(ttl).Unix(),
	}
}

// A token is usable iff it is non-empty and its expiry is strictly in the future.
func (t Token) Valid() bool {
	return t.Token != "" && t.Expire > timeNow().Unix()
}

type TokenStore interface {
	// Returns an empty string (and no error) if the token is missing, malformed or expired.
	Load(ctx context.Context, key string) (string, error)
	Store(ctx context.Context, key, token string, ttl time.Duration) error
	Purge(ctx context.Context, key string) error
}

// Derives a compact store key for a credential pair, without retaining the raw secret.
//
// current implementation uses murmur3, default seed, and hex encoding
func CredentialKey(clientID, secret string) string {
	val := murmur3.Sum64([]byte(clientID + ":" + secret))
	return fmt.Sprintf("%016x", val)
}
