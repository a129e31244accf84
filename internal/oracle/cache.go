package oracle

import (
	"context"

	"cipherprobe/internal/logging"
)

// Cache stores oracle replies per (identity, plaintext).
type Cache interface {
	Lookup(identity, plaintext string) (ciphertext string, ok bool, err error)
	Remember(identity, plaintext, ciphertext string) error
}

// CachedEncrypter answers repeated queries from a Cache and only forwards
// misses to the wrapped Encrypter. The oracle is deterministic per identity,
// so cached replies are indistinguishable from fresh ones. Failures are never
// cached.
type CachedEncrypter struct {
	next  Encrypter
	cache Cache
}

// NewCachedEncrypter wraps next with cache.
func NewCachedEncrypter(next Encrypter, cache Cache) *CachedEncrypter {
	return &CachedEncrypter{next: next, cache: cache}
}

func (c *CachedEncrypter) Encrypt(ctx context.Context, identity, plaintext string) (string, error) {
	if ct, ok, err := c.cache.Lookup(identity, plaintext); err != nil {
		logging.OracleWarn("Cache lookup failed, querying oracle: %v", err)
	} else if ok {
		logging.OracleDebug("Cache hit for id=%q text_len=%d", identity, len(plaintext))
		return ct, nil
	}

	ct, err := c.next.Encrypt(ctx, identity, plaintext)
	if err != nil {
		return "", err
	}
	if err := c.cache.Remember(identity, plaintext, ct); err != nil {
		logging.OracleWarn("Failed to cache reply for id=%q: %v", identity, err)
	}
	return ct, nil
}
