package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL bounds how long a computed transform URL stays cached.
const DefaultTTL = time.Hour

// negativeValue marks a cached "known non-transformable" result. It can
// never collide with a URL.
const negativeValue = "-"

// Store is the external key-value backend. Implementations must be safe for
// concurrent use; last-write-wins semantics are sufficient. An empty group
// passed to DeleteGroup purges every entry.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, group, value string, ttl time.Duration) error
	DeleteGroup(ctx context.Context, group string) error
}

// Key identifies one memoized transform computation.
type Key struct {
	SourceURL string
	Args      string
	Context   string
}

func (k Key) digest() string {
	sum := sha256.Sum256([]byte(k.SourceURL + "|" + k.Args + "|" + k.Context))
	return hex.EncodeToString(sum[:])
}

func (k Key) group() string {
	return SourceGroup(k.SourceURL)
}

// SourceGroup names the invalidation group for a source URL.
func SourceGroup(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return "src:" + hex.EncodeToString(sum[:16])
}

// TransformCache memoizes provider URL computation. Store failures are soft:
// the cache logs and falls through to direct computation, so a broken
// backend can never break a rewrite.
type TransformCache struct {
	store Store
	ttl   time.Duration
	log   zerolog.Logger
}

// New builds a TransformCache over the given store. A non-positive ttl falls
// back to DefaultTTL.
func New(store Store, ttl time.Duration, log zerolog.Logger) *TransformCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TransformCache{store: store, ttl: ttl, log: log}
}

// GetOrCompute returns the cached value for the key, computing and storing
// it on a miss. The compute function reports ok=false for a known
// non-transformable source; that negative result is cached too.
func (c *TransformCache) GetOrCompute(ctx context.Context, key Key, compute func() (string, bool)) (string, bool) {
	digest := key.digest()

	if value, hit, err := c.store.Get(ctx, digest); err != nil {
		c.log.Debug().Err(err).Msg("cache get failed, computing directly")
	} else if hit {
		if value == negativeValue {
			return "", false
		}
		return value, true
	}

	value, ok := compute()
	stored := value
	if !ok {
		stored = negativeValue
	}
	if err := c.store.Set(ctx, digest, key.group(), stored, c.ttl); err != nil {
		c.log.Debug().Err(err).Msg("cache set failed")
	}
	return value, ok
}

// InvalidateSource purges every cached computation for one source URL. Used
// when the underlying asset is replaced, deleted, or its metadata changes.
func (c *TransformCache) InvalidateSource(ctx context.Context, sourceURL string) error {
	return c.store.DeleteGroup(ctx, SourceGroup(sourceURL))
}

// InvalidateAll performs the coarse whole-cache flush, for callers that no
// longer know the asset's prior URL.
func (c *TransformCache) InvalidateAll(ctx context.Context) error {
	return c.store.DeleteGroup(ctx, "")
}
