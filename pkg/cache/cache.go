// Package cache holds precomputed JSON responses per user with a fixed TTL.
//
// Store implementations report failures; Cache wraps a Store and swallows them,
// so an unavailable backend only costs a trip to the database.
//
// Every Delete advances the key's generation. A reader that missed records the
// generation first and fills through Fill, which drops the payload when a
// write invalidated the key in between.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	PrefixMyDonations     = "my-donations"
	PrefixMyReceived      = "my-received"
	PrefixDonationHistory = "donation-history"
	PrefixReceivedHistory = "received-history"
	PrefixDonationSummary = "donation-summary"
	PrefixReceivedSummary = "received-summary"

	KeyAllNGOs = "ngos:all"

	DefaultTTL = time.Hour

	opTimeout = 500 * time.Millisecond
)

var (
	// DonorPrefixes derive from a user's own listings.
	DonorPrefixes = []string{PrefixMyDonations, PrefixDonationHistory, PrefixDonationSummary}

	// AllPrefixes derive from a user's listings or receive records.
	AllPrefixes = []string{
		PrefixMyDonations,
		PrefixMyReceived,
		PrefixDonationHistory,
		PrefixReceivedHistory,
		PrefixDonationSummary,
		PrefixReceivedSummary,
	}

	ErrNotFound = errors.New("cache: key not found")
)

// Store is a raw key-value backend.
type Store interface {
	// Get returns ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete drops the values and advances each key's generation.
	Delete(ctx context.Context, keys ...string) error
	// Generation is 0 for keys that were never deleted.
	Generation(ctx context.Context, key string) (uint64, error)
	// SetIfGeneration stores value only while key's generation equals gen.
	SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, gen uint64) (bool, error)
	Close() error
}

func Key(prefix, userID string) string {
	return prefix + ":" + userID
}

type Cache struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl}
}

// recoverStore turns a panicking backend into a logged failure.
func recoverStore(op string, keys ...string) {
	if r := recover(); r != nil {
		log.Errorw("cache store panicked", "op", op, "keys", keys, "panic", r)
	}
}

// Get reports a miss for absent keys and for any backend failure.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	defer recoverStore("get", key)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	payload, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warnw("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return payload, true
}

func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil || c.store == nil {
		return
	}
	defer recoverStore("set", key)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		log.Warnw("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.store == nil || len(keys) == 0 {
		return
	}
	defer recoverStore("delete", keys...)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.store.Delete(ctx, keys...); err != nil {
		log.Warnw("cache delete failed", "keys", keys, "error", err)
	}
}

// Generation reads key's generation ahead of a fill. ok is false when the
// backend failed, in which case the caller must not fill.
func (c *Cache) Generation(ctx context.Context, key string) (gen uint64, ok bool) {
	if c == nil || c.store == nil {
		return 0, false
	}
	defer recoverStore("generation", key)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gen, err := c.store.Generation(ctx, key)
	if err != nil {
		log.Warnw("cache generation failed", "key", key, "error", err)
		return 0, false
	}
	return gen, true
}

// Fill stores payload unless key was invalidated after gen was read.
func (c *Cache) Fill(ctx context.Context, key string, gen uint64, payload []byte) (stored bool) {
	if c == nil || c.store == nil {
		return false
	}
	defer recoverStore("fill", key)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	stored, err := c.store.SetIfGeneration(ctx, key, payload, c.ttl, gen)
	if err != nil {
		log.Warnw("cache fill failed", "key", key, "error", err)
		return false
	}
	return stored
}

// InvalidateUsers removes every prefix:user key in one round trip.
func (c *Cache) InvalidateUsers(ctx context.Context, prefixes []string, userIDs ...string) {
	keys := make([]string, 0, len(prefixes)*len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for _, p := range prefixes {
			keys = append(keys, Key(p, id))
		}
	}
	c.Delete(ctx, keys...)
}

func (c *Cache) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}
