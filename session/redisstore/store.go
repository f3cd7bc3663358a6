// Package redisstore persists session scheme state in Redis. Primary and
// pending schemes live under separate key prefixes so clearing one never
// touches the other.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davengard/ward/session"
)

const (
	primaryKeyPrefix = "wsp"
	pendingKeyPrefix = "wpd"
)

// Config controls key layout and scheme lifetimes.
type Config struct {
	// Prefix namespaces every key, ahead of the scheme prefix. Optional.
	Prefix string
	// PrimaryTTL is the non-persistent primary session lifetime.
	PrimaryTTL time.Duration
	// PersistentTTL is the primary session lifetime when the caller asked to
	// be remembered.
	PersistentTTL time.Duration
	// PendingTTL bounds the two-factor-pending scheme. Keep it short; the
	// pending session exists only to correlate one code challenge.
	PendingTTL time.Duration
}

func (c *Config) normalize() {
	if c.PrimaryTTL <= 0 {
		c.PrimaryTTL = 2 * time.Hour
	}
	if c.PersistentTTL <= 0 {
		c.PersistentTTL = 14 * 24 * time.Hour
	}
	if c.PendingTTL <= 0 {
		c.PendingTTL = 5 * time.Minute
	}
}

// Store is a [session.Store] on a shared Redis client.
type Store struct {
	redis *redis.Client
	cfg   Config
}

// New wires a store over client. The client is borrowed, not owned.
func New(client *redis.Client, cfg Config) *Store {
	cfg.normalize()
	return &Store{redis: client, cfg: cfg}
}

// Handle binds a request-scoped view to one opaque session identifier.
func (s *Store) Handle(id string) session.Handle {
	return &handle{store: s, id: id}
}

type handle struct {
	store *Store
	id    string
}

func (h *handle) primaryKey() string {
	return h.store.cfg.Prefix + primaryKeyPrefix + ":" + h.id
}

func (h *handle) pendingKey() string {
	return h.store.cfg.Prefix + pendingKeyPrefix + ":" + h.id
}

func (h *handle) Current(ctx context.Context) (session.Claims, bool, error) {
	data, err := h.store.redis.Get(ctx, h.primaryKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Claims{}, false, nil
		}
		return session.Claims{}, false, fmt.Errorf("%w: %v", session.ErrBackend, err)
	}
	claims, err := session.DecodeClaims(data)
	if err != nil {
		// A corrupt record is unusable; drop it rather than fail every read.
		_, _ = h.store.redis.Del(ctx, h.primaryKey()).Result()
		return session.Claims{}, false, nil
	}
	return claims, true, nil
}

func (h *handle) EstablishPrimary(ctx context.Context, c session.Claims) error {
	ttl := h.store.cfg.PrimaryTTL
	if c.Persistent {
		ttl = h.store.cfg.PersistentTTL
	}
	if err := h.store.redis.Set(ctx, h.primaryKey(), session.EncodeClaims(c), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", session.ErrBackend, err)
	}
	return nil
}

func (h *handle) RefreshPrimary(ctx context.Context, c session.Claims) error {
	// Same write path: the lifetime class follows the Persistent claim.
	return h.EstablishPrimary(ctx, c)
}

func (h *handle) ClearPrimary(ctx context.Context) error {
	if err := h.store.redis.Del(ctx, h.primaryKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", session.ErrBackend, err)
	}
	return nil
}

func (h *handle) EstablishPending(ctx context.Context, accountID int64) error {
	if err := h.store.redis.Set(ctx, h.pendingKey(), session.EncodePending(accountID), h.store.cfg.PendingTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", session.ErrBackend, err)
	}
	return nil
}

func (h *handle) PendingAccountID(ctx context.Context) (int64, bool, error) {
	data, err := h.store.redis.Get(ctx, h.pendingKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: %v", session.ErrBackend, err)
	}
	id, err := session.DecodePending(data)
	if err != nil {
		_, _ = h.store.redis.Del(ctx, h.pendingKey()).Result()
		return 0, false, nil
	}
	return id, true, nil
}

func (h *handle) ClearPending(ctx context.Context) error {
	if err := h.store.redis.Del(ctx, h.pendingKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", session.ErrBackend, err)
	}
	return nil
}
