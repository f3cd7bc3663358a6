// Package memstore keeps session scheme state in process memory, for hosts
// that embed the engine without Redis and for tests. Records expire the
// same way the Redis store's do.
package memstore

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/davengard/ward/session"
)

// Config mirrors redisstore's lifetimes.
type Config struct {
	PrimaryTTL    time.Duration
	PersistentTTL time.Duration
	PendingTTL    time.Duration
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

// Store is an in-process [session.Store].
type Store struct {
	cache *gocache.Cache
	cfg   Config
}

// New builds a store with its own expiring cache.
func New(cfg Config) *Store {
	cfg.normalize()
	return &Store{
		cache: gocache.New(cfg.PrimaryTTL, 10*time.Minute),
		cfg:   cfg,
	}
}

// Handle binds a request-scoped view to one opaque session identifier.
func (s *Store) Handle(id string) session.Handle {
	return &handle{store: s, id: id}
}

type handle struct {
	store *Store
	id    string
}

func (h *handle) primaryKey() string { return "p:" + h.id }
func (h *handle) pendingKey() string { return "d:" + h.id }

func (h *handle) Current(context.Context) (session.Claims, bool, error) {
	v, ok := h.store.cache.Get(h.primaryKey())
	if !ok {
		return session.Claims{}, false, nil
	}
	c, ok := v.(session.Claims)
	if !ok {
		h.store.cache.Delete(h.primaryKey())
		return session.Claims{}, false, nil
	}
	return c, true, nil
}

func (h *handle) EstablishPrimary(_ context.Context, c session.Claims) error {
	ttl := h.store.cfg.PrimaryTTL
	if c.Persistent {
		ttl = h.store.cfg.PersistentTTL
	}
	h.store.cache.Set(h.primaryKey(), c, ttl)
	return nil
}

func (h *handle) RefreshPrimary(ctx context.Context, c session.Claims) error {
	return h.EstablishPrimary(ctx, c)
}

func (h *handle) ClearPrimary(context.Context) error {
	h.store.cache.Delete(h.primaryKey())
	return nil
}

func (h *handle) EstablishPending(_ context.Context, accountID int64) error {
	h.store.cache.Set(h.pendingKey(), accountID, h.store.cfg.PendingTTL)
	return nil
}

func (h *handle) PendingAccountID(context.Context) (int64, bool, error) {
	v, ok := h.store.cache.Get(h.pendingKey())
	if !ok {
		return 0, false, nil
	}
	id, ok := v.(int64)
	if !ok {
		h.store.cache.Delete(h.pendingKey())
		return 0, false, nil
	}
	return id, true, nil
}

func (h *handle) ClearPending(context.Context) error {
	h.store.cache.Delete(h.pendingKey())
	return nil
}
