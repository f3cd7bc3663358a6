package token

import (
	"context"
	"fmt"
	"sync"
)

// Registry is a pure kind-to-provider lookup with argument validation. It
// caches nothing and holds no account state.
type Registry struct {
	mu        sync.RWMutex
	providers map[Kind]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[Kind]Provider)}
}

// Register binds kind to p, replacing any prior registration for the same
// kind (last write wins). A nil provider removes the kind.
func (r *Registry) Register(kind Kind, p Provider) {
	if r == nil || kind == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		delete(r.providers, kind)
		return
	}
	r.providers[kind] = p
}

func (r *Registry) lookup(kind Kind, purpose Purpose, sub Subject) (Provider, error) {
	if kind == "" || purpose == "" || sub.AccountID == 0 {
		return nil, fmt.Errorf("%w: kind=%q purpose=%q account=%d", ErrInvalidArgument, kind, purpose, sub.AccountID)
	}
	r.mu.RLock()
	p, ok := r.providers[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, kind)
	}
	return p, nil
}

// Generate dispatches to the provider registered for kind.
func (r *Registry) Generate(ctx context.Context, kind Kind, purpose Purpose, sub Subject) (string, error) {
	if r == nil {
		return "", ErrNotRegistered
	}
	p, err := r.lookup(kind, purpose, sub)
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, purpose, sub)
}

// Validate dispatches to the provider registered for kind. An empty value
// is a precondition violation, not an Invalid verdict.
func (r *Registry) Validate(ctx context.Context, kind Kind, purpose Purpose, sub Subject, value string) (Validity, error) {
	if r == nil {
		return Invalid, ErrNotRegistered
	}
	p, err := r.lookup(kind, purpose, sub)
	if err != nil {
		return Invalid, err
	}
	if value == "" {
		return Invalid, fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}
	return p.Validate(ctx, purpose, sub, value)
}
