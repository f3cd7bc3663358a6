package session

import (
	"context"
	"errors"
)

// ErrBackend wraps store-level failures (network, serialization). Handles
// never surface scheme absence as an error; that is the bool return.
var ErrBackend = errors.New("session store unavailable")

// Claims is the primary scheme's projection of an account. It is derived
// per establish/refresh and never a live reference into account memory.
type Claims struct {
	AccountID  int64
	Persistent bool
}

// Handle is a request-scoped view over one caller's session state. All
// writes are last-write-wins within the one session context the handle is
// bound to.
type Handle interface {
	// Current returns the primary scheme's claims, or ok=false when no
	// primary session exists for this handle.
	Current(ctx context.Context) (Claims, bool, error)
	// EstablishPrimary sets the primary scheme, replacing any prior claims.
	EstablishPrimary(ctx context.Context, c Claims) error
	// RefreshPrimary re-derives the primary scheme's claims in place. It is
	// an establish that keeps the existing lifetime class.
	RefreshPrimary(ctx context.Context, c Claims) error
	// ClearPrimary removes the primary scheme. Idempotent.
	ClearPrimary(ctx context.Context) error

	// EstablishPending sets the two-factor-pending scheme for accountID.
	EstablishPending(ctx context.Context, accountID int64) error
	// PendingAccountID returns the pending scheme's account id, or ok=false
	// when no pending session exists (or it expired).
	PendingAccountID(ctx context.Context) (int64, bool, error)
	// ClearPending removes the pending scheme. Idempotent.
	ClearPending(ctx context.Context) error
}

// Store mints request-scoped handles. The id is the transport's opaque
// session identifier (typically a cookie value); the store namespaces all
// scheme state under it.
type Store interface {
	Handle(id string) Handle
}
