package ward

import "context"

// Account is the durable entity this engine mediates access to. It is a
// snapshot: the engine mutates it in place only after the corresponding
// persistence call succeeded, so a caller's copy always reflects what the
// engine last confirmed durable.
//
// Email is never empty. AltEmail and DisplayName use "" for unset.
// Uniqueness of Email, AltEmail and DisplayName is enforced at the
// persistence boundary, not in memory, and values pass through verbatim (no
// trimming, no case folding).
type Account struct {
	ID               int64
	Email            string
	AltEmail         string
	DisplayName      string
	PasswordHash     string
	EmailVerified    bool
	AltEmailVerified bool
	TwoFactorEnabled bool

	// Stamp is the opaque concurrency token. Every successful update rotates
	// it; outstanding purpose tokens and session claims bound to the old
	// stamp stop validating.
	Stamp string
}

// UpdateResult is the tri-state outcome of every purpose-specific update on
// [AccountStore]. It keeps the mutation engine's classification step to one
// contract regardless of which attribute changed.
type UpdateResult int

const (
	// UpdateOK means the row was written and the stamp rotated.
	UpdateOK UpdateResult = iota
	// UpdateConflict means the supplied stamp was stale. The engine treats
	// this as fatal ([ErrConcurrencyConflict]); it is never a business result.
	UpdateConflict
	// UpdateDuplicate means a unique constraint (email, alt email, display
	// name) rejected the value. Only possible for those attributes.
	UpdateDuplicate
)

func (r UpdateResult) String() string {
	switch r {
	case UpdateOK:
		return "OK"
	case UpdateConflict:
		return "ConcurrencyConflict"
	case UpdateDuplicate:
		return "UniqueConstraintViolation"
	}
	return "Unknown"
}

// AccountStore is the persistence contract the engine depends on. Reference
// implementations live in store/memstore and store/pg.
//
// Lookups return [ErrAccountNotFound] (possibly wrapped) when no row exists.
// Each update takes the caller's last-read stamp and returns the rotated
// stamp on UpdateOK; on any other result the returned stamp is "".
//
// UpdateEmail also clears the email-verified flag, and UpdateAltEmail the
// alt-email-verified flag: a changed address is unverified by definition.
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Create persists a new account, assigning ID and Stamp on UpdateOK.
	// A duplicate email reports UpdateDuplicate.
	Create(ctx context.Context, a *Account) (UpdateResult, error)

	UpdatePasswordHash(ctx context.Context, id int64, stamp, newHash string) (string, UpdateResult, error)
	UpdateEmail(ctx context.Context, id int64, stamp, email string) (string, UpdateResult, error)
	UpdateAltEmail(ctx context.Context, id int64, stamp, altEmail string) (string, UpdateResult, error)
	UpdateDisplayName(ctx context.Context, id int64, stamp, name string) (string, UpdateResult, error)
	UpdateTwoFactorEnabled(ctx context.Context, id int64, stamp string, enabled bool) (string, UpdateResult, error)
	UpdateEmailVerified(ctx context.Context, id int64, stamp string, verified bool) (string, UpdateResult, error)
	UpdateAltEmailVerified(ctx context.Context, id int64, stamp string, verified bool) (string, UpdateResult, error)
}

// Hasher abstracts password hashing. The engine never inspects hashes; it
// only round-trips them between the store and the hasher.
type Hasher interface {
	// Hash derives an encoded hash from a plaintext password. An error means
	// the password is unusable under the hasher's policy (too short, etc.).
	Hash(password string) (string, error)
	// Verify reports whether password matches the encoded hash. An error is
	// a malformed hash, not a mismatch.
	Verify(password, encoded string) (bool, error)
}
