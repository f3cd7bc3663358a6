package ward

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrMissingArgument is returned when a required argument (email,
	// password, token, code) is empty. This is a caller bug, not a business
	// outcome.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrConcurrencyConflict is returned when a persistence call detects a
	// stale concurrency stamp. The engine has no reconciliation strategy and
	// never retries; the caller must re-read the account.
	ErrConcurrencyConflict = errors.New("account concurrency conflict")
	// ErrAccountNotFound is the store contract's not-found sentinel.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSessionBackend wraps session adapter failures.
	ErrSessionBackend = errors.New("session backend unavailable")
	// ErrStoreBackend wraps account store failures that are not one of the
	// classified update results.
	ErrStoreBackend = errors.New("account store unavailable")
	// ErrMailBackend wraps notification delivery failures.
	ErrMailBackend = errors.New("mail delivery failed")
	// ErrTokenBackend wraps token provider failures that are not a
	// business-level Invalid/Expired validity.
	ErrTokenBackend = errors.New("token provider failure")
)

func wrapSession(err error) error { return fmt.Errorf("%w: %v", ErrSessionBackend, err) }
func wrapStore(err error) error   { return fmt.Errorf("%w: %v", ErrStoreBackend, err) }
func wrapMail(err error) error    { return fmt.Errorf("%w: %v", ErrMailBackend, err) }
func wrapToken(err error) error   { return fmt.Errorf("%w: %v", ErrTokenBackend, err) }
