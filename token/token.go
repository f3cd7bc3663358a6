package token

import (
	"context"
	"errors"
)

// Kind names a registered provider implementation. The canonical kinds are
// below; hosts may register additional kinds at startup.
type Kind string

const (
	// KindTotp is the time-based one-time-code provider used for two-factor
	// challenges.
	KindTotp Kind = "totp"
	// KindDataProtection is the signed, self-expiring token provider used
	// for email links (confirmation, password reset).
	KindDataProtection Kind = "dataprotection"
)

// Purpose scopes a token to one specific use so it cannot be replayed
// across unrelated operations.
type Purpose string

const (
	PurposeTwoFactor         Purpose = "TwoFactor"
	PurposeEmailConfirmation Purpose = "EmailConfirmation"
	PurposeResetPassword     Purpose = "ResetPassword"
	PurposeConfirmAltEmail   Purpose = "ConfirmAltEmail"
)

// Validity is a provider's business-level verdict on a presented token.
type Validity int

const (
	Valid Validity = iota
	Invalid
	Expired
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	case Expired:
		return "Expired"
	}
	return "Unknown"
}

// Subject identifies the account a token is generated for. Stamp is the
// account's concurrency token at generation time; providers refuse tokens
// whose stamp no longer matches.
type Subject struct {
	AccountID int64
	Stamp     string
}

// Provider generates and validates tokens for one kind.
type Provider interface {
	Generate(ctx context.Context, purpose Purpose, sub Subject) (string, error)
	Validate(ctx context.Context, purpose Purpose, sub Subject, value string) (Validity, error)
}

var (
	// ErrNotRegistered means the requested kind has no provider. This is a
	// wiring bug, never a business outcome.
	ErrNotRegistered = errors.New("token provider not registered")
	// ErrInvalidArgument means kind, purpose or subject was empty/absent.
	ErrInvalidArgument = errors.New("token dispatch argument missing")
)
