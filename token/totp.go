package token

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TotpConfig tunes the one-time-code provider. Zero values take RFC 6238
// defaults.
type TotpConfig struct {
	Digits int
	Period int
	// Skew is the number of adjacent periods accepted on validation.
	Skew int
}

func (c *TotpConfig) normalize() {
	if c.Digits <= 0 {
		c.Digits = 6
	}
	if c.Period <= 0 {
		c.Period = 30
	}
	if c.Skew < 0 {
		c.Skew = 0
	}
	if c.Skew == 0 {
		c.Skew = 1
	}
}

// TotpProvider generates time-based one-time codes. The per-call secret is
// derived from a service key and the (purpose, account, stamp) triple, so a
// code never validates for a different purpose or account, and rotating the
// account stamp orphans previously issued codes.
type TotpProvider struct {
	key []byte
	cfg TotpConfig
	now func() time.Time
}

// NewTotpProvider builds the provider. key is the service-wide derivation
// secret and must be non-empty.
func NewTotpProvider(key []byte, cfg TotpConfig) (*TotpProvider, error) {
	if len(key) == 0 {
		return nil, errors.New("totp: empty service key")
	}
	cfg.normalize()
	k := make([]byte, len(key))
	copy(k, key)
	return &TotpProvider{key: k, cfg: cfg, now: time.Now}, nil
}

func (p *TotpProvider) secret(purpose Purpose, sub Subject) string {
	mac := hmac.New(sha256.New, p.key)
	mac.Write([]byte(string(purpose)))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(sub.AccountID, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(sub.Stamp))
	sum := mac.Sum(nil)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:20])
}

func (p *TotpProvider) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(p.cfg.Period),
		Skew:      uint(p.cfg.Skew),
		Digits:    otp.Digits(p.cfg.Digits),
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Generate returns the current code for the derived secret.
func (p *TotpProvider) Generate(_ context.Context, purpose Purpose, sub Subject) (string, error) {
	code, err := totp.GenerateCodeCustom(p.secret(purpose, sub), p.now(), p.opts())
	if err != nil {
		return "", fmt.Errorf("totp generate: %w", err)
	}
	return code, nil
}

// Validate checks value within the configured skew window. A mismatch is
// Invalid; TOTP has no way to distinguish an expired code from a wrong one.
func (p *TotpProvider) Validate(_ context.Context, purpose Purpose, sub Subject, value string) (Validity, error) {
	ok, err := totp.ValidateCustom(value, p.secret(purpose, sub), p.now(), p.opts())
	if err != nil {
		// The library errors only on malformed input; treat it as a failed
		// validation, not a backend fault.
		return Invalid, nil
	}
	if !ok {
		return Invalid, nil
	}
	return Valid, nil
}
