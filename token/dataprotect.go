package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DataProtectConfig tunes the signed-token provider.
type DataProtectConfig struct {
	// TTL bounds token lifetime. Defaults to 24h, the usual email-link
	// window.
	TTL time.Duration
}

func (c *DataProtectConfig) normalize() {
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
}

// DataProtectProvider issues purpose-scoped, self-expiring HMAC-SHA256
// tokens. The purpose, account id and account stamp ride inside the signed
// payload; validation rejects any mismatch.
type DataProtectProvider struct {
	key []byte
	cfg DataProtectConfig
	now func() time.Time
}

type protectedClaims struct {
	Purpose string `json:"pur"`
	Stamp   string `json:"stp"`
	jwt.RegisteredClaims
}

// NewDataProtectProvider builds the provider. key signs every token and
// must be non-empty.
func NewDataProtectProvider(key []byte, cfg DataProtectConfig) (*DataProtectProvider, error) {
	if len(key) == 0 {
		return nil, errors.New("dataprotect: empty signing key")
	}
	cfg.normalize()
	k := make([]byte, len(key))
	copy(k, key)
	return &DataProtectProvider{key: k, cfg: cfg, now: time.Now}, nil
}

// Generate signs a token for exactly (purpose, subject).
func (p *DataProtectProvider) Generate(_ context.Context, purpose Purpose, sub Subject) (string, error) {
	now := p.now()
	claims := protectedClaims{
		Purpose: string(purpose),
		Stamp:   sub.Stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(sub.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("dataprotect sign: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature, lifetime and the purpose/account/stamp
// binding. Expiry is the one verdict reported separately; every other
// defect is Invalid.
func (p *DataProtectProvider) Validate(_ context.Context, purpose Purpose, sub Subject, value string) (Validity, error) {
	var claims protectedClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.key, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Expired, nil
		}
		return Invalid, nil
	}
	if claims.Purpose != string(purpose) {
		return Invalid, nil
	}
	if claims.Subject != strconv.FormatInt(sub.AccountID, 10) {
		return Invalid, nil
	}
	if claims.Stamp != sub.Stamp {
		return Invalid, nil
	}
	return Valid, nil
}
