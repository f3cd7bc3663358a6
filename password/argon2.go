// Package password provides argon2id hashing behind the engine's Hasher
// contract. Hashes are stored in PHC string format so parameters travel
// with the hash and can be upgraded over time.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrWeakPassword is returned by Hash when the plaintext fails the length
// policy. Callers map it to their "unusable new password" outcome.
var ErrWeakPassword = errors.New("password below minimum length")

const (
	phcAlgorithm = "argon2id"
	minPassBytes = 8
)

// Parameter floors. Anything below is a misconfiguration, not a tuning
// choice.
const (
	floorMemoryKB    uint32 = 8 * 1024
	floorTime        uint32 = 1
	floorParallelism uint8  = 1
	floorSaltLength  uint32 = 16
	floorKeyLength   uint32 = 16
)

// Config holds argon2id cost parameters.
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func (c Config) validate() error {
	switch {
	case c.Memory < floorMemoryKB:
		return errors.New("argon2 memory below minimum")
	case c.Time < floorTime:
		return errors.New("argon2 time cost below minimum")
	case c.Parallelism < floorParallelism:
		return errors.New("argon2 parallelism below minimum")
	case c.SaltLength < floorSaltLength:
		return errors.New("argon2 salt length below minimum")
	case c.KeyLength < floorKeyLength:
		return errors.New("argon2 key length below minimum")
	}
	return nil
}

// Argon2 hashes and verifies passwords with argon2id.
type Argon2 struct {
	cfg Config
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Argon2{cfg: cfg}, nil
}

// Hash derives a PHC-encoded argon2id hash with a fresh random salt.
// Password bytes are used exactly as provided (no Unicode normalization).
func (a *Argon2) Hash(password string) (string, error) {
	if len(password) < minPassBytes {
		return "", fmt.Errorf("%w: need at least %d bytes", ErrWeakPassword, minPassBytes)
	}

	salt := make([]byte, a.cfg.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, a.cfg.Time, a.cfg.Memory, a.cfg.Parallelism, a.cfg.KeyLength)

	var b strings.Builder
	fmt.Fprintf(&b, "$%s$v=%d$m=%d,t=%d,p=%d$", phcAlgorithm, argon2.Version, a.cfg.Memory, a.cfg.Time, a.cfg.Parallelism)
	b.WriteString(base64.StdEncoding.EncodeToString(salt))
	b.WriteByte('$')
	b.WriteString(base64.StdEncoding.EncodeToString(key))
	return b.String(), nil
}

// Verify recomputes the hash with the encoded parameters and compares in
// constant time. An error means the encoded hash is malformed, never that
// the password mismatched.
func (a *Argon2) Verify(password string, encodedHash string) (bool, error) {
	ph, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), ph.salt, ph.time, ph.memory, ph.parallelism, uint32(len(ph.key)))
	return subtle.ConstantTimeCompare(key, ph.key) == 1, nil
}

// NeedsUpgrade reports whether encodedHash was produced under weaker cost
// parameters than the current configuration.
func (a *Argon2) NeedsUpgrade(encodedHash string) (bool, error) {
	ph, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}
	weaker := a.cfg.Memory > ph.memory ||
		a.cfg.Time > ph.time ||
		a.cfg.Parallelism > ph.parallelism ||
		a.cfg.KeyLength != uint32(len(ph.key))
	return weaker, nil
}

type phcHash struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// decodePHC parses "$argon2id$v=19$m=...,t=...,p=...$<salt>$<key>".
func decodePHC(encoded string) (*phcHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != phcAlgorithm {
		return nil, errors.New("unsupported algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, errors.New("missing argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	var ph phcHash
	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &ph.memory, &ph.time, &parallelism); err != nil {
		return nil, errors.New("invalid parameter format")
	}
	if parallelism == 0 || parallelism > 255 {
		return nil, errors.New("invalid parallelism value")
	}
	ph.parallelism = uint8(parallelism)

	var err error
	if ph.salt, err = base64.StdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if ph.key, err = base64.StdEncoding.DecodeString(parts[5]); err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(ph.salt) == 0 || len(ph.key) == 0 {
		return nil, errors.New("invalid hash length")
	}
	return &ph, nil
}
