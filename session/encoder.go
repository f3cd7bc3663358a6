package session

import (
	"encoding/binary"
	"errors"
)

const recordFormatVersion = 1

var errCorruptRecord = errors.New("session record corrupt")

// EncodeClaims packs primary-scheme claims into the compact binary record
// stored by the backends: version byte, big-endian account id, persistence
// flag.
func EncodeClaims(c Claims) []byte {
	out := make([]byte, 10)
	out[0] = recordFormatVersion
	binary.BigEndian.PutUint64(out[1:9], uint64(c.AccountID))
	if c.Persistent {
		out[9] = 1
	}
	return out
}

// DecodeClaims is the inverse of EncodeClaims. Unknown versions and short
// records are corrupt, never silently empty.
func DecodeClaims(data []byte) (Claims, error) {
	if len(data) != 10 || data[0] != recordFormatVersion {
		return Claims{}, errCorruptRecord
	}
	return Claims{
		AccountID:  int64(binary.BigEndian.Uint64(data[1:9])),
		Persistent: data[9] == 1,
	}, nil
}

// EncodePending packs the pending scheme's sole claim, the account id.
func EncodePending(accountID int64) []byte {
	out := make([]byte, 9)
	out[0] = recordFormatVersion
	binary.BigEndian.PutUint64(out[1:9], uint64(accountID))
	return out
}

// DecodePending is the inverse of EncodePending.
func DecodePending(data []byte) (int64, error) {
	if len(data) != 9 || data[0] != recordFormatVersion {
		return 0, errCorruptRecord
	}
	return int64(binary.BigEndian.Uint64(data[1:9])), nil
}
