// Package memstore is an in-memory AccountStore for tests and examples. It
// enforces the same uniqueness and stamp semantics as the SQL store so
// engine behavior does not depend on which store backs it.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/davengard/ward"
)

// Store keeps accounts in process memory. The zero value is not usable;
// call New.
type Store struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*ward.Account
}

func New() *Store {
	return &Store{nextID: 1, byID: make(map[int64]*ward.Account)}
}

// GetByID returns a copy of the account, or ErrAccountNotFound.
func (s *Store) GetByID(_ context.Context, id int64) (*ward.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, ward.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

// GetByEmail returns a copy of the account with the given primary email,
// or ErrAccountNotFound. Matching is exact.
func (s *Store) GetByEmail(_ context.Context, email string) (*ward.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ward.ErrAccountNotFound
}

// Create persists a, assigning ID and Stamp. A primary email already held
// by another account reports UpdateDuplicate.
func (s *Store) Create(_ context.Context, a *ward.Account) (ward.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(a.Email, 0) {
		return ward.UpdateDuplicate, nil
	}
	cp := *a
	cp.ID = s.nextID
	s.nextID++
	cp.Stamp = uuid.NewString()
	s.byID[cp.ID] = &cp
	a.ID = cp.ID
	a.Stamp = cp.Stamp
	return ward.UpdateOK, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id int64, stamp, newHash string) (string, ward.UpdateResult, error) {
	return s.update(id, stamp, nil, func(a *ward.Account) {
		a.PasswordHash = newHash
	})
}

// UpdateEmail also clears the verified flag: a changed address is
// unverified by definition.
func (s *Store) UpdateEmail(_ context.Context, id int64, stamp, email string) (string, ward.UpdateResult, error) {
	return s.update(id, stamp, func() bool {
		return s.emailTaken(email, id)
	}, func(a *ward.Account) {
		a.Email = email
		a.EmailVerified = false
	})
}

func (s *Store) UpdateAltEmail(_ context.Context, id int64, stamp, altEmail string) (string, ward.UpdateResult, error) {
	return s.update(id, stamp, func() bool {
		return s.emailTaken(altEmail, id)
	}, func(a *ward.Account) {
		a.AltEmail = altEmail
		a.AltEmailVerified = false
	})
}

func (s *Store) UpdateDisplayName(_ context.Context, id int64, stamp, name string) (string, ward.UpdateResult, error) {
	return s.update(id, stamp, func() bool {
		for otherID, other := range s.byID {
			if otherID != id && other.DisplayName == name {
				return true
			}
		}
		return false
	}, func(a *ward.Account) {
		a.DisplayName = name
	})
}

func (s *Store) UpdateTwoFactorEnabled(_ context.Context, id int64, stamp string, enabled bool) (string, ward.UpdateResult, error) {
	return s.update(id, stamp, nil, func(a *ward.Account) {
		a.TwoFactorEnabled = enabled
	})
}

func (s *Store) UpdateEmailVerified(_ context.Context, id int64, stamp string, verified bool) (string, ward.UpdateResult, error) {
	return s.update(id, stamp, nil, func(a *ward.Account) {
		a.EmailVerified = verified
	})
}

func (s *Store) UpdateAltEmailVerified(_ context.Context, id int64, stamp string, verified bool) (string, ward.UpdateResult, error) {
	return s.update(id, stamp, nil, func(a *ward.Account) {
		a.AltEmailVerified = verified
	})
}

// update is the shared write path: lookup, stamp check, uniqueness check,
// mutate, rotate stamp. dup runs under the store lock.
func (s *Store) update(id int64, stamp string, dup func() bool, mutate func(*ward.Account)) (string, ward.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return "", 0, ward.ErrAccountNotFound
	}
	if a.Stamp != stamp {
		return "", ward.UpdateConflict, nil
	}
	if dup != nil && dup() {
		return "", ward.UpdateDuplicate, nil
	}
	mutate(a)
	a.Stamp = uuid.NewString()
	return a.Stamp, ward.UpdateOK, nil
}

// emailTaken reports whether addr is held as primary or alternate email by
// any account other than exclID. Empty addresses are never taken.
func (s *Store) emailTaken(addr string, exclID int64) bool {
	if addr == "" {
		return false
	}
	for id, a := range s.byID {
		if id == exclID {
			continue
		}
		if a.Email == addr || a.AltEmail == addr {
			return true
		}
	}
	return false
}
