// Package pg is the PostgreSQL AccountStore. Optimistic concurrency rides
// the stamp column: every update matches the caller's stamp in the WHERE
// clause and writes a fresh one, so a stale stamp updates zero rows.
package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/davengard/ward"
	"github.com/davengard/ward/store/pg/migrations"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// Querier is the slice of pgx that the store needs. *pgxpool.Pool and
// pgx.Tx both satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements ward.AccountStore over Postgres.
type Store struct {
	db Querier
}

func New(db Querier) *Store {
	return &Store{db: db}
}

// Connect opens a pgx pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// RunMigrations applies the embedded schema migrations. It takes a
// database/sql handle because goose drives that interface; open one with
// the "pgx" stdlib driver.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

const accountColumns = `id, email, alt_email, display_name, password_hash,
email_verified, alt_email_verified, two_factor_enabled, stamp`

func scanAccount(row pgx.Row) (*ward.Account, error) {
	var a ward.Account
	err := row.Scan(&a.ID, &a.Email, &a.AltEmail, &a.DisplayName, &a.PasswordHash,
		&a.EmailVerified, &a.AltEmailVerified, &a.TwoFactorEnabled, &a.Stamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ward.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*ward.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM account WHERE id = $1;`
	return scanAccount(s.db.QueryRow(ctx, q, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*ward.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM account WHERE email = $1;`
	return scanAccount(s.db.QueryRow(ctx, q, email))
}

func (s *Store) Create(ctx context.Context, a *ward.Account) (ward.UpdateResult, error) {
	const q = `
INSERT INTO account (email, alt_email, display_name, password_hash,
                     email_verified, alt_email_verified, two_factor_enabled, stamp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id;
`
	stamp := uuid.NewString()
	var id int64
	err := s.db.QueryRow(ctx, q, a.Email, a.AltEmail, a.DisplayName, a.PasswordHash,
		a.EmailVerified, a.AltEmailVerified, a.TwoFactorEnabled, stamp).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ward.UpdateDuplicate, nil
		}
		return 0, err
	}
	a.ID = id
	a.Stamp = stamp
	return ward.UpdateOK, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, stamp, newHash string) (string, ward.UpdateResult, error) {
	const q = `
UPDATE account SET password_hash = $3, stamp = $4, updated_at = now()
WHERE id = $1 AND stamp = $2
RETURNING stamp;
`
	return s.update(ctx, id, q, id, stamp, newHash, uuid.NewString())
}

// UpdateEmail clears the verified flag in the same statement: a changed
// address is unverified by definition.
func (s *Store) UpdateEmail(ctx context.Context, id int64, stamp, email string) (string, ward.UpdateResult, error) {
	const q = `
UPDATE account SET email = $3, email_verified = FALSE, stamp = $4, updated_at = now()
WHERE id = $1 AND stamp = $2
RETURNING stamp;
`
	return s.update(ctx, id, q, id, stamp, email, uuid.NewString())
}

func (s *Store) UpdateAltEmail(ctx context.Context, id int64, stamp, altEmail string) (string, ward.UpdateResult, error) {
	const q = `
UPDATE account SET alt_email = $3, alt_email_verified = FALSE, stamp = $4, updated_at = now()
WHERE id = $1 AND stamp = $2
RETURNING stamp;
`
	return s.update(ctx, id, q, id, stamp, altEmail, uuid.NewString())
}

func (s *Store) UpdateDisplayName(ctx context.Context, id int64, stamp, name string) (string, ward.UpdateResult, error) {
	const q = `
UPDATE account SET display_name = $3, stamp = $4, updated_at = now()
WHERE id = $1 AND stamp = $2
RETURNING stamp;
`
	return s.update(ctx, id, q, id, stamp, name, uuid.NewString())
}

func (s *Store) UpdateTwoFactorEnabled(ctx context.Context, id int64, stamp string, enabled bool) (string, ward.UpdateResult, error) {
	const q = `
UPDATE account SET two_factor_enabled = $3, stamp = $4, updated_at = now()
WHERE id = $1 AND stamp = $2
RETURNING stamp;
`
	return s.update(ctx, id, q, id, stamp, enabled, uuid.NewString())
}

func (s *Store) UpdateEmailVerified(ctx context.Context, id int64, stamp string, verified bool) (string, ward.UpdateResult, error) {
	const q = `
UPDATE account SET email_verified = $3, stamp = $4, updated_at = now()
WHERE id = $1 AND stamp = $2
RETURNING stamp;
`
	return s.update(ctx, id, q, id, stamp, verified, uuid.NewString())
}

func (s *Store) UpdateAltEmailVerified(ctx context.Context, id int64, stamp string, verified bool) (string, ward.UpdateResult, error) {
	const q = `
UPDATE account SET alt_email_verified = $3, stamp = $4, updated_at = now()
WHERE id = $1 AND stamp = $2
RETURNING stamp;
`
	return s.update(ctx, id, q, id, stamp, verified, uuid.NewString())
}

// update runs one stamp-guarded UPDATE. Zero rows means either a stale
// stamp or a deleted account; a follow-up existence probe tells them apart.
func (s *Store) update(ctx context.Context, id int64, q string, args ...any) (string, ward.UpdateResult, error) {
	var newStamp string
	err := s.db.QueryRow(ctx, q, args...).Scan(&newStamp)
	if err == nil {
		return newStamp, ward.UpdateOK, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return "", ward.UpdateDuplicate, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", 0, err
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM account WHERE id = $1);`, id).Scan(&exists); err != nil {
		return "", 0, err
	}
	if !exists {
		return "", 0, ward.ErrAccountNotFound
	}
	return "", ward.UpdateConflict, nil
}
