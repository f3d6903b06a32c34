package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"postboard/cmd/internal/storage"
)

// SQLiteStore implements Store over an embedded SQLite database.
// The *sql.DB is owned by the caller.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open, migrated SQLite handle (see storage.OpenSQLite).
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("identity: nil sqlite db")
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteAccountColumns = `id, email, hashed_password, is_active, created_at, updated_at`

// CreateAccount inserts a new active account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	in, err := checkCreateInput(op, in)
	if err != nil {
		return Account{}, err
	}

	now := storage.ToMillis(in.Now)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, hashed_password, is_active, created_at, updated_at)
		 VALUES (?, ?, 1, ?, ?)`,
		in.Email, in.PasswordHash, now, now,
	)
	if err != nil {
		if storage.SQLiteUniqueViolation(err) {
			return Account{}, ConflictError{Op: op, Field: "email"}
		}
		return Account{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Account{}, err
	}

	return Account{
		ID:           id,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Active:       true,
		CreatedAt:    storage.FromMillis(now),
		UpdatedAt:    storage.FromMillis(now),
	}, nil
}

// GetAccountByID returns the account with id.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	const op = "identity.GetAccountByID"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	a, err := scanSQLiteAccount(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteAccountColumns+` FROM users WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, accountNotFound(op)
	}
	return a, err
}

// GetAccountByEmail returns the account registered under email.
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	const op = "identity.GetAccountByEmail"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	a, err := scanSQLiteAccount(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteAccountColumns+` FROM users WHERE email = ?`, NormalizeEmail(email),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, accountNotFound(op)
	}
	return a, err
}

// SetAccountActive toggles the active flag.
func (s *SQLiteStore) SetAccountActive(ctx context.Context, id int64, active bool, now time.Time) error {
	const op = "identity.SetAccountActive"

	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, storage.ToMillis(now), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return accountNotFound(op)
	}
	return nil
}

func scanSQLiteAccount(row *sql.Row) (Account, error) {
	var (
		a                  Account
		createdAt, updated int64
	)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Active, &createdAt, &updated); err != nil {
		return Account{}, err
	}
	a.CreatedAt = storage.FromMillis(createdAt)
	a.UpdatedAt = storage.FromMillis(updated)
	return a, nil
}

var _ Store = (*SQLiteStore)(nil)
