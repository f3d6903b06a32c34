package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"postboard/cmd/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Schema/table identifiers are quoted via pgx.Identifier.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema (default storage.DefaultSchema).
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !storage.ValidSchema(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: storage.DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const pgAccountColumns = `id, email, hashed_password, is_active, created_at, updated_at`

// CreateAccount inserts a new active account.
func (s *PostgresStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	in, err := checkCreateInput(op, in)
	if err != nil {
		return Account{}, err
	}

	users := storage.PGIdent(s.schema, "users")

	row := s.pool.QueryRow(ctx,
		`INSERT INTO `+users+` (email, hashed_password, is_active, created_at, updated_at)
		 VALUES ($1, $2, TRUE, $3, $3)
		 RETURNING `+pgAccountColumns,
		in.Email, in.PasswordHash, in.Now,
	)
	a, err := scanAccount(row)
	if err != nil {
		if _, ok := storage.PGUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: "email"}
		}
		return Account{}, err
	}
	return a, nil
}

// GetAccountByID returns the account with id.
func (s *PostgresStore) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	const op = "identity.GetAccountByID"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	users := storage.PGIdent(s.schema, "users")
	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+pgAccountColumns+` FROM `+users+` WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, accountNotFound(op)
		}
		return Account{}, err
	}
	return a, nil
}

// GetAccountByEmail returns the account registered under email.
func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	const op = "identity.GetAccountByEmail"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	users := storage.PGIdent(s.schema, "users")
	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+pgAccountColumns+` FROM `+users+` WHERE email = $1`, NormalizeEmail(email),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, accountNotFound(op)
		}
		return Account{}, err
	}
	return a, nil
}

// SetAccountActive toggles the active flag.
func (s *PostgresStore) SetAccountActive(ctx context.Context, id int64, active bool, now time.Time) error {
	const op = "identity.SetAccountActive"

	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	users := storage.PGIdent(s.schema, "users")
	ct, err := s.pool.Exec(ctx,
		`UPDATE `+users+` SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, now, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return accountNotFound(op)
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

var _ Store = (*PostgresStore)(nil)
