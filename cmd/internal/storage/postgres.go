package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"postboard/cmd/internal/storage/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema is the Postgres schema used when none is configured.
const DefaultSchema = "postboard"

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidSchema reports whether s is a legal, unquoted PostgreSQL identifier.
func ValidSchema(s string) bool {
	return pgIdentRe.MatchString(s)
}

// PGIdent safely quotes a schema-qualified identifier: "schema"."name".
func PGIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

// MigratePostgres applies the embedded Postgres migrations into schema.
// Each file runs at most once, tracked in <schema>.schema_migrations.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if pool == nil {
		return errors.New("storage: nil pool")
	}
	schema = strings.TrimSpace(schema)
	if !ValidSchema(schema) {
		return fmt.Errorf("storage: invalid schema identifier %q", schema)
	}

	ms, err := loadMigrations(migrations.Postgres, "postgres")
	if err != nil {
		return err
	}

	quoted := pgx.Identifier{schema}.Sanitize()
	table := PGIdent(schema, migrationTable)

	if _, err := pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+quoted); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if _, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS `+table+` (
		   name TEXT PRIMARY KEY,
		   applied_at TIMESTAMPTZ NOT NULL
		 )`,
	); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, m := range ms {
		if err := applyPostgresMigration(ctx, pool, table, quoted, m); err != nil {
			return err
		}
	}
	return nil
}

func applyPostgresMigration(ctx context.Context, pool *pgxpool.Pool, table, quotedSchema string, m migration) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var applied bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE name = $1)`, m.name,
	).Scan(&applied); err != nil {
		return fmt.Errorf("check migration %s: %w", m.name, err)
	}
	if applied {
		return nil
	}

	sql := strings.ReplaceAll(m.up, "{{schema}}", quotedSchema)
	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.name, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO `+table+` (name, applied_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		m.name, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.name, err)
	}

	return tx.Commit(ctx)
}

// PGUniqueViolation reports a unique_violation and its constraint name.
func PGUniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(pgErr.ConstraintName)), true
}

// PGForeignKeyViolation reports a foreign_key_violation.
func PGForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503"
}
