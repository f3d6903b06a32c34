package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"postboard/cmd/internal/storage/migrations"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// OpenSQLite opens (or creates) the SQLite database at path and applies
// the embedded migrations. Use MemoryDSN for a throwaway database.
//
// The handle is limited to one connection: SQLite serializes writers anyway,
// and an in-memory database only exists on the connection that created it.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: sqlite path is required")
	}

	dsn := MemoryDSN
	if path != MemoryDSN {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := MigrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// MigrateSQLite applies the embedded SQLite migrations at most once per file.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("storage: nil sqlite db")
	}

	ms, err := loadMigrations(migrations.SQLite, "sqlite")
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS `+migrationTable+` (
		   name TEXT PRIMARY KEY,
		   applied_at INTEGER NOT NULL
		 )`,
	); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, m := range ms {
		if err := applySQLiteMigration(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func applySQLiteMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM `+migrationTable+` WHERE name = ?`, m.name,
	).Scan(&n); err != nil {
		return fmt.Errorf("check migration %s: %w", m.name, err)
	}
	if n > 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, m.up); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
		m.name, time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.name, err)
	}
	return tx.Commit()
}

// SQLiteUniqueViolation reports a UNIQUE or PRIMARY KEY constraint failure.
func SQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

// SQLiteForeignKeyViolation reports a FOREIGN KEY constraint failure.
func SQLiteForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

// ToMillis converts t to the UTC unix-millisecond form stored by SQLite.
func ToMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

// FromMillis is the inverse of ToMillis.
func FromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
