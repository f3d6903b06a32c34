package storage

import (
	"context"
	"testing"
	"time"
)

func TestOpenSQLite_MigratesOnce(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := OpenSQLite(ctx, MemoryDSN)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Re-applying must be a no-op.
	if err := MigrateSQLite(ctx, db); err != nil {
		t.Fatalf("MigrateSQLite again: %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", n)
	}
}

func TestSQLite_ConstraintClassification(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := OpenSQLite(ctx, MemoryDSN)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = db.Close() }()

	now := ToMillis(time.Now())
	insert := `INSERT INTO users (email, hashed_password, created_at, updated_at) VALUES (?, ?, ?, ?)`

	if _, err := db.ExecContext(ctx, insert, "a@x.com", "h", now, now); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	_, err = db.ExecContext(ctx, insert, "a@x.com", "h", now, now)
	if !SQLiteUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO posts (text, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		"hello", 999, now, now,
	)
	if !SQLiteForeignKeyViolation(err) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestExtractUp(t *testing.T) {
	in := "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n"
	got := extractUp(in)
	if got != "\nCREATE TABLE a (x INT);\n" {
		t.Fatalf("unexpected up section: %q", got)
	}
	if extractUp("SELECT 1;") != "SELECT 1;" {
		t.Fatalf("file without markers should be returned as-is")
	}
}

func TestMillisRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 123_000_000, time.UTC)
	if got := FromMillis(ToMillis(now)); !got.Equal(now) {
		t.Fatalf("round trip: got %v want %v", got, now)
	}
}
