package posts

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"postboard/cmd/internal/storage"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := storage.OpenSQLite(ctx, storage.MemoryDSN)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var ownerSeq atomic.Int64

func insertSQLiteOwner(t *testing.T, db *sql.DB) int64 {
	t.Helper()

	now := storage.ToMillis(time.Now())
	res, err := db.Exec(
		`INSERT INTO users (email, hashed_password, created_at, updated_at) VALUES (?, 'h', ?, ?)`,
		fmt.Sprintf("owner-%d@x.com", ownerSeq.Add(1)), now, now,
	)
	if err != nil {
		t.Fatalf("insert owner: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

func TestSQLiteStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) storeFixture {
		db := openTestSQLite(t)
		s, err := NewSQLiteStore(db)
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		return storeFixture{
			store:    s,
			newOwner: func(t *testing.T) int64 { return insertSQLiteOwner(t, db) },
		}
	})
}

func TestSQLiteStore_UnknownOwner(t *testing.T) {
	s, err := NewSQLiteStore(openTestSQLite(t))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if _, err := s.CreatePost(context.Background(), CreateInput{OwnerID: 4242, Text: "x"}); err == nil {
		t.Fatalf("expected foreign key failure")
	}
}

func TestSQLiteStore_CascadeOnAccountDelete(t *testing.T) {
	db := openTestSQLite(t)
	s, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	ctx := context.Background()
	owner := insertSQLiteOwner(t, db)

	p, err := s.CreatePost(ctx, CreateInput{OwnerID: owner, Text: "bye"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, owner); err != nil {
		t.Fatalf("delete owner: %v", err)
	}
	if _, err := s.GetPost(ctx, p.ID); err != ErrNotFound {
		t.Fatalf("expected cascade delete, got %v", err)
	}
}
