package posts

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
		return nil, fmt.Errorf("posts: nil sqlite db")
	}
	return &SQLiteStore{db: db}, nil
}

const sqlitePostColumns = `id, user_id, text, created_at, updated_at`

// CreatePost inserts a post.
func (s *SQLiteStore) CreatePost(ctx context.Context, in CreateInput) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	ms := storage.ToMillis(now)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (text, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		in.Text, in.OwnerID, ms, ms,
	)
	if err != nil {
		if storage.SQLiteForeignKeyViolation(err) {
			return Post{}, fmt.Errorf("posts: owner %d does not exist: %w", in.OwnerID, err)
		}
		return Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, err
	}

	return Post{
		ID:        id,
		OwnerID:   in.OwnerID,
		Text:      in.Text,
		CreatedAt: storage.FromMillis(ms),
		UpdatedAt: storage.FromMillis(ms),
	}, nil
}

// GetPost returns the post with id.
func (s *SQLiteStore) GetPost(ctx context.Context, id int64) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	p, err := scanSQLitePost(s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePostColumns+` FROM posts WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

// ListPostsByOwner returns the owner's posts, newest first.
func (s *SQLiteStore) ListPostsByOwner(ctx context.Context, ownerID int64) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqlitePostColumns+`
		   FROM posts
		  WHERE user_id = ?
		  ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]Post, 0, 16)
	for rows.Next() {
		p, err := scanSQLitePost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePost removes the post if ownerID owns it.
func (s *SQLiteStore) DeletePost(ctx context.Context, id, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePost(row sqliteScanner) (Post, error) {
	var (
		p                  Post
		createdAt, updated int64
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Text, &createdAt, &updated); err != nil {
		return Post{}, err
	}
	p.CreatedAt = storage.FromMillis(createdAt)
	p.UpdatedAt = storage.FromMillis(updated)
	return p, nil
}

var _ Store = (*SQLiteStore)(nil)
