package posts

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

// PostgresStore implements Store over PostgreSQL. The pool is owned by the caller.
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
		if !storage.ValidSchema(schema) {
			return fmt.Errorf("posts: invalid schema identifier %q", schema)
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: storage.DefaultSchema}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("posts: nil pool")
	}
	return st, nil
}

const pgPostColumns = `id, user_id, text, created_at, updated_at`

// CreatePost inserts a post.
func (s *PostgresStore) CreatePost(ctx context.Context, in CreateInput) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tbl := storage.PGIdent(s.schema, "posts")
	p, err := scanPost(s.pool.QueryRow(ctx,
		`INSERT INTO `+tbl+` (text, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 RETURNING `+pgPostColumns,
		in.Text, in.OwnerID, now,
	))
	if err != nil {
		if storage.PGForeignKeyViolation(err) {
			return Post{}, fmt.Errorf("posts: owner %d does not exist: %w", in.OwnerID, err)
		}
		return Post{}, err
	}
	return p, nil
}

// GetPost returns the post with id.
func (s *PostgresStore) GetPost(ctx context.Context, id int64) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	tbl := storage.PGIdent(s.schema, "posts")
	p, err := scanPost(s.pool.QueryRow(ctx,
		`SELECT `+pgPostColumns+` FROM `+tbl+` WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

// ListPostsByOwner returns the owner's posts, newest first.
func (s *PostgresStore) ListPostsByOwner(ctx context.Context, ownerID int64) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tbl := storage.PGIdent(s.schema, "posts")
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgPostColumns+`
		   FROM `+tbl+`
		  WHERE user_id = $1
		  ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Post, 0, 16)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePost removes the post if ownerID owns it.
func (s *PostgresStore) DeletePost(ctx context.Context, id, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tbl := storage.PGIdent(s.schema, "posts")
	ct, err := s.pool.Exec(ctx,
		`DELETE FROM `+tbl+` WHERE id = $1 AND user_id = $2`, id, ownerID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Text, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Post{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

var _ Store = (*PostgresStore)(nil)
