package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"postboard/cmd/identity"
	"postboard/cmd/internal/posts"
	"postboard/cmd/internal/storage"
)

// Store kinds reported in logs and /health.
const (
	storeMemory   = "memory"
	storeSQLite   = "sqlite"
	storePostgres = "postgres"
)

// stores bundles the persistence backends chosen at startup.
// The app owns the underlying pool or handle; the stores never close it.
type stores struct {
	kind     string
	accounts identity.Store
	posts    posts.Store

	pool *pgxpool.Pool
	db   *sql.DB
}

// Ping reports whether the backing database is reachable.
func (s *stores) Ping(ctx context.Context) error {
	switch {
	case s.pool != nil:
		return PingDB(ctx, s.pool, 2*time.Second)
	case s.db != nil:
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return s.db.PingContext(pctx)
	default:
		return nil
	}
}

// Close releases the pool or handle.
func (s *stores) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// newStores picks Postgres when a database URL is set, then SQLite when a
// path is set, then the in-memory dev store.
func newStores(ctx context.Context, cfg Config, log Logger) (*stores, error) {
	switch {
	case cfg.DatabaseURL != "":
		return newPostgresStores(ctx, cfg, log)
	case cfg.SQLitePath != "":
		return newSQLiteStores(ctx, cfg, log)
	default:
		if cfg.Environment == EnvProduction {
			return nil, errors.New("app: no database configured (set POSTBOARD_DATABASE_URL or POSTBOARD_SQLITE_PATH)")
		}
		log.Info("db.disabled.inmemory_store")
		return &stores{
			kind:     storeMemory,
			accounts: identity.NewInMemoryStore(),
			posts:    posts.NewInMemoryStore(),
		}, nil
	}
}

func newPostgresStores(ctx context.Context, cfg Config, log Logger) (*stores, error) {
	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DBAutoMigrate {
		if err := storage.MigratePostgres(ctx, pool, cfg.DBSchema); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("db.migrate.ok", "schema", cfg.DBSchema)
	}

	accounts, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, err
	}
	postStore, err := posts.NewPostgresStore(pool, posts.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("db.enabled.postgres_store", "schema", cfg.DBSchema)
	return &stores{kind: storePostgres, accounts: accounts, posts: postStore, pool: pool}, nil
}

func newSQLiteStores(ctx context.Context, cfg Config, log Logger) (*stores, error) {
	db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	accounts, err := identity.NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	postStore, err := posts.NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("db.enabled.sqlite_store", "path", cfg.SQLitePath)
	return &stores{kind: storeSQLite, accounts: accounts, posts: postStore, db: db}, nil
}
