package posts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"postboard/cmd/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// Integration tests are opt-in and require POSTBOARD_TEST_DATABASE_URL.

func TestPostgresStore_Contract(t *testing.T) {
	raw := strings.TrimSpace(os.Getenv("POSTBOARD_TEST_DATABASE_URL"))
	if raw == "" {
		t.Skip("integration test skipped: POSTBOARD_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, raw)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("integration test skipped: Postgres unreachable: %v", err)
	}

	runStoreContract(t, func(t *testing.T) storeFixture {
		schema := "postboard_it_" + strings.ToLower(ulid.Make().String())

		mctx, mcancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer mcancel()
		if err := storage.MigratePostgres(mctx, pool, schema); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		t.Cleanup(func() {
			_, _ = pool.Exec(context.Background(), `DROP SCHEMA IF EXISTS `+pgx.Identifier{schema}.Sanitize()+` CASCADE`)
		})

		s, err := NewPostgresStore(pool, WithSchema(schema))
		if err != nil {
			t.Fatalf("NewPostgresStore: %v", err)
		}

		users := storage.PGIdent(schema, "users")
		var n int
		return storeFixture{
			store: s,
			newOwner: func(t *testing.T) int64 {
				n++
				var id int64
				err := pool.QueryRow(context.Background(),
					`INSERT INTO `+users+` (email, hashed_password) VALUES ($1, 'h') RETURNING id`,
					fmt.Sprintf("owner-%d@x.com", n),
				).Scan(&id)
				if err != nil {
					t.Fatalf("insert owner: %v", err)
				}
				return id
			},
		}
	})
}
