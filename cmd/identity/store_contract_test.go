package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// runStoreContract exercises behavior every Store implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create and lookup", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		a, err := s.CreateAccount(ctx, CreateAccountInput{Email: "  a@x.com ", PasswordHash: "h1", Now: now})
		if err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
		if a.ID <= 0 || a.Email != "a@x.com" || !a.Active {
			t.Fatalf("unexpected account: %+v", a)
		}
		if !a.CreatedAt.Equal(now) || !a.UpdatedAt.Equal(now) {
			t.Fatalf("unexpected timestamps: %+v", a)
		}

		byID, err := s.GetAccountByID(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetAccountByID: %v", err)
		}
		if byID.Email != "a@x.com" || byID.PasswordHash != "h1" {
			t.Fatalf("unexpected account by id: %+v", byID)
		}

		byEmail, err := s.GetAccountByEmail(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("GetAccountByEmail: %v", err)
		}
		if byEmail.ID != a.ID {
			t.Fatalf("id mismatch: %d vs %d", byEmail.ID, a.ID)
		}
	})

	t.Run("ids increase", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var prev int64
		for i := 0; i < 3; i++ {
			a, err := s.CreateAccount(ctx, CreateAccountInput{Email: fmt.Sprintf("u%d@x.com", i), PasswordHash: "h"})
			if err != nil {
				t.Fatalf("CreateAccount: %v", err)
			}
			if a.ID <= prev {
				t.Fatalf("expected increasing ids, got %d after %d", a.ID, prev)
			}
			prev = a.ID
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.CreateAccount(ctx, CreateAccountInput{Email: "dup@x.com", PasswordHash: "h1"})
		if err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
		_, err = s.CreateAccount(ctx, CreateAccountInput{Email: "dup@x.com", PasswordHash: "h2"})
		if !IsConflict(err) || !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}

		got, err := s.GetAccountByEmail(ctx, "dup@x.com")
		if err != nil {
			t.Fatalf("GetAccountByEmail: %v", err)
		}
		if got.ID != first.ID || got.PasswordHash != "h1" {
			t.Fatalf("conflicting create mutated state: %+v", got)
		}
	})

	t.Run("email is case sensitive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.CreateAccount(ctx, CreateAccountInput{Email: "Case@x.com", PasswordHash: "h"}); err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
		if _, err := s.CreateAccount(ctx, CreateAccountInput{Email: "case@x.com", PasswordHash: "h"}); err != nil {
			t.Fatalf("expected distinct account for different case, got %v", err)
		}
		if _, err := s.GetAccountByEmail(ctx, "CASE@x.com"); !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.GetAccountByID(ctx, 9999); !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, err := s.GetAccountByEmail(ctx, "nobody@x.com"); !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if err := s.SetAccountActive(ctx, 9999, false, time.Time{}); !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.CreateAccount(ctx, CreateAccountInput{Email: "  ", PasswordHash: "h"}); !IsInvalidInput(err) {
			t.Fatalf("expected invalid input, got %v", err)
		}
		if _, err := s.CreateAccount(ctx, CreateAccountInput{Email: "a@x.com"}); !IsInvalidInput(err) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateAccount(ctx, CreateAccountInput{Email: "off@x.com", PasswordHash: "h"})
		if err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
		if err := s.SetAccountActive(ctx, a.ID, false, time.Now()); err != nil {
			t.Fatalf("SetAccountActive: %v", err)
		}
		got, err := s.GetAccountByID(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetAccountByID: %v", err)
		}
		if got.Active {
			t.Fatalf("expected inactive account")
		}
	})

	t.Run("concurrent duplicate signup", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			ok, confl int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.CreateAccount(ctx, CreateAccountInput{Email: "race@x.com", PasswordHash: "h"})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case IsConflict(err):
					confl++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if ok != 1 || confl != n-1 {
			t.Fatalf("expected exactly one winner, got ok=%d conflicts=%d", ok, confl)
		}
	})
}

func TestInMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewInMemoryStore() })
}

func TestInMemoryStore_ContextCanceled(t *testing.T) {
	s := NewInMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CreateAccount(ctx, CreateAccountInput{Email: "a@x.com", PasswordHash: "h"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
