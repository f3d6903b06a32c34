package identity

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a dev-only fallback when no database is configured.
type InMemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]Account
	byEmail map[string]int64
}

// NewInMemoryStore constructs an in-memory Store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[int64]Account),
		byEmail: make(map[string]int64),
	}
}

// CreateAccount inserts a new active account.
func (s *InMemoryStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	in, err := checkCreateInput(op, in)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[in.Email]; exists {
		return Account{}, ConflictError{Op: op, Field: "email"}
	}

	s.nextID++
	a := Account{
		ID:           s.nextID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Active:       true,
		CreatedAt:    in.Now,
		UpdatedAt:    in.Now,
	}
	s.byID[a.ID] = a
	s.byEmail[a.Email] = a.ID
	return a, nil
}

// GetAccountByID returns the account with id.
func (s *InMemoryStore) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	const op = "identity.GetAccountByID"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return Account{}, accountNotFound(op)
	}
	return a, nil
}

// GetAccountByEmail returns the account registered under email (exact match after trim).
func (s *InMemoryStore) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	const op = "identity.GetAccountByEmail"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	email = NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return Account{}, accountNotFound(op)
	}
	return s.byID[id], nil
}

// SetAccountActive toggles the active flag.
func (s *InMemoryStore) SetAccountActive(ctx context.Context, id int64, active bool, now time.Time) error {
	const op = "identity.SetAccountActive"

	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return accountNotFound(op)
	}
	a.Active = active
	a.UpdatedAt = now
	s.byID[id] = a
	return nil
}

var _ Store = (*InMemoryStore)(nil)
