package posts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// InMemoryStore is a dev-only fallback when no database is configured.
type InMemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]Post
	byOwner map[int64]map[int64]struct{}
}

// NewInMemoryStore constructs an in-memory Store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[int64]Post),
		byOwner: make(map[int64]map[int64]struct{}),
	}
}

// CreatePost stores a post and assigns the next id.
func (s *InMemoryStore) CreatePost(ctx context.Context, in CreateInput) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	if in.OwnerID <= 0 || in.Text == "" {
		return Post{}, errors.New("posts: invalid input")
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p := Post{
		ID:        s.nextID,
		OwnerID:   in.OwnerID,
		Text:      in.Text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[p.ID] = p

	owned := s.byOwner[p.OwnerID]
	if owned == nil {
		owned = make(map[int64]struct{})
		s.byOwner[p.OwnerID] = owned
	}
	owned[p.ID] = struct{}{}
	return p, nil
}

// GetPost returns the post with id.
func (s *InMemoryStore) GetPost(ctx context.Context, id int64) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

// ListPostsByOwner returns the owner's posts, newest first.
func (s *InMemoryStore) ListPostsByOwner(ctx context.Context, ownerID int64) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := make([]Post, 0, len(s.byOwner[ownerID]))
	for id := range s.byOwner[ownerID] {
		out = append(out, s.byID[id])
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// DeletePost removes the post if ownerID owns it.
func (s *InMemoryStore) DeletePost(ctx context.Context, id, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok || p.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byOwner[ownerID], id)
	if len(s.byOwner[ownerID]) == 0 {
		delete(s.byOwner, ownerID)
	}
	return nil
}

var _ Store = (*InMemoryStore)(nil)
