package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Listing is the result of Service.List.
type Listing struct {
	Posts  []Post
	Total  int
	Cached bool
}

// Service orchestrates post writes and reads against a Store and a Cache.
type Service struct {
	store   Store
	cache   *Cache
	pub     Publisher
	log     *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the event sink for committed writes.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a Service. store and cache are required.
func NewService(store Store, cache *Cache, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("posts: nil store")
	}
	if cache == nil {
		return nil, errors.New("posts: nil cache")
	}
	s := &Service{
		store: store,
		cache: cache,
		pub:   nopPublisher{},
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Create validates text, persists it for ownerID, and invalidates the owner's cache.
func (s *Service) Create(ctx context.Context, ownerID int64, text string) (Post, error) {
	clean, err := ValidateText(text)
	if err != nil {
		return Post{}, err
	}

	p, err := s.store.CreatePost(ctx, CreateInput{
		OwnerID: ownerID,
		Text:    clean,
		Now:     s.now().UTC(),
	})
	if err != nil {
		s.metrics.write("create", "error")
		s.log.ErrorContext(ctx, "posts.create.fail", "owner_id", ownerID, "err", err)
		return Post{}, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	s.invalidate(ownerID)
	s.metrics.write("create", "ok")
	s.pub.PublishPostEvent(Event{Type: EventPostCreated, OwnerID: ownerID, PostID: p.ID, At: p.CreatedAt})

	s.log.InfoContext(ctx, "posts.create.ok", "owner_id", ownerID, "post_id", p.ID)
	return p, nil
}

// List returns the owner's posts, newest first, from cache when fresh.
func (s *Service) List(ctx context.Context, ownerID int64) (Listing, error) {
	if cached, ok := s.cache.Get(ownerID); ok {
		s.metrics.cacheResult(true)
		return Listing{Posts: cached, Total: len(cached), Cached: true}, nil
	}
	s.metrics.cacheResult(false)

	ticket := s.cache.Begin(ownerID)
	ps, err := s.store.ListPostsByOwner(ctx, ownerID)
	if err != nil {
		s.log.ErrorContext(ctx, "posts.list.fail", "owner_id", ownerID, "err", err)
		return Listing{}, fmt.Errorf("%w: %w", ErrListFailed, err)
	}
	ps = clonePosts(ps)

	if !s.cache.Fill(ticket, ps) {
		s.log.DebugContext(ctx, "posts.cache.fill.skipped", "owner_id", ownerID)
	}
	return Listing{Posts: ps, Total: len(ps), Cached: false}, nil
}

// Delete removes postID if requesterID owns it. A missing post, a post owned
// by someone else and a failed delete are all reported as ErrNotFound.
func (s *Service) Delete(ctx context.Context, postID, requesterID int64) (int64, error) {
	p, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.ErrorContext(ctx, "posts.delete.lookup.fail", "post_id", postID, "err", err)
		}
		s.metrics.write("delete", "not_found")
		return 0, ErrNotFound
	}
	if p.OwnerID != requesterID {
		s.log.InfoContext(ctx, "posts.delete.not_owner", "post_id", postID, "requester_id", requesterID)
		s.metrics.write("delete", "not_found")
		return 0, ErrNotFound
	}

	if err := s.store.DeletePost(ctx, postID, requesterID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.ErrorContext(ctx, "posts.delete.fail", "post_id", postID, "err", err)
		}
		s.metrics.write("delete", "not_found")
		return 0, ErrNotFound
	}

	s.invalidate(requesterID)
	s.metrics.write("delete", "ok")
	s.pub.PublishPostEvent(Event{Type: EventPostDeleted, OwnerID: requesterID, PostID: postID, At: s.now().UTC()})

	s.log.InfoContext(ctx, "posts.delete.ok", "owner_id", requesterID, "post_id", postID)
	return postID, nil
}

func (s *Service) invalidate(ownerID int64) {
	s.cache.Invalidate(ownerID)
	s.metrics.invalidated()
}
