package posts

import (
	"context"
	"time"
)

// CreateInput describes a new post. Text must already be validated.
type CreateInput struct {
	OwnerID int64
	Text    string
	Now     time.Time
}

// Store is the post persistence boundary.
//
// Contract:
//   - ListPostsByOwner orders by CreatedAt descending, then ID descending.
//   - GetPost and DeletePost return ErrNotFound when no row matches;
//     DeletePost only matches rows owned by ownerID.
type Store interface {
	CreatePost(ctx context.Context, in CreateInput) (Post, error)
	GetPost(ctx context.Context, id int64) (Post, error)
	ListPostsByOwner(ctx context.Context, ownerID int64) ([]Post, error)
	DeletePost(ctx context.Context, id, ownerID int64) error
}
