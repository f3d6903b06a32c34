package posts

import "time"

// Event types published after successful writes.
const (
	EventPostCreated = "post.created"
	EventPostDeleted = "post.deleted"
)

// Event describes a committed write to an owner's posts.
type Event struct {
	Type    string
	OwnerID int64
	PostID  int64
	At      time.Time
}

// Publisher receives post events. Implementations must not block.
type Publisher interface {
	PublishPostEvent(ev Event)
}

type nopPublisher struct{}

func (nopPublisher) PublishPostEvent(Event) {}
