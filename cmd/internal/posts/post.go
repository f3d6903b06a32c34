package posts

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Text limits.
const (
	MaxTextRunes = 10_000
	MaxTextBytes = 1 << 20
)

// Post is a text entry owned by exactly one account. Text is immutable.
type Post struct {
	ID        int64
	OwnerID   int64
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateText checks length limits on the raw text and returns it trimmed.
func ValidateText(text string) (string, error) {
	n := utf8.RuneCountInString(text)
	switch {
	case n < 1:
		return "", ValidationError{Field: "text", Msg: "text must not be empty"}
	case n > MaxTextRunes:
		return "", ValidationError{Field: "text", Msg: "text must be at most 10000 characters"}
	case len(text) > MaxTextBytes:
		return "", ValidationError{Field: "text", Msg: "text exceeds maximum size"}
	case !utf8.ValidString(text):
		return "", ValidationError{Field: "text", Msg: "text must be valid UTF-8"}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ValidationError{Field: "text", Msg: "text must not be blank"}
	}
	return trimmed, nil
}

func clonePosts(in []Post) []Post {
	if in == nil {
		return []Post{}
	}
	out := make([]Post, len(in))
	copy(out, in)
	return out
}
