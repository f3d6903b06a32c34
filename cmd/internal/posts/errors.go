package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Service.
var (
	// ErrNotFound covers both a missing post and a post owned by someone else.
	ErrNotFound     = errors.New("post not found")
	ErrCreateFailed = errors.New("failed to create post")
	ErrListFailed   = errors.New("failed to list posts")
)

// ValidationError reports unacceptable input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
