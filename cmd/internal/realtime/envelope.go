package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"postboard/cmd/internal/posts"
)

// Version is embedded in every envelope.
const Version = "v1"

// Envelope types.
const (
	TypePostCreated = posts.EventPostCreated
	TypePostDeleted = posts.EventPostDeleted
	TypePing        = "ping"
	TypePong        = "pong"
	TypeError       = "error"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	V      string    `json:"v"`
	Type   string    `json:"type"`
	ID     string    `json:"id,omitempty"`
	PostID int64     `json:"postID,omitempty"`
	TS     time.Time `json:"ts,omitzero"`

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Validate checks an inbound envelope.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.V) == "" {
		return errors.New("missing field: v")
	}
	if e.V != Version {
		return fmt.Errorf("unsupported protocol version: %q", e.V)
	}
	if strings.TrimSpace(e.Type) == "" {
		return errors.New("missing field: type")
	}
	return nil
}

func newEnvelope(typ string, ts time.Time) Envelope {
	return Envelope{V: Version, Type: typ, ID: NewEnvelopeID(ts), TS: ts}
}

func envelopeFromEvent(ev posts.Event) Envelope {
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	env := newEnvelope(ev.Type, at)
	env.PostID = ev.PostID
	return env
}

func errorEnvelope(code, msg string) Envelope {
	env := newEnvelope(TypeError, time.Now().UTC())
	env.Code = code
	env.Message = msg
	return env
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
