package realtime

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// NewSessionID returns a ULID naming one websocket session.
func NewSessionID(now time.Time) string { return newULID(now) }

// NewEnvelopeID returns a ULID for an outbound envelope.
func NewEnvelopeID(now time.Time) string { return newULID(now) }
