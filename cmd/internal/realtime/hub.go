package realtime

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"postboard/cmd/internal/posts"
)

// Hub tracks open sessions per owner and fans post events out to them.
// It implements posts.Publisher.
type Hub struct {
	log *slog.Logger

	mu       sync.RWMutex
	sessions map[int64]map[string]*Client

	delivered prometheus.Counter
	dropped   prometheus.Counter
}

var _ posts.Publisher = (*Hub)(nil)

// NewHub constructs a Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:      log,
		sessions: make(map[int64]map[string]*Client),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "realtime",
			Name:      "events_delivered_total",
			Help:      "Post events queued to websocket sessions.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "realtime",
			Name:      "events_dropped_total",
			Help:      "Post events dropped because a session queue was full or closing.",
		}),
	}
}

// Register adds the hub collectors (including a live session gauge) to reg.
func (h *Hub) Register(reg prometheus.Registerer) error {
	sessions := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "postboard",
		Subsystem: "realtime",
		Name:      "sessions",
		Help:      "Open websocket sessions.",
	}, func() float64 { return float64(h.SessionCount()) })

	for _, c := range []prometheus.Collector{h.delivered, h.dropped, sessions} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Join attaches client to its owner's fanout set.
func (h *Hub) Join(client *Client) {
	if h == nil || client == nil || client.SessionID == "" {
		return
	}

	h.mu.Lock()
	set := h.sessions[client.OwnerID]
	if set == nil {
		set = make(map[string]*Client)
		h.sessions[client.OwnerID] = set
	}
	set[client.SessionID] = client
	h.mu.Unlock()

	h.log.Info("realtime.session.join", "owner_id", client.OwnerID, "session_id", client.SessionID)
}

// Leave detaches the session and then closes the client, so no publisher
// still holds it once its goroutines unwind.
func (h *Hub) Leave(client *Client) {
	if h == nil || client == nil {
		return
	}

	h.mu.Lock()
	if set := h.sessions[client.OwnerID]; set != nil {
		delete(set, client.SessionID)
		if len(set) == 0 {
			delete(h.sessions, client.OwnerID)
		}
	}
	h.mu.Unlock()

	client.Close()
	h.log.Info("realtime.session.leave", "owner_id", client.OwnerID, "session_id", client.SessionID)
}

// Publish queues env for every session of ownerID. It never blocks.
func (h *Hub) Publish(ownerID int64, env Envelope) {
	if h == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.sessions[ownerID] {
		if c.offer(env) {
			h.delivered.Inc()
		} else {
			h.dropped.Inc()
		}
	}
}

// PublishPostEvent forwards a committed post write to the owner's sessions.
func (h *Hub) PublishPostEvent(ev posts.Event) {
	h.Publish(ev.OwnerID, envelopeFromEvent(ev))
}

// SessionCount returns the number of open sessions.
func (h *Hub) SessionCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.sessions {
		n += len(set)
	}
	return n
}
