package hub

import (
	"go.uber.org/zap"
)

// Observer is one connected listener: an outbox of pre-marshaled frames plus
// an optional voter identity, bound once for the connection's lifetime.
type Observer struct {
	ID      string
	outbox  chan []byte
	voterID string
}

// VoterID returns the bound identity, empty until an identity-bind arrives.
func (o *Observer) VoterID() string { return o.voterID }

// Hub fans broadcast frames out to every registered observer. Delivery is
// best effort: an observer whose outbox is full is dropped on the spot, no
// retry, no backpressure. The hub is not goroutine safe; the core loop is
// its only caller.
type Hub struct {
	observers map[string]*Observer
	log       *zap.Logger
}

func New(log *zap.Logger) *Hub {
	return &Hub{
		observers: make(map[string]*Observer),
		log:       log,
	}
}

func (h *Hub) Register(id string, outbox chan []byte) *Observer {
	o := &Observer{ID: id, outbox: outbox}
	h.observers[id] = o
	return o
}

func (h *Hub) Unregister(id string) {
	o, ok := h.observers[id]
	if !ok {
		return
	}
	delete(h.observers, id)
	close(o.outbox)
}

// Bind attaches a voter identity to an observer. The first bind wins; later
// binds for the same connection are ignored.
func (h *Hub) Bind(id, voterID string) bool {
	o, ok := h.observers[id]
	if !ok || o.voterID != "" || voterID == "" {
		return false
	}
	o.voterID = voterID
	return true
}

func (h *Hub) Get(id string) (*Observer, bool) {
	o, ok := h.observers[id]
	return o, ok
}

func (h *Hub) Count() int { return len(h.observers) }

// Broadcast sends payload to every observer, dropping any whose outbox is
// full; their connection handler sees the closed channel and hangs up.
func (h *Hub) Broadcast(payload []byte) {
	for id, o := range h.observers {
		select {
		case o.outbox <- payload:
		default:
			delete(h.observers, id)
			close(o.outbox)
			h.log.Debug("dropped slow observer", zap.String("observer", id))
		}
	}
}

// Send delivers payload to a single observer, with the same drop policy.
func (h *Hub) Send(id string, payload []byte) {
	o, ok := h.observers[id]
	if !ok {
		return
	}
	select {
	case o.outbox <- payload:
	default:
		delete(h.observers, id)
		close(o.outbox)
		h.log.Debug("dropped slow observer", zap.String("observer", id))
	}
}

// Shutdown closes every outbox so connection handlers unwind.
func (h *Hub) Shutdown() {
	for id, o := range h.observers {
		delete(h.observers, id)
		close(o.outbox)
	}
}
