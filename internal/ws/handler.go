package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kyaha-vine/DistruptFightingICE/internal/core"
	"github.com/kyaha-vine/DistruptFightingICE/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	// Clients are expected to keepalive well inside this window.
	readTimeout = 60 * time.Second
)

// Handler upgrades an observer connection and shuttles messages between it
// and the core loop. The outbox channel is written and closed only by the
// core; when it closes (shutdown or slow-observer drop) the writer side
// closes the socket, which unwinds the reader too.
func Handler(c *core.Core, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// The overlay is hosted by the chat platform, not by us.
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		id := uuid.NewString()
		outbox := make(chan []byte, 16)
		c.Inbox() <- core.Register{ID: id, Outbox: outbox}
		defer func() { c.Inbox() <- core.Unregister{ID: id} }()

		log.Debug("observer connected", zap.String("observer", id))

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for payload := range outbox {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			// Core closed the outbox; hang up so the read loop returns.
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
		}()

		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				log.Debug("observer disconnected", zap.String("observer", id))
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				// Protocol fault: drop the message, keep the connection.
				continue
			}
			msg, ok := toCoreMsg(id, cm)
			if !ok {
				continue
			}
			select {
			case c.Inbox() <- msg:
			case <-r.Context().Done():
				return
			}
		}
	}
}

func toCoreMsg(id string, m types.ClientMessage) (core.Msg, bool) {
	switch m.Type {
	case "identity-bind":
		if m.VoterID == "" {
			return nil, false
		}
		return core.Bind{ID: id, VoterID: m.VoterID, DisplayName: m.DisplayName}, true
	case "vote":
		if m.OptionKey == "" {
			return nil, false
		}
		return core.Vote{ID: id, OptionKey: m.OptionKey}, true
	case "gesture":
		return core.Gesture{ID: id, Phase: m.Phase, X: m.X, Y: m.Y}, true
	case "resync-request":
		return core.Resync{ID: id}, true
	case "keepalive":
		return core.Keepalive{ID: id}, true
	default:
		return nil, false
	}
}
