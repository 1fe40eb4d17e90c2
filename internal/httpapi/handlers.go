package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kyaha-vine/DistruptFightingICE/internal/chat"
	"github.com/kyaha-vine/DistruptFightingICE/internal/core"
	"github.com/kyaha-vine/DistruptFightingICE/internal/types"
)

const replyTimeout = 2 * time.Second

// ChatCommandRequest is what the external chat collaborator posts after it
// has parsed and authenticated a raw chat line.
type ChatCommandRequest struct {
	VoterID     string   `json:"voter_id"`
	DisplayName string   `json:"display_name"`
	Command     string   `json:"command"`
	Args        []string `json:"args"`
}

type ChatCommandResponse struct {
	Reply string `json:"reply"`
}

// ChatCommand feeds a parsed chat command into the core and returns the
// text the bot should answer with.
func ChatCommand(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatCommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Command == "" {
			http.Error(w, "missing command", http.StatusBadRequest)
			return
		}

		reply := make(chan string, 1)
		c.Inbox() <- core.ChatCmd{Cmd: chat.Command{
			VoterID:     req.VoterID,
			DisplayName: req.DisplayName,
			Name:        req.Command,
			Args:        req.Args,
			Reply:       reply,
		}}

		select {
		case text := <-reply:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(ChatCommandResponse{Reply: text})
		case <-time.After(replyTimeout):
			http.Error(w, "core busy", http.StatusServiceUnavailable)
		}
	}
}

// Status serves the read-only status surface.
func Status(c *core.Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan types.Status, 1)
		c.Inbox() <- core.GetStatus{Reply: reply}

		select {
		case st := <-reply:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(st)
		case <-time.After(replyTimeout):
			http.Error(w, "core busy", http.StatusServiceUnavailable)
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
