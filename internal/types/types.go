package types

import "github.com/kyaha-vine/DistruptFightingICE/internal/catalog"

// Observer -> server.
type ClientMessage struct {
	Type        string `json:"type"` // "identity-bind" | "vote" | "gesture" | "resync-request" | "keepalive"
	VoterID     string `json:"voter_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	OptionKey   string `json:"option_key,omitempty"`
	Phase       string `json:"phase,omitempty"` // gesture phase: "hover" | "start" | "end"
	X           int    `json:"x,omitempty"`
	Y           int    `json:"y,omitempty"`
}

// GrantInfo is the externally visible slice of an active placement grant.
type GrantInfo struct {
	RoundID            int    `json:"round_id"`
	OptionKey          string `json:"option_key"`
	GranteeDisplayName string `json:"grantee_display_name"`
	ExpiresInSeconds   int    `json:"expires_in"`
}

type WinnerInfo struct {
	Key   string `json:"key"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
	Votes int    `json:"votes"`
}

// StateSnapshot lets a late joiner or reconnecting observer converge to
// current truth without replaying history.
type StateSnapshot struct {
	Type      string           `json:"type"` // "state-snapshot"
	Phase     string           `json:"phase"`
	RoundID   int              `json:"round_id"`
	Remaining int              `json:"remaining"` // seconds of voting left
	Options   []catalog.Option `json:"options"`
	Tally     map[string]int   `json:"tally"`
	Grant     *GrantInfo       `json:"active_grant"`
}

type VoteDelta struct {
	Type      string `json:"type"` // "vote-delta"
	OptionKey string `json:"option_key"`
	Emoji     string `json:"emoji"`
	Count     int    `json:"count"`
}

type RoundStart struct {
	Type     string           `json:"type"` // "round-start"
	RoundID  int              `json:"round_id"`
	Duration int              `json:"duration"` // seconds
	Options  []catalog.Option `json:"options"`
}

type RoundResult struct {
	Type    string         `json:"type"` // "round-result"
	RoundID int            `json:"round_id"`
	Winner  *WinnerInfo    `json:"winner"` // nil when nobody voted
	Tally   map[string]int `json:"tally"`
}

type PlacementRequest struct {
	Type               string `json:"type"` // "placement-request"
	RoundID            int    `json:"round_id"`
	OptionKey          string `json:"option_key"`
	Emoji              string `json:"emoji"`
	Label              string `json:"label"`
	GranteeDisplayName string `json:"grantee_display_name"`
	TimeoutSeconds     int    `json:"timeout"`
}

type GestureEcho struct {
	Type  string `json:"type"` // "gesture-echo"
	Phase string `json:"phase"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

type KeepaliveAck struct {
	Type string `json:"type"` // "keepalive-ack"
}

// Status is the read-only status surface served over HTTP.
type Status struct {
	OK            bool       `json:"ok"`
	ObserverCount int        `json:"observer_count"`
	RoundActive   bool       `json:"round_active"`
	RoundID       int        `json:"round_id"`
	ActiveGrant   *GrantInfo `json:"active_grant"`
}
