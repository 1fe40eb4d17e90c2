package core

import (
	"github.com/kyaha-vine/DistruptFightingICE/internal/arbiter"
	"github.com/kyaha-vine/DistruptFightingICE/internal/chat"
	"github.com/kyaha-vine/DistruptFightingICE/internal/types"
)

type Msg interface{ isCoreMsg() }

// Register adds an observer connection. The outbox receives pre-marshaled
// JSON frames; a snapshot is delivered immediately on registration.
type Register struct {
	ID     string
	Outbox chan []byte
}

type Unregister struct{ ID string }

// Bind attaches a voter identity to a connection, first bind wins.
type Bind struct {
	ID          string
	VoterID     string
	DisplayName string
}

// Vote is a ballot cast over the observer channel. Unbound connections are
// ignored.
type Vote struct {
	ID        string
	OptionKey string
}

// Gesture is a positional input from an observer: hover, start or end.
type Gesture struct {
	ID    string
	Phase string
	X, Y  int
}

type Resync struct{ ID string }

type Keepalive struct{ ID string }

// ChatCmd wraps a parsed chat-channel command.
type ChatCmd struct{ Cmd chat.Command }

type GetStatus struct{ Reply chan types.Status }

// GetView reflects internal state without data races; test only.
type GetView struct{ Reply chan View }

type View struct {
	Phase       Phase
	RoundID     int
	Tally       map[string]int
	BallotCount int
	Observers   int
	GrantState  arbiter.State
	GrantVoter  string
}

type Shutdown struct{}

// Timer messages. Every scheduled fire carries the generation it was armed
// under; a fire from a previous round is stale and dropped.
type warmupDone struct{ gen uint64 }
type votingDeadline struct{ gen uint64 }
type graceOver struct{ gen uint64 }
type cooldownOver struct{ gen uint64 }
type grantDeadline struct{ gen uint64 }
type reminder struct {
	gen       uint64
	remaining int // seconds
}

func (Register) isCoreMsg()       {}
func (Unregister) isCoreMsg()     {}
func (Bind) isCoreMsg()           {}
func (Vote) isCoreMsg()           {}
func (Gesture) isCoreMsg()        {}
func (Resync) isCoreMsg()         {}
func (Keepalive) isCoreMsg()      {}
func (ChatCmd) isCoreMsg()        {}
func (GetStatus) isCoreMsg()      {}
func (GetView) isCoreMsg()        {}
func (Shutdown) isCoreMsg()       {}
func (warmupDone) isCoreMsg()     {}
func (votingDeadline) isCoreMsg() {}
func (graceOver) isCoreMsg()      {}
func (cooldownOver) isCoreMsg()   {}
func (grantDeadline) isCoreMsg()  {}
func (reminder) isCoreMsg()       {}
