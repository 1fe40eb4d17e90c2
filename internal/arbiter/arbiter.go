package arbiter

import (
	"errors"
	"math/rand"
	"sort"
	"time"
)

var (
	ErrNoGrant     = errors.New("no active grant")
	ErrExpired     = errors.New("grant expired")
	ErrWrongVoter  = errors.New("not the chosen voter")
	ErrNotOffered  = errors.New("grant not in offered state")
	ErrGrantActive = errors.New("a grant is still active")
)

type State int

const (
	StateNone State = iota
	StateOffered
	StateConsumed
	StateExpired
)

// Grant is the single time-boxed placement authorization for a round.
type Grant struct {
	RoundID   int
	OptionKey string
	VoterID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Arbiter issues at most one live grant at a time and validates placement
// attempts against it. Not goroutine safe; owned by the core loop.
type Arbiter struct {
	state   State
	grant   Grant
	rng     *rand.Rand
	timeout time.Duration
}

func New(timeout time.Duration, rng *rand.Rand) *Arbiter {
	return &Arbiter{rng: rng, timeout: timeout}
}

func (a *Arbiter) State() State { return a.state }

// Offer picks one candidate uniformly at random and issues a grant expiring
// after the placement timeout. An empty candidate set issues nothing. An
// unexpired offered grant cannot be superseded.
func (a *Arbiter) Offer(roundID int, optionKey string, candidates []string, now time.Time) (*Grant, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	a.expireIfDue(now)
	if a.state == StateOffered {
		return nil, ErrGrantActive
	}

	// Sort first so the draw is independent of map iteration order.
	picked := append([]string(nil), candidates...)
	sort.Strings(picked)
	chosen := picked[a.rng.Intn(len(picked))]

	a.grant = Grant{
		RoundID:   roundID,
		OptionKey: optionKey,
		VoterID:   chosen,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.timeout),
	}
	a.state = StateOffered
	g := a.grant
	return &g, nil
}

// Authorize reports whether voterID may submit a placement gesture right
// now. It has no side effects beyond lazy expiry.
func (a *Arbiter) Authorize(voterID string, now time.Time) (Grant, error) {
	a.expireIfDue(now)
	switch a.state {
	case StateOffered:
	case StateExpired:
		return Grant{}, ErrExpired
	default:
		return Grant{}, ErrNoGrant
	}
	if a.grant.VoterID != voterID {
		return Grant{}, ErrWrongVoter
	}
	return a.grant, nil
}

// Consume burns the offered grant. Exactly one consume succeeds; a second
// terminal gesture in the same round is rejected.
func (a *Arbiter) Consume(now time.Time) error {
	a.expireIfDue(now)
	if a.state != StateOffered {
		return ErrNotOffered
	}
	a.state = StateConsumed
	return nil
}

// ExpireIfDue transitions OFFERED to EXPIRED once past the deadline and
// reports whether it did.
func (a *Arbiter) ExpireIfDue(now time.Time) bool {
	return a.expireIfDue(now)
}

func (a *Arbiter) expireIfDue(now time.Time) bool {
	if a.state == StateOffered && now.After(a.grant.ExpiresAt) {
		a.state = StateExpired
		return true
	}
	return false
}

// Active returns the offered, unexpired grant, if any.
func (a *Arbiter) Active(now time.Time) *Grant {
	a.expireIfDue(now)
	if a.state != StateOffered {
		return nil
	}
	g := a.grant
	return &g
}

// Reset discards whatever grant remains from the previous round; called on
// round start so a stale offer can never outlive its round.
func (a *Arbiter) Reset() {
	a.state = StateNone
	a.grant = Grant{}
}
