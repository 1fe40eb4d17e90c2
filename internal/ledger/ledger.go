package ledger

import (
	"errors"

	"github.com/kyaha-vine/DistruptFightingICE/internal/catalog"
)

var ErrUnknownOption = errors.New("unknown option")

// Change is one option's tally after a ballot mutation.
type Change struct {
	OptionKey string
	Count     int
}

// Delta describes the observable effect of a single cast: the previous
// option's new count (when the voter moved their ballot) and the chosen
// option's new count. Both are broadcast so tallies stay exact everywhere.
type Delta struct {
	Previous *Change
	Current  Change
}

// Ledger holds at most one active ballot per voter for the current round.
// Tallies are maintained incrementally and are always equivalent to a
// recount over the ballots. Not goroutine safe; owned by the core loop.
type Ledger struct {
	catalog catalog.Catalog
	ballots map[string]string // voter id -> option key
	counts  map[string]int
}

func New(cat catalog.Catalog) *Ledger {
	l := &Ledger{catalog: cat}
	l.Reset()
	return l
}

// Cast records or moves voterID's ballot. A repeat cast for the voter's
// current option is a no-op and returns a nil delta. An unknown option key
// returns ErrUnknownOption without mutating anything.
func (l *Ledger) Cast(voterID, optionKey string) (*Delta, error) {
	if !l.catalog.Contains(optionKey) {
		return nil, ErrUnknownOption
	}

	prev, voted := l.ballots[voterID]
	if voted && prev == optionKey {
		return nil, nil
	}

	d := &Delta{}
	if voted {
		l.counts[prev]--
		d.Previous = &Change{OptionKey: prev, Count: l.counts[prev]}
	}
	l.ballots[voterID] = optionKey
	l.counts[optionKey]++
	d.Current = Change{OptionKey: optionKey, Count: l.counts[optionKey]}
	return d, nil
}

// Tally returns a copy of the per-option counts, one entry per catalog
// option (zero included).
func (l *Ledger) Tally() map[string]int {
	out := make(map[string]int, l.catalog.Len())
	for _, opt := range l.catalog.Options() {
		out[opt.Key] = l.counts[opt.Key]
	}
	return out
}

// VotersFor returns the voters whose current ballot is optionKey.
func (l *Ledger) VotersFor(optionKey string) []string {
	var out []string
	for voter, key := range l.ballots {
		if key == optionKey {
			out = append(out, voter)
		}
	}
	return out
}

// Winner returns the option with the strictly greatest tally. Ties break to
// the earliest option in catalog order. ok is false when no ballots exist.
func (l *Ledger) Winner() (string, bool) {
	best := ""
	bestCount := 0
	for _, opt := range l.catalog.Options() {
		if c := l.counts[opt.Key]; c > bestCount {
			best = opt.Key
			bestCount = c
		}
	}
	return best, bestCount > 0
}

func (l *Ledger) BallotCount() int { return len(l.ballots) }

// Reset clears all ballots and tallies. Called once per round start.
func (l *Ledger) Reset() {
	l.ballots = make(map[string]string)
	l.counts = make(map[string]int)
}
