// Package chat is the seam between the external chat platform and the core.
// The platform side (auth, raw command parsing) lives outside this process;
// what arrives here is already a (voter, command, args) triple.
package chat

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kyaha-vine/DistruptFightingICE/internal/catalog"
)

// Command names accepted from the chat surface.
const (
	CmdListOptions = "list-options"
	CmdCastVote    = "cast-vote"
	CmdLegacyPlace = "legacy-place"
)

// Command is one parsed chat command. Reply receives the text the bot should
// answer with; it is buffered so the core never blocks on it.
type Command struct {
	VoterID     string
	DisplayName string
	Name        string
	Args        []string
	Reply       chan string
}

// Announcer carries proactive round announcements back to the chat channel.
type Announcer interface {
	Announce(text string)
}

// LogAnnouncer just logs announcements. It stands in when no chat transport
// is wired up, which keeps the round loop oblivious to the difference.
type LogAnnouncer struct {
	Log *zap.Logger
}

func (a LogAnnouncer) Announce(text string) {
	a.Log.Info("announce", zap.String("text", text))
}

// ParseSlot normalizes the legacy placement slot argument, tolerating the
// variants the old chat surface accepted.
func ParseSlot(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "left", "gauche":
		return "left", true
	case "middle", "mid", "centre", "center", "midle":
		return "middle", true
	case "right", "droite":
		return "right", true
	default:
		return "", false
	}
}

func OptionsLine(opts []catalog.Option) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		parts = append(parts, fmt.Sprintf("%s %s", o.Emoji, o.Key))
	}
	return strings.Join(parts, " | ")
}

func RoundStartText(roundID, durationSec int, opts []catalog.Option) string {
	return fmt.Sprintf("🎮 Round %d starts! Vote with: !item <name> | %ds | %s",
		roundID, durationSec, OptionsLine(opts))
}

func ReminderText(remainingSec int) string {
	return fmt.Sprintf("⏰ %d seconds left to vote!", remainingSec)
}

func NoVotesText(roundID, cooldownSec int) string {
	return fmt.Sprintf("❌ Round %d ended with no votes. Next round in %ds...", roundID, cooldownSec)
}

// VoteSummaryText lists non-zero tallies in catalog order.
func VoteSummaryText(opts []catalog.Option, tally map[string]int) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		if tally[o.Key] > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", o.Emoji, tally[o.Key]))
		}
	}
	return "📊 Votes: " + strings.Join(parts, " | ")
}

func WinnerText(opt catalog.Option, granteeName string, timeoutSec int) string {
	return fmt.Sprintf("🏆 %s %s wins! @%s - place it now! (%ds)",
		opt.Emoji, opt.Label, granteeName, timeoutSec)
}

func PlacedText(opt catalog.Option, granteeName string) string {
	return fmt.Sprintf("✅ %s %s placed by @%s!", opt.Emoji, opt.Label, granteeName)
}

func PlacedAtSlotText(opt catalog.Option, slot, granteeName string) string {
	return fmt.Sprintf("✅ %s %s spawned at %s by @%s!",
		opt.Emoji, opt.Label, strings.ToUpper(slot), granteeName)
}
