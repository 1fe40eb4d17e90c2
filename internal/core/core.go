// Package core runs the round lifecycle: one goroutine owns the ledger, the
// arbiter, the observer hub and the game bridge, and every mutation happens
// to completion inside one message before the next is taken. Timers post
// messages into the same inbox, so phase changes and ballots are totally
// ordered.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kyaha-vine/DistruptFightingICE/internal/arbiter"
	"github.com/kyaha-vine/DistruptFightingICE/internal/audit"
	"github.com/kyaha-vine/DistruptFightingICE/internal/catalog"
	"github.com/kyaha-vine/DistruptFightingICE/internal/chat"
	"github.com/kyaha-vine/DistruptFightingICE/internal/hub"
	"github.com/kyaha-vine/DistruptFightingICE/internal/ledger"
	"github.com/kyaha-vine/DistruptFightingICE/internal/types"
)

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseVoting   Phase = "voting"
	PhaseCooldown Phase = "cooldown"
)

// Terminal release velocity is the gesture's total displacement scaled down
// by this divisor, integer-truncated.
const velocityDivisor = 20

// Positions for the legacy chat placement slots.
var slotPositions = map[string]struct{ X, Y int }{
	"left":   {X: 160, Y: 100},
	"middle": {X: 480, Y: 100},
	"right":  {X: 800, Y: 100},
}

const anonymousName = "Overlay Viewer"

// GestureSender is the slice of the game bridge the core drives.
type GestureSender interface {
	SendGesture(eventType, x, y, vx, vy int, terminate bool) error
}

type Config struct {
	StartupDelay     time.Duration
	RoundDuration    time.Duration
	GraceWindow      time.Duration
	Cooldown         time.Duration
	PlacementTimeout time.Duration
	ReminderOffsets  []time.Duration
}

func (c *Config) applyDefaults() {
	if c.StartupDelay == 0 {
		c.StartupDelay = 3 * time.Second
	}
	if c.RoundDuration == 0 {
		c.RoundDuration = 30 * time.Second
	}
	if c.GraceWindow == 0 {
		c.GraceWindow = 500 * time.Millisecond
	}
	if c.Cooldown == 0 {
		c.Cooldown = 15 * time.Second
	}
	if c.PlacementTimeout == 0 {
		c.PlacementTimeout = 15 * time.Second
	}
	if c.ReminderOffsets == nil {
		c.ReminderOffsets = []time.Duration{20 * time.Second, 10 * time.Second, 5 * time.Second}
	}
}

type Core struct {
	inbox     chan Msg
	cfg       Config
	cat       catalog.Catalog
	ledger    *ledger.Ledger
	arb       *arbiter.Arbiter
	hub       *hub.Hub
	bridge    GestureSender
	audit     *audit.Log
	announcer chat.Announcer
	log       *zap.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	phase   Phase
	roundID int
	endsAt  time.Time
	inGrace bool
	gen     uint64
	timers  []*time.Timer

	// Most-recently-seen display name per voter; survives round resets.
	names map[string]string

	// Placement gesture start, captured on the grantee's "start" phase.
	startX, startY int
}

func New(parent context.Context, cfg Config, cat catalog.Catalog, br GestureSender,
	auditLog *audit.Log, ann chat.Announcer, rng *rand.Rand, log *zap.Logger) *Core {

	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(parent)
	c := &Core{
		inbox:     make(chan Msg, 256),
		cfg:       cfg,
		cat:       cat,
		ledger:    ledger.New(cat),
		arb:       arbiter.New(cfg.PlacementTimeout, rng),
		hub:       hub.New(log),
		bridge:    br,
		audit:     auditLog,
		announcer: ann,
		log:       log,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		phase:     PhaseWaiting,
		names:     make(map[string]string),
	}
	c.schedule(cfg.StartupDelay, warmupDone{gen: c.gen})
	go c.loop()
	return c
}

func (c *Core) Inbox() chan<- Msg { return c.inbox }

func (c *Core) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Register:
				c.hub.Register(msg.ID, msg.Outbox)
				c.hub.Send(msg.ID, c.snapshotPayload())

			case Unregister:
				c.hub.Unregister(msg.ID)

			case Bind:
				if c.hub.Bind(msg.ID, msg.VoterID) {
					c.rememberName(msg.VoterID, msg.DisplayName)
					c.hub.Send(msg.ID, c.snapshotPayload())
				}

			case Vote:
				o, ok := c.hub.Get(msg.ID)
				if !ok || o.VoterID() == "" {
					break // anonymous votes are ignored
				}
				c.castBallot(o.VoterID(), "", msg.OptionKey)

			case Gesture:
				c.handleGesture(msg)

			case Resync:
				c.hub.Send(msg.ID, c.snapshotPayload())

			case Keepalive:
				c.hub.Send(msg.ID, marshal(types.KeepaliveAck{Type: "keepalive-ack"}))

			case ChatCmd:
				c.handleChat(msg.Cmd)

			case GetStatus:
				msg.Reply <- types.Status{
					OK:            true,
					ObserverCount: c.hub.Count(),
					RoundActive:   c.phase == PhaseVoting,
					RoundID:       c.roundID,
					ActiveGrant:   c.grantInfo(),
				}

			case GetView:
				msg.Reply <- View{
					Phase:       c.phase,
					RoundID:     c.roundID,
					Tally:       c.ledger.Tally(),
					BallotCount: c.ledger.BallotCount(),
					Observers:   c.hub.Count(),
					GrantState:  c.arb.State(),
					GrantVoter:  c.grantVoter(),
				}

			case Shutdown:
				c.shutdown()
				return

			case warmupDone:
				if msg.gen == c.gen {
					c.startVoting()
				}

			case reminder:
				if msg.gen == c.gen && c.phase == PhaseVoting && !c.inGrace {
					c.announce(chat.ReminderText(msg.remaining))
				}

			case votingDeadline:
				if msg.gen == c.gen && c.phase == PhaseVoting {
					// Short grace so last-moment ballots racing the clock
					// still land before the tally freezes.
					c.inGrace = true
					c.schedule(c.cfg.GraceWindow, graceOver{gen: c.gen})
				}

			case graceOver:
				if msg.gen == c.gen && c.phase == PhaseVoting {
					c.closeRound()
				}

			case cooldownOver:
				if msg.gen == c.gen && c.phase == PhaseCooldown {
					c.startVoting()
				}

			case grantDeadline:
				if msg.gen == c.gen && c.arb.ExpireIfDue(c.now()) {
					c.log.Info("placement window expired", zap.Int("round", c.roundID))
				}
			}
		}
	}
}

// startVoting opens the next round: fresh ledger, any leftover grant
// superseded, timers re-armed under a new generation.
func (c *Core) startVoting() {
	c.gen++
	c.stopTimers()
	c.roundID++
	c.ledger.Reset()
	c.arb.Reset()
	c.startX, c.startY = 0, 0
	c.phase = PhaseVoting
	c.inGrace = false

	now := c.now()
	c.endsAt = now.Add(c.cfg.RoundDuration)
	durationSec := int(c.cfg.RoundDuration / time.Second)

	c.log.Info("round started", zap.Int("round", c.roundID), zap.Int("duration_sec", durationSec))
	c.broadcast(types.RoundStart{
		Type:     "round-start",
		RoundID:  c.roundID,
		Duration: durationSec,
		Options:  c.cat.Options(),
	})
	c.announce(chat.RoundStartText(c.roundID, durationSec, c.cat.Options()))

	for _, off := range c.cfg.ReminderOffsets {
		if off > 0 && off < c.cfg.RoundDuration {
			c.schedule(c.cfg.RoundDuration-off, reminder{gen: c.gen, remaining: int(off / time.Second)})
		}
	}
	c.schedule(c.cfg.RoundDuration, votingDeadline{gen: c.gen})
}

// closeRound freezes the tally, picks the winner and, if anyone voted for
// it, offers the placement grant. The grant's clock is independent of the
// cooldown that starts here.
func (c *Core) closeRound() {
	c.phase = PhaseCooldown
	c.inGrace = false
	now := c.now()

	tally := c.ledger.Tally()
	winnerKey, hasWinner := c.ledger.Winner()

	var winner *types.WinnerInfo
	if hasWinner {
		opt, _ := c.cat.Lookup(winnerKey)
		winner = &types.WinnerInfo{Key: opt.Key, Emoji: opt.Emoji, Label: opt.Label, Votes: tally[winnerKey]}
	}
	c.broadcast(types.RoundResult{Type: "round-result", RoundID: c.roundID, Winner: winner, Tally: tally})

	cooldownSec := int(c.cfg.Cooldown / time.Second)
	if !hasWinner {
		c.log.Info("round closed with no votes", zap.Int("round", c.roundID))
		c.announce(chat.NoVotesText(c.roundID, cooldownSec))
		c.schedule(c.cfg.Cooldown, cooldownOver{gen: c.gen})
		return
	}

	c.announce(chat.VoteSummaryText(c.cat.Options(), tally))

	voters := c.ledger.VotersFor(winnerKey)
	grant, err := c.arb.Offer(c.roundID, winnerKey, voters, now)
	if err != nil {
		c.log.Warn("grant offer refused", zap.Error(err))
	} else if grant != nil {
		opt, _ := c.cat.Lookup(winnerKey)
		name := c.displayName(grant.VoterID)
		timeoutSec := int(c.cfg.PlacementTimeout / time.Second)
		c.log.Info("placement granted",
			zap.Int("round", c.roundID),
			zap.String("option", winnerKey),
			zap.String("voter", grant.VoterID))
		c.announce(chat.WinnerText(opt, name, timeoutSec))
		c.broadcast(types.PlacementRequest{
			Type:               "placement-request",
			RoundID:            c.roundID,
			OptionKey:          opt.Key,
			Emoji:              opt.Emoji,
			Label:              opt.Label,
			GranteeDisplayName: name,
			TimeoutSeconds:     timeoutSec,
		})
		c.schedule(grant.ExpiresAt.Sub(now), grantDeadline{gen: c.gen})
	}

	c.schedule(c.cfg.Cooldown, cooldownOver{gen: c.gen})
}

// castBallot applies a vote from either channel and broadcasts the deltas.
// The returned text is the chat reply; observer votes discard it.
func (c *Core) castBallot(voterID, displayName, optionKey string) string {
	c.rememberName(voterID, displayName)

	if c.phase != PhaseVoting {
		return "No vote running right now. Wait for the next round!"
	}

	delta, err := c.ledger.Cast(voterID, optionKey)
	if errors.Is(err, ledger.ErrUnknownOption) {
		return "Unknown item. Try: " + strings.Join(c.optionKeys(), ", ") + "."
	}
	if delta == nil {
		// Repeat cast for the same option: nothing changed, nothing sent.
		opt, _ := c.cat.Lookup(optionKey)
		return "You are already voting for " + opt.Emoji + " " + opt.Key + "."
	}

	if delta.Previous != nil {
		c.broadcastDelta(*delta.Previous)
	}
	c.broadcastDelta(delta.Current)

	opt, _ := c.cat.Lookup(optionKey)
	return "Vote registered: " + opt.Emoji + " " + opt.Key + "!"
}

func (c *Core) broadcastDelta(ch ledger.Change) {
	opt, _ := c.cat.Lookup(ch.OptionKey)
	c.broadcast(types.VoteDelta{
		Type:      "vote-delta",
		OptionKey: ch.OptionKey,
		Emoji:     opt.Emoji,
		Count:     ch.Count,
	})
}

func (c *Core) handleGesture(msg Gesture) {
	switch msg.Phase {
	case "hover", "start", "end":
	default:
		return // protocol fault: ignore, keep the connection
	}

	// Everyone sees the cursor; only the grantee reaches the game.
	c.broadcast(types.GestureEcho{Type: "gesture-echo", Phase: msg.Phase, X: msg.X, Y: msg.Y})

	o, ok := c.hub.Get(msg.ID)
	if !ok || o.VoterID() == "" {
		return
	}
	grant, err := c.arb.Authorize(o.VoterID(), c.now())
	if err != nil {
		c.log.Debug("gesture rejected", zap.String("voter", o.VoterID()), zap.Error(err))
		return
	}

	switch msg.Phase {
	case "hover":
		if err := c.bridge.SendGesture(0, msg.X, msg.Y, 0, 0, false); err != nil {
			c.log.Debug("hover not delivered", zap.Error(err))
		}
	case "start":
		c.startX, c.startY = msg.X, msg.Y
	case "end":
		vx := (msg.X - c.startX) / velocityDivisor
		vy := (msg.Y - c.startY) / velocityDivisor
		c.finishPlacement(grant, c.startX, c.startY, vx, vy, "gesture", "")
	}
}

// finishPlacement consumes the grant and relays the terminal event. The
// grant is burned even when the game is unreachable; downstream delivery is
// best effort only.
func (c *Core) finishPlacement(grant arbiter.Grant, x, y, vx, vy int, source, slot string) {
	if err := c.arb.Consume(c.now()); err != nil {
		c.log.Warn("consume failed", zap.Error(err))
		return
	}

	code := catalog.TypeCode(grant.OptionKey)
	delivered := true
	if err := c.bridge.SendGesture(code, x, y, vx, vy, true); err != nil {
		delivered = false
		c.log.Warn("terminal gesture not delivered", zap.Error(err))
	}

	opt, _ := c.cat.Lookup(grant.OptionKey)
	name := c.displayName(grant.VoterID)
	if slot != "" {
		c.announce(chat.PlacedAtSlotText(opt, slot, name))
	} else {
		c.announce(chat.PlacedText(opt, name))
	}
	c.log.Info("placement consumed",
		zap.Int("round", grant.RoundID),
		zap.String("option", grant.OptionKey),
		zap.String("voter", grant.VoterID),
		zap.Bool("delivered", delivered))

	if c.audit != nil {
		ctx, cancel := context.WithTimeout(c.ctx, 2*time.Second)
		err := c.audit.AppendPlacement(ctx, audit.PlacementEvent{
			RoundID:     grant.RoundID,
			OptionKey:   grant.OptionKey,
			VoterID:     grant.VoterID,
			DisplayName: name,
			X:           x,
			Y:           y,
			VX:          vx,
			VY:          vy,
			Source:      source,
			Delivered:   delivered,
			At:          c.now(),
		})
		cancel()
		if err != nil {
			c.log.Warn("audit append failed", zap.Error(err))
		}
	}
}

func (c *Core) handleChat(cmd chat.Command) {
	reply := func(text string) {
		if cmd.Reply == nil {
			return
		}
		select {
		case cmd.Reply <- text:
		default:
		}
	}
	c.rememberName(cmd.VoterID, cmd.DisplayName)

	switch cmd.Name {
	case chat.CmdListOptions:
		reply("Available items: " + chat.OptionsLine(c.cat.Options()) + " | Vote with: !item <name>")

	case chat.CmdCastVote:
		if cmd.VoterID == "" || len(cmd.Args) < 1 {
			reply("Usage: !item <" + strings.Join(c.optionKeys(), "|") + ">")
			return
		}
		reply(c.castBallot(cmd.VoterID, cmd.DisplayName, strings.ToLower(cmd.Args[0])))

	case chat.CmdLegacyPlace:
		if cmd.VoterID == "" || len(cmd.Args) < 1 {
			reply("Usage: !place <left|middle|right>")
			return
		}
		slot, ok := chat.ParseSlot(cmd.Args[0])
		if !ok {
			reply("Invalid slot. Use: left, middle, or right.")
			return
		}
		grant, err := c.arb.Authorize(cmd.VoterID, c.now())
		if err != nil {
			reply(placeRejection(err, c.grantVoterName()))
			return
		}
		pos := slotPositions[slot]
		c.finishPlacement(grant, pos.X, pos.Y, 0, 0, "chat-slot", slot)
		opt, _ := c.cat.Lookup(grant.OptionKey)
		reply(chat.PlacedAtSlotText(opt, slot, c.displayName(grant.VoterID)))

	default:
		reply("Unknown command.")
	}
}

func placeRejection(err error, granteeName string) string {
	switch {
	case errors.Is(err, arbiter.ErrWrongVoter):
		return "Only " + granteeName + " can place the item this round!"
	case errors.Is(err, arbiter.ErrExpired):
		return "Too slow! The placement window has closed."
	default:
		return "There is no item waiting for placement right now."
	}
}

func (c *Core) snapshotPayload() []byte {
	now := c.now()
	remaining := 0
	if c.phase == PhaseVoting {
		if left := c.endsAt.Sub(now); left > 0 {
			remaining = int((left + time.Second - 1) / time.Second)
		}
	}
	return marshal(types.StateSnapshot{
		Type:      "state-snapshot",
		Phase:     string(c.phase),
		RoundID:   c.roundID,
		Remaining: remaining,
		Options:   c.cat.Options(),
		Tally:     c.ledger.Tally(),
		Grant:     c.grantInfo(),
	})
}

func (c *Core) grantInfo() *types.GrantInfo {
	g := c.arb.Active(c.now())
	if g == nil {
		return nil
	}
	return &types.GrantInfo{
		RoundID:            g.RoundID,
		OptionKey:          g.OptionKey,
		GranteeDisplayName: c.displayName(g.VoterID),
		ExpiresInSeconds:   int(g.ExpiresAt.Sub(c.now()) / time.Second),
	}
}

func (c *Core) grantVoter() string {
	if g := c.arb.Active(c.now()); g != nil {
		return g.VoterID
	}
	return ""
}

func (c *Core) grantVoterName() string {
	if v := c.grantVoter(); v != "" {
		return c.displayName(v)
	}
	return anonymousName
}

func (c *Core) rememberName(voterID, displayName string) {
	if voterID != "" && displayName != "" {
		c.names[voterID] = displayName
	}
}

func (c *Core) displayName(voterID string) string {
	if name, ok := c.names[voterID]; ok {
		return name
	}
	return anonymousName
}

func (c *Core) optionKeys() []string {
	keys := make([]string, 0, c.cat.Len())
	for _, o := range c.cat.Options() {
		keys = append(keys, o.Key)
	}
	return keys
}

func (c *Core) broadcast(v any) {
	c.hub.Broadcast(marshal(v))
}

// announce must never stall the round loop; the announcer is trusted not to
// block, and errors on its side stay on its side.
func (c *Core) announce(text string) {
	c.announcer.Announce(text)
}

func marshal(v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		// Only reachable with a broken message type.
		return []byte(`{"type":"error"}`)
	}
	return payload
}

func (c *Core) schedule(d time.Duration, m Msg) {
	if d < 0 {
		d = 0
	}
	t := time.AfterFunc(d, func() {
		select {
		case c.inbox <- m:
		case <-c.ctx.Done():
		}
	})
	c.timers = append(c.timers, t)
}

func (c *Core) stopTimers() {
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = c.timers[:0]
}

func (c *Core) shutdown() {
	c.stopTimers()
	c.hub.Shutdown()
	c.cancel()
}
