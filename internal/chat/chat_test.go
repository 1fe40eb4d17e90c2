package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyaha-vine/DistruptFightingICE/internal/catalog"
)

func TestParseSlot(t *testing.T) {
	cases := map[string]string{
		"left": "left", "LEFT": "left", "gauche": "left",
		"middle": "middle", "mid": "middle", "centre": "middle",
		"center": "middle", "midle": "middle",
		"right": "right", "droite": "right", " right ": "right",
	}
	for raw, want := range cases {
		got, ok := ParseSlot(raw)
		assert.True(t, ok, "slot %q", raw)
		assert.Equal(t, want, got, "slot %q", raw)
	}

	_, ok := ParseSlot("up")
	assert.False(t, ok)
	_, ok = ParseSlot("")
	assert.False(t, ok)
}

func TestVoteSummarySkipsZeroCounts(t *testing.T) {
	opts := []catalog.Option{
		{Key: "fire", Emoji: "🔥"},
		{Key: "wind", Emoji: "💨"},
		{Key: "freeze", Emoji: "🧊"},
	}
	text := VoteSummaryText(opts, map[string]int{"fire": 2, "wind": 0, "freeze": 1})
	assert.Equal(t, "📊 Votes: 🔥 2 | 🧊 1", text)
}

func TestOptionsLineKeepsCatalogOrder(t *testing.T) {
	opts := []catalog.Option{
		{Key: "fire", Emoji: "🔥"},
		{Key: "wind", Emoji: "💨"},
	}
	assert.Equal(t, "🔥 fire | 💨 wind", OptionsLine(opts))
}

func TestPlacedAtSlotText(t *testing.T) {
	opt := catalog.Option{Key: "wind", Emoji: "💨", Label: "Wind Boots"}
	assert.Equal(t, "✅ 💨 Wind Boots spawned at MIDDLE by @alice!", PlacedAtSlotText(opt, "middle", "alice"))
}
