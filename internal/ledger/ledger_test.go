package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kyaha-vine/DistruptFightingICE/internal/catalog"
)

func testCatalog() catalog.Catalog {
	return catalog.New([]catalog.Option{
		{Key: "fire", Emoji: "🔥", Label: "Power Core"},
		{Key: "wind", Emoji: "💨", Label: "Wind Boots"},
		{Key: "freeze", Emoji: "🧊", Label: "Freeze Orb"},
	})
}

func TestCastFirstBallot(t *testing.T) {
	l := New(testCatalog())

	d, err := l.Cast("alice", "fire")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Nil(t, d.Previous)
	require.Equal(t, Change{OptionKey: "fire", Count: 1}, d.Current)
	require.Equal(t, 1, l.Tally()["fire"])
}

func TestRepeatCastIsNoOp(t *testing.T) {
	l := New(testCatalog())

	_, err := l.Cast("alice", "fire")
	require.NoError(t, err)

	d, err := l.Cast("alice", "fire")
	require.NoError(t, err)
	require.Nil(t, d, "repeat cast must not produce a delta")
	require.Equal(t, 1, l.Tally()["fire"])
	require.Equal(t, 1, l.BallotCount())
}

func TestRevoteMovesBothCounts(t *testing.T) {
	l := New(testCatalog())

	_, err := l.Cast("alice", "fire")
	require.NoError(t, err)

	d, err := l.Cast("alice", "wind")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Equal(t, &Change{OptionKey: "fire", Count: 0}, d.Previous)
	require.Equal(t, Change{OptionKey: "wind", Count: 1}, d.Current)

	tally := l.Tally()
	require.Equal(t, 0, tally["fire"])
	require.Equal(t, 1, tally["wind"])
	require.Equal(t, 1, l.BallotCount(), "revote must not add a second ballot")
}

func TestUnknownOptionDoesNotMutate(t *testing.T) {
	l := New(testCatalog())

	_, err := l.Cast("alice", "fire")
	require.NoError(t, err)

	d, err := l.Cast("alice", "lava")
	require.ErrorIs(t, err, ErrUnknownOption)
	require.Nil(t, d)
	require.Equal(t, 1, l.Tally()["fire"], "failed cast must leave the prior ballot alone")
}

// Tally must always equal a recount of the ballots, whatever the sequence.
func TestTallyMatchesBallots(t *testing.T) {
	l := New(testCatalog())

	casts := []struct{ voter, key string }{
		{"a", "fire"}, {"b", "wind"}, {"c", "fire"},
		{"a", "wind"}, {"b", "wind"}, {"c", "freeze"}, {"a", "fire"},
	}
	for _, c := range casts {
		_, err := l.Cast(c.voter, c.key)
		require.NoError(t, err)
	}

	recount := map[string]int{}
	for _, key := range []string{"fire", "wind", "freeze"} {
		recount[key] = len(l.VotersFor(key))
	}
	require.Equal(t, recount, l.Tally())
	require.Equal(t, 3, l.BallotCount())
}

func TestVotersFor(t *testing.T) {
	l := New(testCatalog())
	_, _ = l.Cast("a", "wind")
	_, _ = l.Cast("b", "wind")
	_, _ = l.Cast("c", "fire")

	voters := l.VotersFor("wind")
	require.ElementsMatch(t, []string{"a", "b"}, voters)
	require.Empty(t, l.VotersFor("freeze"))
}

func TestWinnerTieBreaksByCatalogOrder(t *testing.T) {
	l := New(testCatalog())
	_, _ = l.Cast("a", "wind")
	_, _ = l.Cast("b", "fire")
	_, _ = l.Cast("c", "wind")
	_, _ = l.Cast("d", "fire")

	// fire=2, wind=2: fire is declared first, fire wins.
	winner, ok := l.Winner()
	require.True(t, ok)
	require.Equal(t, "fire", winner)
}

func TestWinnerNoneWithoutBallots(t *testing.T) {
	l := New(testCatalog())
	_, ok := l.Winner()
	require.False(t, ok)
}

func TestResetClearsEverything(t *testing.T) {
	l := New(testCatalog())
	_, _ = l.Cast("a", "fire")
	_, _ = l.Cast("b", "wind")

	l.Reset()
	require.Equal(t, 0, l.BallotCount())
	require.Equal(t, map[string]int{"fire": 0, "wind": 0, "freeze": 0}, l.Tally())

	// A cleared voter may cast fresh without being treated as a revote.
	d, err := l.Cast("a", "wind")
	require.NoError(t, err)
	require.Nil(t, d.Previous)
}
