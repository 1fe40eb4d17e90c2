package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAppendAndReadBack(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	first := PlacementEvent{
		RoundID: 3, OptionKey: "wind", VoterID: "u42", DisplayName: "viewer",
		X: 100, Y: 50, VX: 2, VY: -1, Source: "gesture", Delivered: true,
		At: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, l.AppendPlacement(ctx, first))
	require.NoError(t, l.AppendPlacement(ctx, PlacementEvent{
		RoundID: 4, OptionKey: "fire", VoterID: "u7", DisplayName: "other",
		X: 480, Y: 100, Source: "chat-slot", At: time.Now(),
	}))

	events, err := l.RecentPlacements(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	require.Equal(t, 4, events[0].RoundID)
	require.Equal(t, "chat-slot", events[0].Source)
	require.False(t, events[0].Delivered)

	got := events[1]
	require.Equal(t, first.OptionKey, got.OptionKey)
	require.Equal(t, first.VoterID, got.VoterID)
	require.Equal(t, first.VX, got.VX)
	require.Equal(t, first.VY, got.VY)
	require.True(t, got.Delivered)
	require.True(t, got.At.Equal(first.At))
}

func TestRecentLimit(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, l.AppendPlacement(ctx, PlacementEvent{
			RoundID: i, OptionKey: "freeze", VoterID: "u", DisplayName: "v",
			Source: "gesture", At: time.Now(),
		}))
	}

	events, err := l.RecentPlacements(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, 5, events[0].RoundID)
	require.Equal(t, 4, events[1].RoundID)
}
