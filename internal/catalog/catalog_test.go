package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOrderIsStable(t *testing.T) {
	opts := Default().Options()

	keys := make([]string, 0, len(opts))
	for _, o := range opts {
		keys = append(keys, o.Key)
	}
	// Declaration order is the tie-break order; it must never change.
	require.Equal(t, []string{"freeze", "fire", "wind", "shield", "chaos", "warp", "bomb", "spout"}, keys)
}

func TestLookup(t *testing.T) {
	c := Default()

	opt, ok := c.Lookup("wind")
	require.True(t, ok)
	require.Equal(t, "Wind Boots", opt.Label)

	_, ok = c.Lookup("lava")
	require.False(t, ok)
	require.False(t, c.Contains("lava"))
	require.True(t, c.Contains("bomb"))
}

func TestTypeCodeClamped(t *testing.T) {
	require.Equal(t, 1, TypeCode("freeze"))
	require.Equal(t, 2, TypeCode("fire"))
	require.Equal(t, 5, TypeCode("chaos"))
	// Codes above the game's range clamp down.
	require.Equal(t, 5, TypeCode("warp"))
	require.Equal(t, 5, TypeCode("spout"))
	// Unknown keys fall back like the legacy server did.
	require.Equal(t, 1, TypeCode("lava"))
}
