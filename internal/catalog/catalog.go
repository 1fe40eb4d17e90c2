package catalog

// Option is one entry in the voting catalog.
type Option struct {
	Key   string `json:"key"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// Catalog is the fixed, ordered set of options for a process lifetime.
// Declaration order is significant: it is the listing order and the
// deterministic tie-break order at round close.
type Catalog struct {
	opts  []Option
	index map[string]int
}

// Game event type codes per option. The game only understands codes
// 0..maxTypeCode; anything above is clamped on send.
var typeCodes = map[string]int{
	"freeze": 1,
	"fire":   2,
	"wind":   3,
	"shield": 4,
	"chaos":  5,
	"warp":   6,
	"bomb":   7,
	"spout":  8,
}

const maxTypeCode = 5

// Default returns the standard item catalog.
func Default() Catalog {
	return New([]Option{
		{Key: "freeze", Emoji: "🧊", Label: "Freeze Orb"},
		{Key: "fire", Emoji: "🔥", Label: "Power Core"},
		{Key: "wind", Emoji: "💨", Label: "Wind Boots"},
		{Key: "shield", Emoji: "🧱", Label: "Shield Stone"},
		{Key: "chaos", Emoji: "🎭", Label: "Chaos Mask"},
		{Key: "warp", Emoji: "🌀", Label: "Space Warp"},
		{Key: "bomb", Emoji: "⏳", Label: "Time Bomb"},
		{Key: "spout", Emoji: "🌋", Label: "Flame Spout"},
	})
}

// New builds a catalog preserving the order of opts.
func New(opts []Option) Catalog {
	idx := make(map[string]int, len(opts))
	for i, o := range opts {
		idx[o.Key] = i
	}
	return Catalog{opts: opts, index: idx}
}

// Options returns the catalog in declaration order. Callers must not mutate
// the returned slice.
func (c Catalog) Options() []Option { return c.opts }

func (c Catalog) Len() int { return len(c.opts) }

func (c Catalog) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

func (c Catalog) Lookup(key string) (Option, bool) {
	i, ok := c.index[key]
	if !ok {
		return Option{}, false
	}
	return c.opts[i], true
}

// TypeCode maps an option key to the game event type code, clamped to the
// range the game accepts. Unknown keys map to 1, matching the legacy server.
func TypeCode(key string) int {
	code, ok := typeCodes[key]
	if !ok {
		code = 1
	}
	if code > maxTypeCode {
		code = maxTypeCode
	}
	if code < 0 {
		code = 0
	}
	return code
}
