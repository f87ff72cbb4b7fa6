package timeline

import (
	"time"

	"github.com/zeebo/errs"
)

// DefaultCacheLimit caps how many entries a single user's cached timeline keeps.
const DefaultCacheLimit int64 = 1000

var (
	// ErrInvalidCursor is the only timeline error surfaced to clients.
	ErrInvalidCursor = errs.Class("invalid cursor")
	// ErrCacheUnavailable marks timeline cache I/O failures. Readers treat it as a miss.
	ErrCacheUnavailable = errs.Class("timeline cache unavailable")
)

// Score converts a feed instant into a cache score (milliseconds since epoch).
func Score(t time.Time) float64 {
	return float64(t.UnixMilli())
}
