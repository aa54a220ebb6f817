package engine

import "time"

// Clock is the engine's single time source. Deduplication windows,
// lateness and staleness checks all read from the same clock so that
// device-reported tick counters never leak into ordering decisions.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
