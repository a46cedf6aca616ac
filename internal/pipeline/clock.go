package pipeline

import "github.com/jonboulle/clockwork"

var clock = clockwork.NewRealClock()

// SetClock replaces the clock used for stage timing. Pass nil to restore the
// real clock. Intended for tests.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
