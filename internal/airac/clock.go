package airac

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package time source; tests freeze it through SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}

// Current returns CurrentAndEffective evaluated at the package clock.
func Current(offset int) (string, string) {
	return CurrentAndEffective(Now(), offset)
}
