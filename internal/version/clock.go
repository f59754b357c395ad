package version

import "time"

// Clock supplies "today" to the minting policy.
//
// Tests inject a fixed clock so minted tokens are reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
