package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed. Scheduled
	// calls cannot be cancelled; f must tolerate firing late.
	AfterFunc(d time.Duration, f func())
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on a runtime timer
func (c *RealClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
