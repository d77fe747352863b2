package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/mcoot/symbolduel/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Timers only fire when the clock is moved with Advance or Set.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	timers      []*mockTimer
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

type mockTimer struct {
	due time.Time
	f   func()
}

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// AfterFunc registers f to run once the mocked time reaches now+d
func (c *MockClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = append(c.timers, &mockTimer{due: c.CurrentTime.Add(d), f: f})
}

// PendingTimers returns the number of timers that have not fired yet
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by the given duration, firing due timers
// in the calling goroutine
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	due := c.collectDue()
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// Set sets the clock to the given time, firing due timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.CurrentTime = t
	due := c.collectDue()
	c.mu.Unlock()

	for _, timer := range due {
		timer.f()
	}
}

// collectDue must be called with mu held
func (c *MockClock) collectDue() []*mockTimer {
	var due, remaining []*mockTimer
	for _, t := range c.timers {
		if t.due.After(c.CurrentTime) {
			remaining = append(remaining, t)
		} else {
			due = append(due, t)
		}
	}
	c.timers = remaining
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })
	return due
}
