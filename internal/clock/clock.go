// Package clock supplies the notion of "now" to services so valuation results
// are reproducible in tests.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock, in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed is a Clock frozen at a single instant. Tests can move it with Set/Advance.
type Fixed struct {
	t time.Time
}

// NewFixed returns a Fixed clock at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// Now implements Clock.
func (f *Fixed) Now() time.Time { return f.t }

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) { f.t = t }

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.t = f.t.Add(d) }
