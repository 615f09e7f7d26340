package clock

import "time"

// Clock lets the engine's time-dependent rules be driven from tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Manual is a settable clock for tests.
type Manual struct {
	now time.Time
}

// NewManual returns a clock fixed at t until Set or Advance is called.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t.UTC()}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.now = t.UTC()
}

func (m *Manual) Advance(d time.Duration) {
	m.now = m.now.Add(d)
}
