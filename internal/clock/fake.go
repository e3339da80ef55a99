package clock

import "time"

type FakeClock struct {
	now time.Time
}

// NewFakeClock keeps t's location so zone-sensitive schedule math behaves
// the same under test as in production.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *FakeClock) Set(t time.Time) {
	c.now = t
}
