package clock

import (
	"fmt"
	"time"

	"go.uber.org/fx"
)

// Clock supplies wall-clock time. All window math and schedule math in the
// application goes through a Clock so tests can drive time explicitly.
type Clock interface {
	Now() time.Time
}

// ZonedClock reports the system time in a fixed named zone.
type ZonedClock struct {
	loc *time.Location
}

// NewZoned loads the named zone and returns a clock pinned to it.
func NewZoned(name string) (*ZonedClock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return &ZonedClock{loc: loc}, nil
}

func (c *ZonedClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location exposes the zone so callers can anchor parsed civil times to it.
func (c *ZonedClock) Location() *time.Location {
	return c.loc
}

// Module wires the zoned clock from application config.
var Module = fx.Module("clock",
	fx.Provide(func(tz TimeZone) (*ZonedClock, error) {
		return NewZoned(string(tz))
	}),
	fx.Provide(func(c *ZonedClock) Clock { return c }),
)

// TimeZone names the fixed zone the application operates in.
type TimeZone string
