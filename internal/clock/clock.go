// Package clock provides kiosk-local time. Attendance days roll over at
// midnight in a fixed configured offset (IST by default), independent of the
// server's zone and of UTC.
package clock

import "time"

type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) *Clock {
	return &Clock{loc: loc, now: time.Now}
}

// NewWithNow fixes the time source, for tests
func NewWithNow(loc *time.Location, now func() time.Time) *Clock {
	return &Clock{loc: loc, now: now}
}

// Now returns the current instant in the kiosk zone
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current kiosk-local calendar day as YYYY-MM-DD
func (c *Clock) Today() string {
	return c.Now().Format("2006-01-02")
}

// TimeOfDay returns the current kiosk-local wall time as HH:MM:SS
func (c *Clock) TimeOfDay() string {
	return c.Now().Format("15:04:05")
}
