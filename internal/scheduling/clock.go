package scheduling

import "time"

// Clock is the source of "now" used to flag past slots and to select the
// reminder batch. Injectable so tests can pin the reference time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
