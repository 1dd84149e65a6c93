package scheduling

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay represents a wall-clock time within a day, stored as minutes since
// midnight. It maps to a TIME column and is the unit slot arithmetic works on.
type TimeOfDay int32

// FromClock creates a TimeOfDay from the given hour and minute.
func FromClock(hour int, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses the given value as "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return FromClock(parsed.Hour(), parsed.Minute()), nil
		}
	}
	return 0, fmt.Errorf("non-valid time format: '%s'", trimmed)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// At combines the time of day with the given calendar date.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, time.Local)
}

// Scan implements sql.Scanner, accepting TIME column values returned by the driver.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = FromClock(v.Hour(), v.Minute())
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	return fmt.Errorf("cannot scan %T into a time of day", src)
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", int(t)/60, int(t)%60), nil
}

// MarshalJSON renders the time as "HH:MM", the format the schedule screens use.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

// UnmarshalJSON parses the time from "HH:MM" or "HH:MM:SS".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	unquoted := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeOfDay(unquoted)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
