package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ClockTime is a wall clock time of day with second precision, stored as
// seconds since midnight.
type ClockTime int

const secondsPerDay = 24 * 60 * 60

// NewClockTime builds a ClockTime from its components
func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime(hour*3600 + minute*60 + second)
}

// ParseClockTime accepts HH:MM and HH:MM:SS
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClockTime(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	// Postgres may render fractional seconds for TIME columns
	if i := strings.IndexByte(s, '.'); i > 0 {
		return ParseClockTime(s[:i])
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM or HH:MM:SS", s)
}

func (c ClockTime) Hour() int   { return int(c) / 3600 }
func (c ClockTime) Minute() int { return int(c) % 3600 / 60 }
func (c ClockTime) Second() int { return int(c) % 60 }

// Before reports whether c is strictly earlier than other
func (c ClockTime) Before(other ClockTime) bool { return c < other }

// After reports whether c is strictly later than other
func (c ClockTime) After(other ClockTime) bool { return c > other }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value renders the time in a form accepted by a Postgres TIME column
func (c ClockTime) Value() (driver.Value, error) {
	if c < 0 || c >= secondsPerDay {
		return nil, fmt.Errorf("time of day out of range: %d", int(c))
	}
	return c.String(), nil
}

func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		return c.Scan(string(v))
	case time.Time:
		*c = NewClockTime(v.Hour(), v.Minute(), v.Second())
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
	return nil
}
