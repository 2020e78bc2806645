package domain

import (
	"fmt"
	"unicode/utf8"
)

// Weekday numbers days the ISO way, Monday is 1 and Sunday is 7
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// OpeningHours is one weekly opening interval of a shop
type OpeningHours struct {
	ID      int64     `json:"id"`
	Day     Weekday   `json:"day"`
	OpenAt  ClockTime `json:"openAt"`
	CloseAt ClockTime `json:"closeAt"`
}

// Shop is a store front owning its opening hours. NbProducts and
// NbCategories are computed by the store on every read.
type Shop struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	CreatedAt    Date           `json:"createdAt"`
	InVacations  bool           `json:"inVacations"`
	NbProducts   int64          `json:"nbProducts"`
	NbCategories int64          `json:"nbCategories"`
	OpeningHours []OpeningHours `json:"openingHours"`
}

const MaxNameLength = 255

// Validate checks the field constraints of a shop
func (s *Shop) Validate() error {
	var errs ValidationErrors
	if n := utf8.RuneCountInString(s.Name); n < 1 || n > MaxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "Name must be between 1 and 255 characters"})
	}
	for i, h := range s.OpeningHours {
		if h.Day < Monday || h.Day > Sunday {
			errs = append(errs, FieldError{Field: fmt.Sprintf("openingHours[%d].day", i), Message: "Day must be between 1 and 7"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
