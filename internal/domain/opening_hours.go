package domain

// ValidateOpeningHours checks that every interval closes strictly after it
// opens and that no two intervals of the same day overlap. Intervals are
// half-open, so one closing exactly when another opens is accepted.
// The first failure in input order is returned.
func ValidateOpeningHours(hours []OpeningHours) error {
	for i, h1 := range hours {
		if !h1.CloseAt.After(h1.OpenAt) {
			return &InvalidIntervalError{Day: h1.Day, OpenAt: h1.OpenAt, CloseAt: h1.CloseAt}
		}
		for _, h2 := range hours[i+1:] {
			if h1.Day != h2.Day {
				continue
			}
			if Overlaps(h1, h2) {
				return &OverlapError{Day: h1.Day, First: h1, Second: h2}
			}
		}
	}
	return nil
}

// Overlaps reports whether two intervals intersect, ignoring their day
func Overlaps(a, b OpeningHours) bool {
	return a.OpenAt.Before(b.CloseAt) && a.CloseAt.After(b.OpenAt)
}
