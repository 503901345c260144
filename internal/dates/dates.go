package dates

import "time"

const layout = "2006-01-02"

// Valid reports whether s is a YYYY-MM-DD calendar date or empty.
// Dates are stored as strings and compared lexicographically, which
// only works for this exact layout.
func Valid(s string) bool {
	if s == "" {
		return true
	}
	if len(s) != len(layout) {
		return false
	}
	_, err := time.Parse(layout, s)
	return err == nil
}

// Today returns the current UTC date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format(layout)
}
