// Package weekday converts calendar dates to the 1..7 weekday numbering used
// by the availability index, where Monday is 1 and Sunday is 7.
package weekday

import "time"

// Of returns the ISO-style weekday number for a date. Go's time package uses
// Sunday=0, which must be remapped to 7 before any availability lookup.
func Of(date time.Time) int {
	d := int(date.Weekday())
	if d == 0 {
		d = 7
	}
	return d
}

// Valid reports whether d is a usable weekday number.
func Valid(d int) bool {
	return d >= 1 && d <= 7
}

var names = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Name returns the English name for a 1..7 weekday number, or an empty string
// for out-of-range values.
func Name(d int) string {
	if !Valid(d) {
		return ""
	}
	return names[d]
}
