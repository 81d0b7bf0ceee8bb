package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used across the engine.
// Dates carry no time-of-day component.
const DateLayout = "2006-01-02"

// DataError indicates malformed input data, such as an unparseable
// transaction date. It is a hard failure: letting a bad date through
// would corrupt interval arithmetic and frequency classification.
type DataError struct {
	Field string
	Value string
	Err   error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &DataError{Field: "date", Value: s, Err: err}
	}
	return t, nil
}

// FormatDate renders a time as a calendar date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
