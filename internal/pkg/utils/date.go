package utils

import (
	"fmt"
	"time"
	_ "time/tzdata" // business timezone must load in slim containers
)

// BusinessCalendar turns instants into calendar dates of one fixed business timezone.
// Dates are midnight values in UTC so they compare and store the same way as a SQL DATE.
type BusinessCalendar struct {
	loc *time.Location
}

func NewBusinessCalendar(timezone string) (*BusinessCalendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load business timezone %q: %w", timezone, err)
	}
	return &BusinessCalendar{loc: loc}, nil
}

func (c *BusinessCalendar) Location() *time.Location {
	return c.loc
}

// DateOf returns the business-local calendar date of t.
func (c *BusinessCalendar) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD as a business date.
func (c *BusinessCalendar) ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// FormatDate renders a business date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}

// TimePtrToString safely converts a *time.Time to an RFC3339 string.
func TimePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
