package core

import (
	"encoding/json"
	"time"
)

// dateLayout is the wire and storage format for dates. ISO dates compare
// correctly as strings, which the repository's range queries rely on.
const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component, always UTC.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Today returns the current day in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// FirstOfMonth returns the first day of the given month. Budget allocation
// months and all report interval bounds are first-of-month dates.
func FirstOfMonth(year, month int) Date {
	return NewDate(year, month, 1)
}

// MonthStart truncates the date to the first of its month.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// AddMonths shifts the date by n calendar months. Used for the half-open
// [start, start+1month) report intervals and the income deferral window.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
