package ynab

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO date format the API uses
const DateLayout = "2006-01-02"

// Date is a custom type that handles date-only JSON values
type Date struct {
	time.Time
}

// NewDate returns the date for the given calendar day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// DateOf truncates a timestamp to its calendar day in the timestamp's location
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// UnmarshalJSON implements json.Unmarshaler for Date
func (d *Date) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	if str == "" || str == "null" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(DateLayout, str)
	if err == nil {
		d.Time = t
		return nil
	}

	t, err = time.Parse(time.RFC3339, str)
	if err == nil {
		d.Time = DateOf(t).Time
		return nil
	}

	return fmt.Errorf("unable to parse date: %s", str)
}

// MarshalJSON implements json.Marshaler for Date
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"%s"`, d.Time.Format(DateLayout))), nil
}

// String returns the date as a string
func (d Date) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// MonthDay returns the month and day digits without separators, e.g. "0308"
func (d Date) MonthDay() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format("0102")
}

// Compare returns -1, 0 or +1 comparing calendar days
func (d Date) Compare(o Date) int {
	return strings.Compare(d.String(), o.String())
}

// AddDays returns the date shifted by n days
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}
