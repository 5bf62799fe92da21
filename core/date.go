package core

import (
	"time"

	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

var NowFunc = time.Now // mockable

// Date is a calendar day formatted as YYYY-MM-DD. Dates compare lexicographically.
type Date string

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today returns the current UTC day.
func Today() Date {
	return DateOf(NowFunc().UTC())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, CleanString(s))
	if err != nil {
		return "", errors.Wrapf(err, "parsing date %q", s)
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) IsZero() bool { return d == "" }

// Within reports whether from <= d <= to.
func (d Date) Within(from, to Date) bool {
	return d >= from && d <= to
}

func (d Date) String() string { return string(d) }
