package models

import (
	"fmt"
	"time"
)

// Period identifies a billing month as a YYYY-MM token. It is the sole
// identity used for duplicate detection and lateness computation.
type Period string

// ParsePeriod parses a YYYY-MM token. A single-digit month (YYYY-M) is
// accepted, since older records were written without zero padding; the
// returned Period is always re-emitted zero-padded.
func ParsePeriod(token string) (Period, error) {
	if token == "" {
		return "", fmt.Errorf("empty period token")
	}
	t, err := time.Parse("2006-01", token)
	if err != nil {
		t, err = time.Parse("2006-1", token)
		if err != nil {
			return "", fmt.Errorf("invalid period %q: expected YYYY-MM", token)
		}
	}
	return Period(t.Format("2006-01")), nil
}

// IsValid reports whether the token parses as a period
func (p Period) IsValid() bool {
	_, err := ParsePeriod(string(p))
	return err == nil
}

// Start returns the first instant of the period's month, in UTC
func (p Period) Start() time.Time {
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		if t, err = time.Parse("2006-1", string(p)); err != nil {
			return time.Time{}
		}
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last calendar instant of the period's month
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0).Add(-time.Second)
}

// NextStart returns the first instant after the period ends. Lateness is
// counted in whole days elapsed from this boundary.
func (p Period) NextStart() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p Period) String() string {
	return string(p)
}
