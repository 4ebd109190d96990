package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var periodPattern = regexp.MustCompile(`^\d{4}-[12]$`)

// Period is an academic term such as 2024-1. The zero value means "no period".
type Period struct {
	year int
	term int
}

// ParsePeriod parses "YYYY-1" or "YYYY-2". Surrounding whitespace is rejected.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return Period{}, &InvalidPeriodError{Value: s}
	}
	year, _ := strconv.Atoi(s[:4])
	return Period{year: year, term: int(s[5] - '0')}, nil
}

// MustPeriod is ParsePeriod for constants; it panics on invalid input.
func MustPeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Year returns the calendar year.
func (p Period) Year() int { return p.year }

// Term returns 1 or 2.
func (p Period) Term() int { return p.term }

// IsZero reports the zero value.
func (p Period) IsZero() bool { return p.year == 0 && p.term == 0 }

func (p Period) String() string { return fmt.Sprintf("%04d-%d", p.year, p.term) }

// Compare orders periods by year, then term.
func (p Period) Compare(o Period) int {
	switch {
	case p.year != o.year:
		if p.year < o.year {
			return -1
		}
		return 1
	case p.term < o.term:
		return -1
	case p.term > o.term:
		return 1
	default:
		return 0
	}
}

// Before reports p < o.
func (p Period) Before(o Period) bool { return p.Compare(o) < 0 }

// SameYear reports whether both terms fall in the same year.
func (p Period) SameYear(o Period) bool { return p.year == o.year }

// MarshalJSON encodes the period as its string form.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses the string form.
func (p *Period) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SortPeriods sorts ps ascending in place.
func SortPeriods(ps []Period) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Before(ps[j]) })
}
