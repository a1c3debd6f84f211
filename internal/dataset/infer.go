package dataset

import (
	"math"
	"strings"
	"time"
)

const (
	numberRatio = 0.7
	dateRatio   = 0.5
)

// DetectType classifies sampled column values. Nil and empty-string values
// are ignored. More than 70% finite numbers makes a number column, otherwise
// more than 50% parseable dates makes a date column, else string.
func DetectType(values []any) ColumnType {
	var numCount, dateCount, total int
	for _, v := range values {
		if isEmpty(v) {
			continue
		}
		total++
		if IsNumeric(v) {
			numCount++
		}
		if IsDate(v) {
			dateCount++
		}
	}
	denom := float64(max(1, total))
	if float64(numCount)/denom > numberRatio {
		return TypeNumber
	}
	if float64(dateCount)/denom > dateRatio {
		return TypeDate
	}
	return TypeString
}

// IsNumeric reports whether v converts to a finite number. Blank strings do
// not count even though they convert to zero.
func IsNumeric(v any) bool {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return false
	}
	n := ToNumber(v)
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-1-2",
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
	"2006.01.02",
	"2006.1.2",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01",
	"2006/01",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
}

// IsDate reports whether v is a valid calendar date. Numeric kinds count as
// epoch offsets; strings must match one of the supported layouts.
func IsDate(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case time.Time:
		return !x.IsZero()
	case string:
		_, ok := ParseDate(x)
		return ok
	case bool:
		return true
	default:
		n := ToNumber(v)
		return !math.IsNaN(n) && math.Abs(n) <= 8.64e15
	}
}

// ParseDate parses s against the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
