package deadline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// keep digits plus the separators we understand; announcement fields
	// arrive with surrounding prose, parentheses and Korean labels mixed in
	junk = regexp.MustCompile(`[^0-9.\-~]`)

	// 2-4 digit year, 1-2 digit month, 1-2 digit day, separated by "." or
	// "-" or nothing at all
	datePat = regexp.MustCompile(`(\d{2,4})[.\-]?(\d{1,2})[.\-]?(\d{1,2})`)
)

// Parse extracts the application deadline from a free-text period string
// like "2024.03.01 ~ 2024.03.15 (서류 접수)". The reported instant is
// 23:59:59 local time on the end date, so a listing stays active through
// its entire last day. ok is false when no usable date is present;
// malformed input is never an error, it just means "no deadline".
func Parse(s string) (deadline time.Time, ok bool) {
	cleaned := junk.ReplaceAllString(s, "")
	if cleaned == "" {
		return time.Time{}, false
	}

	// a range keeps only its end; with multiple "~" the last segment wins
	if i := strings.LastIndex(cleaned, "~"); i >= 0 {
		cleaned = cleaned[i+1:]
	}

	m := datePat.FindStringSubmatch(cleaned)
	if m == nil {
		return time.Time{}, false
	}

	year := m[1]
	if len(year) == 2 {
		year = "20" + year
	}
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])

	t := time.Date(y, time.Month(mo), d, 23, 59, 59, 0, time.Local)
	// time.Date normalizes out-of-range components (month 13 becomes
	// January next year); treat any normalization as "not a date"
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
