package ytscrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"fknsrs.biz/p/ytsnap/internal/timeutil"
)

var (
	countPattern    = regexp.MustCompile(`([0-9][0-9,.]*)([KMBkmb])?`)
	relativePattern = regexp.MustCompile(`(?i)^([0-9]+)\s*(minute|hour|day|week|month|year)s?\s*ago$`)

	// Labels such as "Streamed live on Jan 1, 2020" or "Premiered
	// Mar 3, 2021" carry these before the part worth parsing.
	datePrefixes = []string{
		"streamed live on",
		"streamed live",
		"streamed",
		"premiered",
		"premieres",
		"uploaded",
	}
)

// ParseCount turns freeform count text ("1.2M", "3,400 views") into
// an integer. A trailing k/m/b multiplies by 1e3/1e6/1e9; the result
// is rounded to the nearest integer. Reports false when the text
// contains no numeral at all.
func ParseCount(s string) (int64, bool) {
	m := countPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSuffix(m[1], "."), ",", ""), 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		f *= 1e3
	case "m":
		f *= 1e6
	case "b":
		f *= 1e9
	}

	return int64(math.Round(f)), true
}

// ParseDate turns freeform date text into an absolute UTC time. It
// strips known prefixes, tries a general date parse (date-only input
// lands on UTC midnight), and falls back to backward induction from a
// relative phrase ("3 years ago"), subtracting from now with
// calendar-aware arithmetic. Reports false when neither path matches;
// the relative phrase itself is never returned as a date.
func ParseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)

	for _, prefix := range datePrefixes {
		if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = strings.TrimLeft(s[len(prefix):], " :")
			break
		}
	}

	if s == "" {
		return time.Time{}, false
	}

	if !relativePattern.MatchString(s) {
		if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}

	m := relativePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	t, ok := timeutil.SubtractUnits(now.UTC(), n, strings.ToLower(m[2]))
	if !ok {
		return time.Time{}, false
	}

	return t, true
}
