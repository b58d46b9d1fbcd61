package ytscrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var parseCountTests = []struct {
	name  string
	input string
	value int64
	ok    bool
}{
	{"plain number", "1243", 1243, true},
	{"thousands separator", "3,400", 3400, true},
	{"with views suffix", "3,400 views", 3400, true},
	{"abbreviated thousands", "1.2K", 1200, true},
	{"abbreviated millions", "1.2M", 1200000, true},
	{"abbreviated billions", "1B", 1000000000, true},
	{"lowercase suffix", "15k", 15000, true},
	{"fractional rounding", "1.25K", 1250, true},
	{"zero", "0", 0, true},
	{"no numeral at all", "No data", 0, false},
	{"empty string", "", 0, false},
}

func TestParseCount(t *testing.T) {
	for _, tc := range parseCountTests {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			value, ok := ParseCount(tc.input)

			a.Equal(tc.ok, ok)
			a.Equal(tc.value, value)
		})
	}
}

var parseDateNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

var parseDateTests = []struct {
	name  string
	input string
	now   time.Time
	value time.Time
	ok    bool
}{
	{
		name:  "absolute date",
		input: "Jan 2, 2020",
		now:   parseDateNow,
		value: time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "iso date",
		input: "2020-01-02",
		now:   parseDateNow,
		value: time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "streamed live prefix",
		input: "Streamed live on Jan 1, 2020",
		now:   parseDateNow,
		value: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "premiered prefix",
		input: "Premiered Mar 3, 2021",
		now:   parseDateNow,
		value: time.Date(2021, time.March, 3, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "relative years",
		input: "3 years ago",
		now:   parseDateNow,
		value: time.Date(2021, time.January, 15, 12, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "relative single unit",
		input: "1 month ago",
		now:   parseDateNow,
		value: time.Date(2023, time.December, 15, 12, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "relative weeks",
		input: "2 weeks ago",
		now:   parseDateNow,
		value: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "leap day minus a year clamps to month end",
		input: "1 year ago",
		now:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		value: time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "garbage",
		input: "soon (tm)",
		now:   parseDateNow,
		value: time.Time{},
		ok:    false,
	},
	{
		name:  "empty string",
		input: "",
		now:   parseDateNow,
		value: time.Time{},
		ok:    false,
	},
}

func TestParseDate(t *testing.T) {
	for _, tc := range parseDateTests {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			value, ok := ParseDate(tc.input, tc.now)

			a.Equal(tc.ok, ok)
			a.Equal(tc.value, value)
		})
	}
}
