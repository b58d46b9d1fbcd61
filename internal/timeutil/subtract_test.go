package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var subtractUnitsTests = []struct {
	name  string
	from  time.Time
	n     int
	unit  string
	value time.Time
	ok    bool
}{
	{
		name:  "minutes",
		from:  time.Date(2024, time.January, 15, 12, 30, 0, 0, time.UTC),
		n:     45,
		unit:  "minute",
		value: time.Date(2024, time.January, 15, 11, 45, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "hours across midnight",
		from:  time.Date(2024, time.January, 15, 1, 0, 0, 0, time.UTC),
		n:     3,
		unit:  "hour",
		value: time.Date(2024, time.January, 14, 22, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "days across a month boundary",
		from:  time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
		n:     5,
		unit:  "day",
		value: time.Date(2024, time.February, 26, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "weeks",
		from:  time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		n:     2,
		unit:  "week",
		value: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "months across a year boundary",
		from:  time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		n:     2,
		unit:  "month",
		value: time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "month subtraction clamps to shorter month",
		from:  time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		n:     1,
		unit:  "month",
		value: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "year subtraction clamps a leap day",
		from:  time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		n:     1,
		unit:  "year",
		value: time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "years plain",
		from:  time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC),
		n:     3,
		unit:  "year",
		value: time.Date(2021, time.January, 15, 12, 0, 0, 0, time.UTC),
		ok:    true,
	},
	{
		name:  "unknown unit",
		from:  time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		n:     1,
		unit:  "fortnight",
		value: time.Time{},
		ok:    false,
	},
}

func TestSubtractUnits(t *testing.T) {
	for _, tc := range subtractUnitsTests {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			value, ok := SubtractUnits(tc.from, tc.n, tc.unit)

			a.Equal(tc.ok, ok)
			a.Equal(tc.value, value)
		})
	}
}
