package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var clockLabelTests = []struct {
	name  string
	input string
	value int
	error bool
}{
	{"minutes and seconds", "4:13", 253, false},
	{"hours minutes seconds", "1:02:45", 3765, false},
	{"zero padded", "0:59", 59, false},
	{"surrounding whitespace", " 10:00 ", 600, false},
	{"single segment", "42", 0, true},
	{"too many segments", "1:2:3:4", 0, true},
	{"non-numeric segment", "a:13", 0, true},
	{"empty string", "", 0, true},
}

func TestParseClockLabel(t *testing.T) {
	for _, tc := range clockLabelTests {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			value, err := ParseClockLabel(tc.input)

			if tc.error {
				a.Error(err)
			} else {
				a.NoError(err)
			}

			a.Equal(tc.value, value)
		})
	}
}
