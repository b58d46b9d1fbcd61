package ytutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var extractChannelHandleTests = []struct {
	name  string
	input string
	value string
	error bool
}{
	{"bare handle", "@channelname", "channelname", false},
	{"handle with dots and dashes", "@my.channel-name_1", "my.channel-name_1", false},
	{"full url", "https://www.youtube.com/@channelname", "channelname", false},
	{"url with videos suffix", "https://www.youtube.com/@channelname/videos", "channelname", false},
	{"url without www", "https://youtube.com/@channelname", "channelname", false},
	{"mobile url", "https://m.youtube.com/@channelname", "channelname", false},
	{"surrounding whitespace", "  @channelname  ", "channelname", false},
	{"empty input", "", "", true},
	{"bare handle too short", "@ab", "", true},
	{"handle with invalid characters", "@bad handle!", "", true},
	{"wrong host", "https://example.com/@channelname", "", true},
	{"youtube url without handle", "https://www.youtube.com/watch?v=abcdefghijk", "", true},
	{"plain word", "channelname", "", true},
}

func TestExtractChannelHandle(t *testing.T) {
	for _, tc := range extractChannelHandleTests {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			value, err := ExtractChannelHandle(tc.input)

			if tc.error {
				a.Error(err)
			} else {
				a.NoError(err)
			}

			a.Equal(tc.value, value)
		})
	}
}

var extractVideoIDTests = []struct {
	name  string
	input string
	value string
	error bool
}{
	{"bare id", "abcdefghijk", "abcdefghijk", false},
	{"watch url", "https://www.youtube.com/watch?v=abcdefghijk", "abcdefghijk", false},
	{"watch url without www", "https://youtube.com/watch?v=abcdefghijk", "abcdefghijk", false},
	{"short url", "https://youtu.be/abcdefghijk", "abcdefghijk", false},
	{"watch url with short id", "https://www.youtube.com/watch?v=short", "", true},
	{"watch url without v", "https://www.youtube.com/watch", "", true},
	{"unrelated url", "https://example.com/watch?v=abcdefghijk", "", true},
	{"empty input", "", "", true},
}

func TestExtractVideoID(t *testing.T) {
	for _, tc := range extractVideoIDTests {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			value, err := ExtractVideoID(tc.input)

			if tc.error {
				a.Error(err)
			} else {
				a.NoError(err)
			}

			a.Equal(tc.value, value)
		})
	}
}
