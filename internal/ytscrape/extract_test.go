package ytscrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var extractObjectTests = []struct {
	name   string
	input  string
	marker string
	value  string
	found  bool
}{
	{
		name:   "simple object",
		input:  `<script>var ytInitialData = {"a":1};</script>`,
		marker: "var ytInitialData =",
		value:  `{"a":1}`,
		found:  true,
	},
	{
		name:   "nested objects",
		input:  `var ytInitialData = {"a":{"b":{"c":3}},"d":4};`,
		marker: "var ytInitialData =",
		value:  `{"a":{"b":{"c":3}},"d":4}`,
		found:  true,
	},
	{
		name:   "braces inside string values",
		input:  `var ytInitialData = {"description":"a { b } c }{"};`,
		marker: "var ytInitialData =",
		value:  `{"description":"a { b } c }{"}`,
		found:  true,
	},
	{
		name:   "escaped quotes inside strings",
		input:  `var ytInitialData = {"title":"she said \"hi}\" to me"};`,
		marker: "var ytInitialData =",
		value:  `{"title":"she said \"hi}\" to me"}`,
		found:  true,
	},
	{
		name:   "content after the object is ignored",
		input:  `var ytInitialData = {"a":1}; window.x = {"b":2};`,
		marker: "var ytInitialData =",
		value:  `{"a":1}`,
		found:  true,
	},
	{
		name:   "marker absent",
		input:  `var somethingElse = {"a":1};`,
		marker: "var ytInitialData =",
		value:  "",
		found:  false,
	},
	{
		name:   "marker with no object",
		input:  `var ytInitialData = null;`,
		marker: "var ytInitialData =",
		value:  "",
		found:  false,
	},
	{
		name:   "truncated object",
		input:  `var ytInitialData = {"a":{"b":1}`,
		marker: "var ytInitialData =",
		value:  "",
		found:  false,
	},
}

func TestExtractObject(t *testing.T) {
	for _, tc := range extractObjectTests {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			value, found := ExtractObject(tc.input, tc.marker)

			a.Equal(tc.found, found)
			a.Equal(tc.value, value)
		})
	}
}

func TestExtractFirstTriesMarkersInOrder(t *testing.T) {
	a := assert.New(t)

	value, found := extractFirst(`window["ytInitialData"] = {"a":1};`, initialDataMarkers)
	a.True(found)
	a.Equal(`{"a":1}`, value)

	_, found = extractFirst(`nothing useful here`, initialDataMarkers)
	a.False(found)
}

func BenchmarkExtractObject(b *testing.B) {
	input := `<html><script>var ytInitialData = {"contents":{"items":[{"title":"one { two }"},{"title":"three"}]}};</script></html>`

	for i := 0; i < b.N; i++ {
		ExtractObject(input, "var ytInitialData =")
	}
}
