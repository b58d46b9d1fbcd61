package ytscrape

import (
	"strings"
)

// Markers for the two embedded blobs a watch or listing page carries.
// The assignment form has shifted over time; callers try each in
// order until one yields a parseable object.
var (
	initialDataMarkers = []string{
		"var ytInitialData =",
		`window["ytInitialData"] =`,
		"ytInitialData =",
	}

	playerResponseMarkers = []string{
		"var ytInitialPlayerResponse =",
		`window["ytInitialPlayerResponse"] =`,
		"ytInitialPlayerResponse =",
	}
)

// ExtractObject returns the balanced JSON object beginning at the
// first "{" after the first occurrence of marker. The scan tracks
// string and escape state, so braces inside string literals (a video
// description containing "{", say) do not unbalance the count. It
// reports false when the marker is absent or the input ends before
// the object closes; neither case is fatal to the caller.
func ExtractObject(html, marker string) (string, bool) {
	at := strings.Index(html, marker)
	if at < 0 {
		return "", false
	}

	open := strings.IndexByte(html[at:], '{')
	if open < 0 {
		return "", false
	}
	open += at

	var (
		inString bool
		escaped  bool
		depth    int
	)

	for i := open; i < len(html); i++ {
		c := html[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return html[open : i+1], true
			}
		}
	}

	return "", false
}

// extractFirst tries each marker in order and returns the first
// balanced object found.
func extractFirst(html string, markers []string) (string, bool) {
	for _, marker := range markers {
		if s, ok := ExtractObject(html, marker); ok {
			return s, true
		}
	}

	return "", false
}
