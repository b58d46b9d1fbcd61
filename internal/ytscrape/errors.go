package ytscrape

import (
	"fmt"
)

var (
	// ErrInvalidInput marks a malformed channel URL or an
	// out-of-range video limit. Nothing has been fetched when this is
	// returned.
	ErrInvalidInput = fmt.Errorf("ytscrape: invalid input")

	// ErrNotFound marks a listing page that parsed but yielded no
	// recoverable video entries, or a scrape that produced no records.
	ErrNotFound = fmt.Errorf("ytscrape: not found")

	// ErrParseFailure marks a required embedded JSON blob that could
	// not be located or decoded, at a point with no fallback left.
	ErrParseFailure = fmt.Errorf("ytscrape: parse failure")
)
