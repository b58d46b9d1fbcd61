package ytscrape

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/PuerkitoBio/goquery"

	"fknsrs.biz/p/ytsnap/internal/timeutil"
)

var (
	viewsPattern    = regexp.MustCompile(`(?i)([0-9][0-9,.]*[KMB]?)\s+views?`)
	commentsPattern = regexp.MustCompile(`(?i)([0-9][0-9,.]*[KMB]?)\s+comments?`)
)

// fetchDetail fetches a video's watch page and derives the
// authoritative fields from its two embedded blobs. The player
// response and the initial data each may be missing; only both
// missing fails the fetch. Every field resolves through its own
// fallback chain and ends up nil rather than invented.
func fetchDetail(ctx context.Context, opts Options, stub VideoStub, now time.Time) (*VideoDetail, error) {
	html, err := fetchPage(ctx, opts, fmt.Sprintf(watchURLFormat, opts.BaseURL, stub.VideoID))
	if err != nil {
		return nil, fmt.Errorf("ytscrape.fetchDetail: %w", err)
	}

	player := decodeBlob(html, playerResponseMarkers)
	initial := decodeBlob(html, initialDataMarkers)

	if player == nil && initial == nil {
		return nil, fmt.Errorf("ytscrape.fetchDetail: no embedded data blobs in watch page for %s: %w", stub.VideoID, ErrParseFailure)
	}

	d := VideoDetail{
		Title:           detailTitle(player, initial),
		DurationSeconds: detailDuration(player, html, stub),
		ReleaseDate:     detailReleaseDate(player, initial, stub, now),
		ViewCount:       detailViewCount(player, initial),
		LikeCount:       detailLikeCount(initial),
		CommentCount:    detailCommentCount(ctx, opts, initial, html, stub.VideoID),
	}

	if player != nil {
		d.Transcript = fetchTranscript(ctx, opts, player)
	}

	d.Description = detailDescription(ctx, opts, player, html, stub.VideoID, d.Transcript == nil)

	return &d, nil
}

// decodeBlob extracts and decodes one embedded blob, nil when absent
// or unparseable; per-blob failure is never fatal here.
func decodeBlob(html string, markers []string) *gabs.Container {
	blob, ok := extractFirst(html, markers)
	if !ok {
		return nil
	}

	var root interface{}
	if err := json.Unmarshal([]byte(blob), &root); err != nil {
		return nil
	}

	return gabs.Wrap(root)
}

func detailTitle(player, initial *gabs.Container) string {
	if player != nil {
		if s := stringAtFirst(player, "videoDetails.title", "microformat.playerMicroformatRenderer.title.simpleText"); s != "" {
			return s
		}
	}

	if initial != nil {
		if s := stringAtFirst(initial, "contents.twoColumnWatchNextResults.results.results.contents.0.videoPrimaryInfoRenderer.title.runs.0.text"); s != "" {
			return s
		}
	}

	return ""
}

// detailDuration prefers the player's structured length, then the
// page's ISO-8601 duration meta tag, then the listing's rendered
// "h:mm:ss" label.
func detailDuration(player *gabs.Container, html string, stub VideoStub) *int {
	if player != nil {
		if s := stringAtFirst(player, "videoDetails.lengthSeconds", "microformat.playerMicroformatRenderer.lengthSeconds"); s != "" {
			if v, err := strconv.Atoi(s); err == nil && v >= 0 {
				return &v
			}
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		if iso := doc.Find("meta[itemprop=duration]").AttrOr("content", ""); iso != "" {
			if d, err := timeutil.ParseDayTimeDuration(iso); err == nil && d > 0 {
				v := int(time.Duration(d) / time.Second)
				return &v
			}
		}
	}

	if stub.DurationText != "" {
		if v, err := timeutil.ParseClockLabel(stub.DurationText); err == nil {
			return &v
		}
	}

	return nil
}

// detailReleaseDate treats the player microformat's explicit date as
// authoritative, then the watch page's rendered date label, and only
// then falls back to backward induction from the listing's relative
// label. Whatever the source, the stored value is absolute.
func detailReleaseDate(player, initial *gabs.Container, stub VideoStub, now time.Time) *time.Time {
	if player != nil {
		for _, path := range []string{
			"microformat.playerMicroformatRenderer.publishDate",
			"microformat.playerMicroformatRenderer.uploadDate",
		} {
			if s, ok := player.Path(path).Data().(string); ok && s != "" {
				if t, ok := ParseDate(s, now); ok {
					return &t
				}
			}
		}
	}

	if initial != nil {
		if s := stringAtFirst(initial, "contents.twoColumnWatchNextResults.results.results.contents.0.videoPrimaryInfoRenderer.dateText.simpleText"); s != "" {
			if t, ok := ParseDate(s, now); ok {
				return &t
			}
		}
	}

	if stub.PublishedText != "" {
		if t, ok := ParseDate(stub.PublishedText, now); ok {
			return &t
		}
	}

	return nil
}

func detailViewCount(player, initial *gabs.Container) *int64 {
	if player != nil {
		if s := stringAtFirst(player, "videoDetails.viewCount", "microformat.playerMicroformatRenderer.viewCount"); s != "" {
			if v, ok := ParseCount(s); ok {
				return &v
			}
		}
	}

	if initial != nil {
		for _, s := range collectStrings(initial.Data()) {
			if m := viewsPattern.FindStringSubmatch(s); m != nil {
				if v, ok := ParseCount(m[1]); ok {
					return &v
				}
			}
		}
	}

	return nil
}

// detailLikeCount parses every string and number reachable from
// like-related containers and takes the maximum. The same count is
// rendered at several UI scales ("1.2K" in a button, "1,243" in a raw
// field); abbreviated renderings parse smaller, so the maximum is the
// most complete one.
func detailLikeCount(initial *gabs.Container) *int64 {
	if initial == nil {
		return nil
	}

	var best *int64

	for _, subtree := range subtreesByKey(initial.Data(), func(key string) bool {
		return strings.Contains(strings.ToLower(key), "like")
	}) {
		for _, candidate := range collectScalars(subtree) {
			var v int64
			var ok bool

			switch candidate := candidate.(type) {
			case string:
				v, ok = ParseCount(candidate)
			case float64:
				v, ok = int64(math.Round(candidate)), true
			}

			if ok && (best == nil || v > *best) {
				best = &v
			}
		}
	}

	return best
}

// detailCommentCount tries progressively broader "<number> comments"
// scans and finally a secondary call against the page-derived
// internal endpoint. An unresolvable count stays nil, never zero.
func detailCommentCount(ctx context.Context, opts Options, initial *gabs.Container, html, videoID string) *int64 {
	if initial != nil {
		for _, match := range []func(string) bool{
			func(key string) bool { return strings.Contains(strings.ToLower(key), "engagement") },
			func(key string) bool { return strings.Contains(strings.ToLower(key), "content") },
		} {
			for _, subtree := range subtreesByKey(initial.Data(), match) {
				if v, ok := commentCountInStrings(collectStrings(subtree)); ok {
					return &v
				}
			}
		}

		if v, ok := commentCountInStrings(collectStrings(initial.Data())); ok {
			return &v
		}
	}

	if m := commentsPattern.FindStringSubmatch(html); m != nil {
		if v, ok := ParseCount(m[1]); ok {
			return &v
		}
	}

	if body, err := fetchNextBody(ctx, opts, html, videoID); err == nil {
		if m := commentsPattern.FindStringSubmatch(body); m != nil {
			if v, ok := ParseCount(m[1]); ok {
				return &v
			}
		}
	}

	return nil
}

func commentCountInStrings(candidates []string) (int64, bool) {
	for _, s := range candidates {
		if m := commentsPattern.FindStringSubmatch(s); m != nil {
			if v, ok := ParseCount(m[1]); ok {
				return v, true
			}
		}
	}

	return 0, false
}

// detailDescription prefers the player's raw field, then the
// microformat rendering, and re-derives from a secondary player call
// when empty or when the transcript was also unavailable.
func detailDescription(ctx context.Context, opts Options, player *gabs.Container, html, videoID string, transcriptMissing bool) *string {
	var s string

	if player != nil {
		s = stringAtFirst(player, "videoDetails.shortDescription", "microformat.playerMicroformatRenderer.description.simpleText")
	}

	if s == "" || transcriptMissing {
		if fromAPI, ok := fetchPlayerDescription(ctx, opts, html, videoID); ok && s == "" {
			s = fromAPI
		}
	}

	if s == "" {
		return nil
	}

	return &s
}
