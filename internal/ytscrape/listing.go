package ytscrape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

// Keys that mark "this object is one video entry" in the listing
// tree. The surrounding shape varies by page layout and changes
// without notice; the walker finds these at any depth.
var videoEntryKeys = []string{
	"videoRenderer",
	"gridVideoRenderer",
	"reelItemRenderer",
}

// Paths tried in order for each stub field, relative to the entry.
var (
	stubTitlePaths = []string{
		"title.runs.0.text",
		"title.simpleText",
		"headline.simpleText",
	}
	stubPublishedPaths = []string{
		"publishedTimeText.simpleText",
		"publishedTimeText.runs.0.text",
	}
	stubDurationPaths = []string{
		"lengthText.simpleText",
		"thumbnailOverlays.0.thumbnailOverlayTimeStatusRenderer.text.simpleText",
	}
	stubViewCountPaths = []string{
		"viewCountText.simpleText",
		"viewCountText.runs.0.text",
	}
)

type listing struct {
	ChannelID    string
	ChannelTitle string
	Stubs        []VideoStub
}

// parseListing recovers the channel identity and the ordered video
// stubs from a listing page's embedded initial-data blob. The blob
// itself is required; everything below it is best effort until zero
// entries remain, which is NotFound.
func parseListing(html string) (*listing, error) {
	blob, ok := extractFirst(html, initialDataMarkers)
	if !ok {
		return nil, fmt.Errorf("ytscrape.parseListing: could not locate initial data blob: %w", ErrParseFailure)
	}

	var root interface{}
	if err := json.Unmarshal([]byte(blob), &root); err != nil {
		return nil, fmt.Errorf("ytscrape.parseListing: could not decode initial data blob: %w", ErrParseFailure)
	}

	j := gabs.Wrap(root)

	l := listing{
		ChannelID:    stringAtFirst(j, "metadata.channelMetadataRenderer.externalId", "header.c4TabbedHeaderRenderer.channelId"),
		ChannelTitle: stringAtFirst(j, "metadata.channelMetadataRenderer.title", "header.c4TabbedHeaderRenderer.title"),
	}

	for _, entry := range collectVideoEntries(videosTabTree(j)) {
		e := gabs.Wrap(entry)

		videoID, _ := e.Path("videoId").Data().(string)
		if videoID == "" {
			continue
		}

		l.Stubs = append(l.Stubs, VideoStub{
			VideoID:       videoID,
			Title:         stringAtFirst(e, stubTitlePaths...),
			PublishedText: stringAtFirst(e, stubPublishedPaths...),
			DurationText:  stringAtFirst(e, stubDurationPaths...),
			ViewCountText: stringAtFirst(e, stubViewCountPaths...),
			Thumbnail:     lastThumbnailURL(e),
		})
	}

	if len(l.Stubs) == 0 {
		return nil, fmt.Errorf("ytscrape.parseListing: no video entries in listing: %w", ErrNotFound)
	}

	return &l, nil
}

// videosTabTree picks the subtree to collect entries from. Preference
// order: a tab whose title contains "video", then the currently
// selected tab, then the first tab. When no tab list exists at all
// the whole document is scanned instead.
func videosTabTree(j *gabs.Container) interface{} {
	tabs := j.Path("contents.twoColumnBrowseResultsRenderer.tabs").Children()
	if len(tabs) == 0 {
		return j.Data()
	}

	var selected, first interface{}

	for _, tab := range tabs {
		r := tab.Path("tabRenderer")
		if r == nil || r.Data() == nil {
			continue
		}

		if first == nil {
			first = r.Data()
		}

		if title, _ := r.Path("title").Data().(string); strings.Contains(strings.ToLower(title), "video") {
			return r.Data()
		}

		if isSelected, _ := r.Path("selected").Data().(bool); isSelected && selected == nil {
			selected = r.Data()
		}
	}

	if selected != nil {
		return selected
	}
	if first != nil {
		return first
	}

	return j.Data()
}

// collectVideoEntries gathers every subtree carrying a video entry
// marker key, in document order. Entries do not nest in observed
// pages, but the walker recurses into them anyway rather than assume
// that holds.
func collectVideoEntries(root interface{}) []map[string]interface{} {
	var entries []map[string]interface{}

	walkKeyed(root, func(key string, node interface{}) {
		if key == "" {
			return
		}

		for _, markerKey := range videoEntryKeys {
			if key == markerKey {
				if m, ok := node.(map[string]interface{}); ok {
					entries = append(entries, m)
				}
				return
			}
		}
	})

	return entries
}

func stringAtFirst(j *gabs.Container, paths ...string) string {
	for _, path := range paths {
		if s, ok := j.Path(path).Data().(string); ok && s != "" {
			return s
		}
	}

	return ""
}

func lastThumbnailURL(e *gabs.Container) string {
	thumbs := e.Path("thumbnail.thumbnails").Children()
	if len(thumbs) == 0 {
		return ""
	}

	s, _ := thumbs[len(thumbs)-1].Path("url").Data().(string)

	return s
}
