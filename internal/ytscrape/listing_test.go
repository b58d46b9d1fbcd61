package ytscrape

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func listingPage(initialData string) string {
	return `<!doctype html><html><head><script>var ytInitialData = ` + initialData + `;</script></head><body></body></html>`
}

func videoEntry(id, title, published, duration, views string) string {
	return fmt.Sprintf(`{"richItemRenderer":{"content":{"videoRenderer":{
		"videoId":%q,
		"title":{"runs":[{"text":%q}]},
		"publishedTimeText":{"simpleText":%q},
		"lengthText":{"simpleText":%q},
		"viewCountText":{"simpleText":%q},
		"thumbnail":{"thumbnails":[{"url":"https://example.invalid/small.jpg"},{"url":"https://example.invalid/large.jpg"}]}
	}}}}`, id, title, published, duration, views)
}

func listingInitialData(entries ...string) string {
	items := ""
	for i, e := range entries {
		if i > 0 {
			items += ","
		}
		items += e
	}

	return `{
		"metadata":{"channelMetadataRenderer":{"externalId":"UCabc123","title":"Test Channel"}},
		"contents":{"twoColumnBrowseResultsRenderer":{"tabs":[
			{"tabRenderer":{"title":"Home","selected":false,"content":{}}},
			{"tabRenderer":{"title":"Videos","selected":true,"content":{"richGridRenderer":{"contents":[` + items + `]}}}}
		]}}
	}`
}

func TestParseListing(t *testing.T) {
	a := assert.New(t)

	html := listingPage(listingInitialData(
		videoEntry("vid00000001", "First Video", "2 days ago", "4:13", "1,234 views"),
		videoEntry("vid00000002", "Second Video", "1 week ago", "1:02:45", "56K views"),
		videoEntry("vid00000003", "Third Video", "3 years ago", "0:59", "7 views"),
	))

	l, err := parseListing(html)
	a.NoError(err)
	a.Equal("UCabc123", l.ChannelID)
	a.Equal("Test Channel", l.ChannelTitle)
	a.Len(l.Stubs, 3)

	// entries come back in document order
	a.Equal("vid00000001", l.Stubs[0].VideoID)
	a.Equal("vid00000002", l.Stubs[1].VideoID)
	a.Equal("vid00000003", l.Stubs[2].VideoID)

	a.Equal("First Video", l.Stubs[0].Title)
	a.Equal("2 days ago", l.Stubs[0].PublishedText)
	a.Equal("4:13", l.Stubs[0].DurationText)
	a.Equal("1,234 views", l.Stubs[0].ViewCountText)
	a.Equal("https://example.invalid/large.jpg", l.Stubs[0].Thumbnail)
}

func TestParseListingIsIdempotent(t *testing.T) {
	a := assert.New(t)

	html := listingPage(listingInitialData(
		videoEntry("vid00000001", "First Video", "2 days ago", "4:13", "1,234 views"),
		videoEntry("vid00000002", "Second Video", "1 week ago", "1:02:45", "56K views"),
	))

	first, err := parseListing(html)
	a.NoError(err)

	second, err := parseListing(html)
	a.NoError(err)

	a.Equal(first, second)
}

func TestParseListingGridRenderer(t *testing.T) {
	a := assert.New(t)

	// older layout: gridVideoRenderer entries, title as simpleText
	html := listingPage(`{
		"metadata":{"channelMetadataRenderer":{"externalId":"UCdef456","title":"Old Layout"}},
		"contents":{"twoColumnBrowseResultsRenderer":{"tabs":[
			{"tabRenderer":{"title":"Videos","content":{"sectionListRenderer":{"contents":[
				{"gridVideoRenderer":{"videoId":"vid00000009","title":{"simpleText":"Grid Video"}}}
			]}}}}
		]}}
	}`)

	l, err := parseListing(html)
	a.NoError(err)
	a.Len(l.Stubs, 1)
	a.Equal("vid00000009", l.Stubs[0].VideoID)
	a.Equal("Grid Video", l.Stubs[0].Title)
}

func TestParseListingFallsBackToSelectedTab(t *testing.T) {
	a := assert.New(t)

	html := listingPage(`{
		"metadata":{"channelMetadataRenderer":{"externalId":"UCghi789","title":"No Videos Tab"}},
		"contents":{"twoColumnBrowseResultsRenderer":{"tabs":[
			{"tabRenderer":{"title":"Inicio","selected":false,"content":{}}},
			{"tabRenderer":{"title":"Contenido","selected":true,"content":{"richGridRenderer":{"contents":[
				` + videoEntry("vid00000004", "Selected Tab Video", "1 day ago", "2:00", "5 views") + `
			]}}}}
		]}}
	}`)

	l, err := parseListing(html)
	a.NoError(err)
	a.Len(l.Stubs, 1)
	a.Equal("vid00000004", l.Stubs[0].VideoID)
}

func TestParseListingScansWholeDocumentWithoutTabs(t *testing.T) {
	a := assert.New(t)

	html := listingPage(`{
		"metadata":{"channelMetadataRenderer":{"externalId":"UCjkl012","title":"No Tabs"}},
		"onResponseReceivedActions":[{"appendContinuationItemsAction":{"continuationItems":[
			` + videoEntry("vid00000005", "Continuation Video", "5 hours ago", "10:00", "100 views") + `
		]}}]
	}`)

	l, err := parseListing(html)
	a.NoError(err)
	a.Len(l.Stubs, 1)
	a.Equal("vid00000005", l.Stubs[0].VideoID)
}

func TestParseListingErrors(t *testing.T) {
	t.Run("no initial data blob", func(t *testing.T) {
		a := assert.New(t)

		_, err := parseListing(`<html><body>nothing embedded</body></html>`)
		a.ErrorIs(err, ErrParseFailure)
	})

	t.Run("undecodable blob", func(t *testing.T) {
		a := assert.New(t)

		_, err := parseListing(`<script>var ytInitialData = {"a":};</script>`)
		a.ErrorIs(err, ErrParseFailure)
	})

	t.Run("no video entries", func(t *testing.T) {
		a := assert.New(t)

		_, err := parseListing(listingPage(`{"metadata":{"channelMetadataRenderer":{"externalId":"UCempty","title":"Empty"}}}`))
		a.ErrorIs(err, ErrNotFound)
	})
}
