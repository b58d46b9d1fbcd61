package ytscrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/ytsnap/internal/ctxhttpclient"
)

var detailNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

func watchPage(playerResponse, initialData string) string {
	page := `<!doctype html><html><head>`
	if playerResponse != "" {
		page += `<script>var ytInitialPlayerResponse = ` + playerResponse + `;</script>`
	}
	if initialData != "" {
		page += `<script>var ytInitialData = ` + initialData + `;</script>`
	}
	page += `</head><body></body></html>`
	return page
}

func testOptions(srv *httptest.Server) Options {
	return Options{
		BaseURL:      srv.URL,
		Timeout:      time.Second * 5,
		PaceInterval: time.Millisecond,
	}
}

func serveWatchPage(t *testing.T, page string) (*httptest.Server, context.Context) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, page)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, ctxhttpclient.WithHTTPClient(context.Background(), srv.Client())
}

func TestFetchDetailStructuredFields(t *testing.T) {
	a := assert.New(t)

	player := `{
		"videoDetails":{
			"title":"A Video",
			"lengthSeconds":"253",
			"viewCount":"1234",
			"shortDescription":"the description"
		},
		"microformat":{"playerMicroformatRenderer":{"publishDate":"2020-06-01"}}
	}`
	initial := `{
		"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[
			{"videoPrimaryInfoRenderer":{
				"title":{"runs":[{"text":"A Video"}]},
				"videoActions":{"likeButton":{"likeCount":"1,243"}}
			}}
		]}}}},
		"engagementPanels":[{"panel":{"header":{"contextualInfo":{"runs":[{"text":"912 Comments"}]}}}}]
	}`

	srv, ctx := serveWatchPage(t, watchPage(player, initial))

	d, err := fetchDetail(ctx, testOptions(srv), VideoStub{VideoID: "vid00000001"}, detailNow)
	a.NoError(err)

	a.Equal("A Video", d.Title)
	if a.NotNil(d.DurationSeconds) {
		a.Equal(253, *d.DurationSeconds)
	}
	if a.NotNil(d.ReleaseDate) {
		a.Equal(time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC), *d.ReleaseDate)
	}
	if a.NotNil(d.ViewCount) {
		a.Equal(int64(1234), *d.ViewCount)
	}
	if a.NotNil(d.LikeCount) {
		a.Equal(int64(1243), *d.LikeCount)
	}
	if a.NotNil(d.CommentCount) {
		a.Equal(int64(912), *d.CommentCount)
	}
	if a.NotNil(d.Description) {
		a.Equal("the description", *d.Description)
	}
}

func TestFetchDetailNoBlobs(t *testing.T) {
	a := assert.New(t)

	srv, ctx := serveWatchPage(t, `<html><body>no embedded data</body></html>`)

	_, err := fetchDetail(ctx, testOptions(srv), VideoStub{VideoID: "vid00000001"}, detailNow)
	a.ErrorIs(err, ErrParseFailure)
}

func TestDetailLikeCountTakesMaximumRendering(t *testing.T) {
	a := assert.New(t)

	// the same count rendered at several scales; the abbreviated ones
	// parse smaller, so the maximum is the most complete rendering
	initial := decodeBlob(watchPage("", `{
		"likeButtonRenderer":{"label":"1.2K"},
		"segmentedLikeDislikeButtonRenderer":{"likeCount":1243},
		"toggleButtonRenderer":{"defaultText":{"accessibility":{"label":"1,243 likes"}}}
	}`), initialDataMarkers)
	a.NotNil(initial)

	v := detailLikeCount(initial)
	if a.NotNil(v) {
		a.Equal(int64(1243), *v)
	}
}

func TestDetailLikeCountAbsent(t *testing.T) {
	a := assert.New(t)

	initial := decodeBlob(watchPage("", `{"contents":{"something":"else"}}`), initialDataMarkers)
	a.NotNil(initial)

	a.Nil(detailLikeCount(initial))
}

func TestDetailCommentCountFromContentSubtree(t *testing.T) {
	a := assert.New(t)

	initial := decodeBlob(watchPage("", `{
		"contents":{"itemSectionRenderer":{"header":{"text":"3,456 comments"}}}
	}`), initialDataMarkers)
	a.NotNil(initial)

	v := detailCommentCount(context.Background(), Options{}.withDefaults(), initial, "", "vid00000001")
	if a.NotNil(v) {
		a.Equal(int64(3456), *v)
	}
}

func TestDetailCommentCountFromRawHTML(t *testing.T) {
	a := assert.New(t)

	html := `<html><body><span>42 Comments</span></body></html>`

	v := detailCommentCount(context.Background(), Options{}.withDefaults(), nil, html, "vid00000001")
	if a.NotNil(v) {
		a.Equal(int64(42), *v)
	}
}

func TestDetailCommentCountFromInnertube(t *testing.T) {
	a := assert.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/youtubei/v1/next", func(rw http.ResponseWriter, r *http.Request) {
		a.Equal(http.MethodPost, r.Method)
		a.Equal("test-api-key", r.URL.Query().Get("key"))
		fmt.Fprint(rw, `{"header":{"commentsHeaderRenderer":{"countText":{"runs":[{"text":"777 Comments"}]}}}}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := ctxhttpclient.WithHTTPClient(context.Background(), srv.Client())

	page := `<html><script>{"INNERTUBE_API_KEY":"test-api-key","INNERTUBE_CLIENT_VERSION":"2.20240101"}</script></html>`

	opts := testOptions(srv)
	v := detailCommentCount(ctx, opts.withDefaults(), nil, page, "vid00000001")
	if a.NotNil(v) {
		a.Equal(int64(777), *v)
	}
}

func TestDetailCommentCountUnresolvable(t *testing.T) {
	a := assert.New(t)

	// no count anywhere and no innertube config on the page; the
	// answer is nil, never zero
	a.Nil(detailCommentCount(context.Background(), Options{}.withDefaults(), nil, "<html></html>", "vid00000001"))
}

func TestDetailDurationFallbacks(t *testing.T) {
	t.Run("meta tag iso duration", func(t *testing.T) {
		a := assert.New(t)

		html := `<html><head><meta itemprop="duration" content="PT4M13S"></head></html>`

		v := detailDuration(nil, html, VideoStub{})
		if a.NotNil(v) {
			a.Equal(253, *v)
		}
	})

	t.Run("stub clock label", func(t *testing.T) {
		a := assert.New(t)

		v := detailDuration(nil, "<html></html>", VideoStub{DurationText: "1:02:45"})
		if a.NotNil(v) {
			a.Equal(3765, *v)
		}
	})

	t.Run("nothing available", func(t *testing.T) {
		a := assert.New(t)

		a.Nil(detailDuration(nil, "<html></html>", VideoStub{}))
	})
}

func TestDetailReleaseDateFallsBackToRelativeStub(t *testing.T) {
	a := assert.New(t)

	v := detailReleaseDate(nil, nil, VideoStub{PublishedText: "3 years ago"}, detailNow)
	if a.NotNil(v) {
		a.Equal(time.Date(2021, time.January, 15, 12, 0, 0, 0, time.UTC), *v)
	}
}

func TestFetchTranscript(t *testing.T) {
	a := assert.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/timedtext", func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, `<?xml version="1.0" encoding="utf-8"?><transcript><text start="0" dur="2">hello &amp; welcome</text><text start="2" dur="3"> to the video </text></transcript>`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := ctxhttpclient.WithHTTPClient(context.Background(), srv.Client())

	player := decodeBlob(watchPage(fmt.Sprintf(`{
		"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
			{"languageCode":"de","baseUrl":"%s/api/timedtext?lang=de"},
			{"languageCode":"en","baseUrl":"%s/api/timedtext?lang=en"}
		]}}
	}`, srv.URL, srv.URL), ""), playerResponseMarkers)
	a.NotNil(player)

	v := fetchTranscript(ctx, testOptions(srv).withDefaults(), player)
	if a.NotNil(v) {
		a.Equal("hello & welcome to the video", *v)
	}
}

func TestFetchTranscriptNoTracks(t *testing.T) {
	a := assert.New(t)

	player := decodeBlob(watchPage(`{"videoDetails":{"title":"x"}}`, ""), playerResponseMarkers)
	a.NotNil(player)

	a.Nil(fetchTranscript(context.Background(), Options{}.withDefaults(), player))
}
