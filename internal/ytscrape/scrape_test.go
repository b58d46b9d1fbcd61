package ytscrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/ytsnap/internal/ctxclock"
	"fknsrs.biz/p/ytsnap/internal/ctxhttpclient"
)

func scrapeTestServer(t *testing.T, videoCount int, failingVideos map[string]bool) *httptest.Server {
	t.Helper()

	var entries []string
	for i := 1; i <= videoCount; i++ {
		entries = append(entries, videoEntry(
			fmt.Sprintf("vid%08d", i),
			fmt.Sprintf("Video %d", i),
			"2 days ago",
			"4:13",
			"1,234 views",
		))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/@testchannel/videos", func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, listingPage(listingInitialData(entries...)))
	})
	mux.HandleFunc("/watch", func(rw http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("v")

		if failingVideos[id] {
			http.Error(rw, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}

		fmt.Fprint(rw, watchPage(fmt.Sprintf(`{
			"videoDetails":{
				"title":"Watch Page Title %s",
				"lengthSeconds":"253",
				"viewCount":"4321",
				"shortDescription":"description for %s"
			},
			"microformat":{"playerMicroformatRenderer":{"publishDate":"2023-05-01"}}
		}`, id, id), `{"contents":{"likeButtonData":{"label":"99 likes"}}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func scrapeTestContext(srv *httptest.Server) context.Context {
	ctx := ctxhttpclient.WithHTTPClient(context.Background(), srv.Client())
	return ctxclock.WithClock(ctx, ctxclock.NewStaticClock(detailNow))
}

func TestScrapeChannel(t *testing.T) {
	a := assert.New(t)

	srv := scrapeTestServer(t, 20, nil)
	ctx := scrapeTestContext(srv)

	var progress [][2]int
	opts := testOptions(srv)
	opts.Progress = func(done, total int) {
		progress = append(progress, [2]int{done, total})
	}

	snapshot, err := ScrapeChannel(ctx, opts, "@testchannel", 5)
	a.NoError(err)

	a.Equal("UCabc123", snapshot.ChannelID)
	a.Equal("Test Channel", snapshot.ChannelTitle)

	// only the first maxVideos entries are fetched, in listing order
	a.Len(snapshot.Videos, 5)
	for i, record := range snapshot.Videos {
		a.Equal(fmt.Sprintf("vid%08d", i+1), record.VideoID)
	}

	first := snapshot.Videos[0]
	a.Equal("Watch Page Title vid00000001", first.Title)
	if a.NotNil(first.DurationSeconds) {
		a.Equal(253, *first.DurationSeconds)
	}
	if a.NotNil(first.ReleaseDate) {
		a.Equal(time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), *first.ReleaseDate)
	}
	if a.NotNil(first.ViewCount) {
		a.Equal(int64(4321), *first.ViewCount)
	}
	if a.NotNil(first.LikeCount) {
		a.Equal(int64(99), *first.LikeCount)
	}
	if a.NotNil(first.Description) {
		a.Equal("description for vid00000001", *first.Description)
	}
	a.Equal("https://www.youtube.com/watch?v=vid00000001", first.VideoURL)
	a.Equal("https://example.invalid/large.jpg", first.Thumbnail)

	a.Equal([][2]int{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}}, progress)
}

func TestScrapeChannelDegradedRecord(t *testing.T) {
	a := assert.New(t)

	srv := scrapeTestServer(t, 3, map[string]bool{"vid00000002": true})
	ctx := scrapeTestContext(srv)

	snapshot, err := ScrapeChannel(ctx, testOptions(srv), "@testchannel", 3)
	a.NoError(err)
	a.Len(snapshot.Videos, 3)

	// the failed video still yields a record built from its stub
	degraded := snapshot.Videos[1]
	a.Equal("vid00000002", degraded.VideoID)
	a.Equal("Video 2", degraded.Title)
	a.Nil(degraded.Description)
	a.Nil(degraded.Transcript)
	a.Nil(degraded.LikeCount)
	a.Nil(degraded.CommentCount)

	// listing-derived fallbacks still apply
	if a.NotNil(degraded.DurationSeconds) {
		a.Equal(253, *degraded.DurationSeconds)
	}
	if a.NotNil(degraded.ViewCount) {
		a.Equal(int64(1234), *degraded.ViewCount)
	}
	if a.NotNil(degraded.ReleaseDate) {
		a.Equal(detailNow.AddDate(0, 0, -2), *degraded.ReleaseDate)
	}

	// its neighbours are unaffected
	a.Equal("Watch Page Title vid00000001", snapshot.Videos[0].Title)
	a.Equal("Watch Page Title vid00000003", snapshot.Videos[2].Title)
}

func TestScrapeChannelInvalidInput(t *testing.T) {
	t.Run("unrecognisable channel input", func(t *testing.T) {
		a := assert.New(t)

		_, err := ScrapeChannel(context.Background(), Options{}, "https://example.com/not-youtube", 10)
		a.ErrorIs(err, ErrInvalidInput)
	})

	t.Run("max videos out of range", func(t *testing.T) {
		a := assert.New(t)

		_, err := ScrapeChannel(context.Background(), Options{}, "@testchannel", 0)
		a.ErrorIs(err, ErrInvalidInput)

		_, err = ScrapeChannel(context.Background(), Options{}, "@testchannel", 101)
		a.ErrorIs(err, ErrInvalidInput)
	})
}

func TestScrapeChannelListingFailure(t *testing.T) {
	a := assert.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/@testchannel/videos", func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, "<html><body>no embedded data</body></html>")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := scrapeTestContext(srv)

	_, err := ScrapeChannel(ctx, testOptions(srv), "@testchannel", 10)
	a.ErrorIs(err, ErrParseFailure)
}

func TestFetchVideo(t *testing.T) {
	a := assert.New(t)

	srv := scrapeTestServer(t, 1, nil)
	ctx := scrapeTestContext(srv)

	record, err := FetchVideo(ctx, testOptions(srv), VideoStub{VideoID: "vid00000001"})
	a.NoError(err)

	a.Equal("vid00000001", record.VideoID)
	a.Equal("Watch Page Title vid00000001", record.Title)
	if a.NotNil(record.ViewCount) {
		a.Equal(int64(4321), *record.ViewCount)
	}
}

func TestFetchVideoInvalidInput(t *testing.T) {
	a := assert.New(t)

	_, err := FetchVideo(context.Background(), Options{}, VideoStub{})
	a.ErrorIs(err, ErrInvalidInput)
}
