package ytscrape

import (
	"time"
)

// VideoStub is the lightweight record recovered from a channel's
// listing page, before the watch page has been fetched.
type VideoStub struct {
	VideoID       string
	Title         string
	PublishedText string
	DurationText  string
	ViewCountText string
	Thumbnail     string
}

// VideoRecord is one video's metadata at scrape time. Pointer fields
// are nil when the value could not be extracted; nil is distinct from
// a genuine zero and must stay that way until the presentation layer.
type VideoRecord struct {
	VideoID         string     `json:"videoId"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	Transcript      *string    `json:"transcript"`
	DurationSeconds *int       `json:"duration"`
	ReleaseDate     *time.Time `json:"releaseDate"`
	ViewCount       *int64     `json:"viewCount"`
	LikeCount       *int64     `json:"likeCount"`
	CommentCount    *int64     `json:"commentCount"`
	VideoURL        string     `json:"videoUrl"`
	Thumbnail       string     `json:"thumbnail"`
	PublishedText   string     `json:"publishedText,omitempty"`
}

// ChannelSnapshot is the result of one scrape invocation. It is
// complete when returned and never merged with earlier snapshots.
type ChannelSnapshot struct {
	ChannelID    string        `json:"channelId"`
	ChannelTitle string        `json:"channelTitle"`
	Videos       []VideoRecord `json:"videos"`
}

// VideoDetail carries the authoritative per-video fields recovered
// from that video's own watch page. Every field is independently
// optional; a missing field never fails the whole fetch.
type VideoDetail struct {
	Title           string
	Description     *string
	Transcript      *string
	DurationSeconds *int
	ReleaseDate     *time.Time
	ViewCount       *int64
	LikeCount       *int64
	CommentCount    *int64
}

const (
	watchURLFormat     = "%s/watch?v=%s"
	thumbnailURLFormat = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

// Options carries all scrape configuration explicitly; the package
// keeps no state between invocations.
type Options struct {
	// BaseURL is the site root, without a trailing slash. Defaults to
	// https://www.youtube.com; tests point it at a local server.
	BaseURL string
	// UserAgent is sent on every request.
	UserAgent string
	// AcceptLanguage is sent on every request.
	AcceptLanguage string
	// Timeout bounds each individual HTTP request. There are no
	// retries; a timed-out fetch is a per-video failure.
	Timeout time.Duration
	// PaceInterval is the minimum spacing between consecutive video
	// detail fetches.
	PaceInterval time.Duration
	// Progress, when set, is called after each video completes.
	Progress func(done, total int)
}

const (
	DefaultBaseURL        = "https://www.youtube.com"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultTimeout        = time.Second * 20
	DefaultPaceInterval   = time.Millisecond * 500

	// MaxVideos is the inclusive upper bound on videos per scrape.
	MaxVideos = 100
)

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.AcceptLanguage == "" {
		o.AcceptLanguage = DefaultAcceptLanguage
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.PaceInterval == 0 {
		o.PaceInterval = DefaultPaceInterval
	}

	return o
}
