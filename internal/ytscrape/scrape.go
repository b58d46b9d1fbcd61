package ytscrape

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"fknsrs.biz/p/ytsnap/internal/ctxclock"
	"fknsrs.biz/p/ytsnap/internal/ctxlogger"
	"fknsrs.biz/p/ytsnap/internal/timeutil"
	"fknsrs.biz/p/ytsnap/internal/ytutil"
)

// ScrapeChannel fetches a channel's listing page and then, strictly
// one at a time, each video's watch page, and assembles a fresh
// ChannelSnapshot. Detail fetches are sequential and paced on purpose
// (the target publishes no quota contract) and a single video's
// failure degrades that record instead of aborting the batch. There
// is no retry and no state shared between invocations.
func ScrapeChannel(ctx context.Context, opts Options, channelURL string, maxVideos int) (*ChannelSnapshot, error) {
	opts = opts.withDefaults()

	handle, err := ytutil.ExtractChannelHandle(channelURL)
	if err != nil {
		return nil, fmt.Errorf("ytscrape.ScrapeChannel: %s: %w", err.Error(), ErrInvalidInput)
	}

	if maxVideos < 1 || maxVideos > MaxVideos {
		return nil, fmt.Errorf("ytscrape.ScrapeChannel: max videos %d outside range 1..%d: %w", maxVideos, MaxVideos, ErrInvalidInput)
	}

	now, err := ctxclock.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	html, err := fetchPage(ctx, opts, opts.BaseURL+"/@"+handle+"/videos")
	if err != nil {
		return nil, fmt.Errorf("ytscrape.ScrapeChannel: could not fetch listing page: %w", err)
	}

	l, err := parseListing(html)
	if err != nil {
		return nil, fmt.Errorf("ytscrape.ScrapeChannel: %w", err)
	}

	stubs := l.Stubs
	if len(stubs) > maxVideos {
		stubs = stubs[:maxVideos]
	}

	limiter := rate.NewLimiter(rate.Every(opts.PaceInterval), 1)

	snapshot := ChannelSnapshot{
		ChannelID:    l.ChannelID,
		ChannelTitle: l.ChannelTitle,
		Videos:       make([]VideoRecord, 0, len(stubs)),
	}

	for i, stub := range stubs {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ytscrape.ScrapeChannel: %w", err)
		}

		detail, err := fetchDetail(ctx, opts, stub, now)
		if err != nil {
			ctxlogger.GetLogger(ctx).WithError(err).WithFields(logrus.Fields{
				"video_id": stub.VideoID,
			}).Warn("video detail fetch failed; emitting stub-only record")
		}

		snapshot.Videos = append(snapshot.Videos, mergeRecord(stub, detail, now))

		if opts.Progress != nil {
			opts.Progress(i+1, len(stubs))
		}
	}

	if len(snapshot.Videos) == 0 {
		return nil, fmt.Errorf("ytscrape.ScrapeChannel: no video records produced: %w", ErrNotFound)
	}

	return &snapshot, nil
}

// FetchVideo re-fetches a single video's watch page and rebuilds its
// record, without touching the channel listing. The stub carries
// whatever listing-derived fields are already known; they backfill
// anything the watch page no longer yields.
func FetchVideo(ctx context.Context, opts Options, stub VideoStub) (*VideoRecord, error) {
	opts = opts.withDefaults()

	if stub.VideoID == "" {
		return nil, fmt.Errorf("ytscrape.FetchVideo: empty video id: %w", ErrInvalidInput)
	}

	now, err := ctxclock.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	detail, err := fetchDetail(ctx, opts, stub, now)
	if err != nil {
		return nil, fmt.Errorf("ytscrape.FetchVideo: %w", err)
	}

	r := mergeRecord(stub, detail, now)

	return &r, nil
}

// mergeRecord builds the final record from the stub and, when the
// detail fetch survived, its fields. Detail wins on conflict; the
// stub is the fallback. A nil detail still yields a record, with
// whatever the listing alone could provide.
func mergeRecord(stub VideoStub, detail *VideoDetail, now time.Time) VideoRecord {
	r := VideoRecord{
		VideoID:       stub.VideoID,
		Title:         stub.Title,
		Thumbnail:     stub.Thumbnail,
		VideoURL:      "https://www.youtube.com/watch?v=" + stub.VideoID,
		PublishedText: stub.PublishedText,
	}

	if r.Thumbnail == "" {
		r.Thumbnail = fmt.Sprintf(thumbnailURLFormat, stub.VideoID)
	}

	if detail != nil {
		if detail.Title != "" {
			r.Title = detail.Title
		}

		r.Description = detail.Description
		r.Transcript = detail.Transcript
		r.DurationSeconds = detail.DurationSeconds
		r.ReleaseDate = detail.ReleaseDate
		r.ViewCount = detail.ViewCount
		r.LikeCount = detail.LikeCount
		r.CommentCount = detail.CommentCount
	}

	if r.DurationSeconds == nil && stub.DurationText != "" {
		if v, err := timeutil.ParseClockLabel(stub.DurationText); err == nil {
			r.DurationSeconds = &v
		}
	}

	if r.ReleaseDate == nil && stub.PublishedText != "" {
		if t, ok := ParseDate(stub.PublishedText, now); ok {
			r.ReleaseDate = &t
		}
	}

	if r.ViewCount == nil && stub.ViewCountText != "" {
		if v, ok := ParseCount(stub.ViewCountText); ok {
			r.ViewCount = &v
		}
	}

	return r
}
