package models

import (
	"time"

	"fknsrs.biz/p/ytsnap/internal/sqlbuilderutil"
)

var (
	VideoTable *sqlbuilderutil.Table
)

func init() {
	VideoTable = sqlbuilderutil.MustMakeTable(Video{})
}

// Video mirrors one scraped record. The nilable fields stay nil when
// the source page never yielded a value; nil and zero are different
// answers and both round-trip through the database and the JSON
// export unchanged.
type Video struct {
	ID                int `sql:",table:videos"`
	CreatedAt         time.Time
	ExternalID        string
	ChannelID         *int
	ChannelExternalID string
	Title             string
	Description       *string
	Transcript        *string
	DurationSeconds   *int
	ReleaseDate       *time.Time
	PublishedText     string
	ViewCount         *int64
	LikeCount         *int64
	CommentCount      *int64
	VideoURL          string
	Thumbnail         string

	ScrapedAt *time.Time
}
