package models

import (
	"database/sql"
	"time"

	"fknsrs.biz/p/ytsnap/internal/sqlbuilderutil"
	"fknsrs.biz/p/ytsnap/internal/sqltypes"
)

var (
	VideoSearchTable *sqlbuilderutil.Table
)

func init() {
	VideoSearchTable = sqlbuilderutil.MustMakeTable(VideoSearch{})
}

type VideoSearch struct {
	ChannelID            *int `sql:",table:video_search"`
	ChannelHandle        string
	ChannelExternalID    string
	ChannelTitle         string
	VideoID              int
	VideoCreatedAt       time.Time
	VideoExternalID      string
	VideoTitle           string
	VideoDurationSeconds *int
	VideoReleaseDate     *time.Time
	VideoPublishedText   string
	VideoViewCount       *int64
	VideoThumbnail       string
	VideoScrapedAt       *time.Time
}

func (s *VideoSearch) OverrideScan(names []string, scanners []sql.Scanner) error {
	for i, name := range names {
		switch name {
		case "VideoCreatedAt":
			scanners[i] = &sqltypes.TimeScanner{Value: &s.VideoCreatedAt}
		case "VideoReleaseDate":
			scanners[i] = &sqltypes.TimePointerScanner{Value: &s.VideoReleaseDate}
		case "VideoScrapedAt":
			scanners[i] = &sqltypes.TimePointerScanner{Value: &s.VideoScrapedAt}
		}
	}

	return nil
}
