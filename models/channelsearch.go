package models

import (
	"database/sql"
	"time"

	"fknsrs.biz/p/ytsnap/internal/sqlbuilderutil"
	"fknsrs.biz/p/ytsnap/internal/sqltypes"
)

var (
	ChannelSearchTable *sqlbuilderutil.Table
)

func init() {
	ChannelSearchTable = sqlbuilderutil.MustMakeTable(ChannelSearch{})
}

type ChannelSearch struct {
	ChannelID         int `sql:",table:channel_search"`
	ChannelCreatedAt  time.Time
	ChannelHandle     string
	ChannelExternalID string
	ChannelTitle      string
	ChannelScrapedAt  *time.Time
}

func (s *ChannelSearch) OverrideScan(names []string, scanners []sql.Scanner) error {
	for i, name := range names {
		switch name {
		case "ChannelCreatedAt":
			scanners[i] = &sqltypes.TimeScanner{Value: &s.ChannelCreatedAt}
		case "ChannelScrapedAt":
			scanners[i] = &sqltypes.TimePointerScanner{Value: &s.ChannelScrapedAt}
		}
	}

	return nil
}
