package models

import (
	"time"

	"fknsrs.biz/p/ytsnap/internal/sqlbuilderutil"
)

var (
	ChannelTable *sqlbuilderutil.Table
)

func init() {
	ChannelTable = sqlbuilderutil.MustMakeTable(Channel{})
}

type Channel struct {
	ID         int `sql:",table:channels"`
	CreatedAt  time.Time
	Handle     string
	ExternalID string
	Title      string

	ScrapedAt *time.Time
}
