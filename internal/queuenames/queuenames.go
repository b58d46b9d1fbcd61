package queuenames

const (
	ChannelScrape = "channel_scrape"
	VideoRefresh  = "video_refresh"
)

var Priority = []string{
	VideoRefresh,
	ChannelScrape,
}
