package ytscrape

import (
	"context"
	"encoding/xml"
	"html"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

type timedTextDocument struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTranscript fetches a video's first English caption track (or
// the first track of any language when no English one exists) and
// flattens it to plain text. nil when no track is listed or the fetch
// or parse fails; captions are public for some videos only.
func fetchTranscript(ctx context.Context, opts Options, player *gabs.Container) *string {
	track := pickCaptionTrack(player)
	if track == "" {
		return nil
	}

	body, err := fetchPage(ctx, opts, track)
	if err != nil {
		return nil
	}

	var doc timedTextDocument
	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return nil
	}

	var parts []string

	for _, t := range doc.Texts {
		if s := strings.TrimSpace(html.UnescapeString(t.Value)); s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		return nil
	}

	joined := strings.Join(parts, " ")

	return &joined
}

func pickCaptionTrack(player *gabs.Container) string {
	tracks := player.Path("captions.playerCaptionsTracklistRenderer.captionTracks").Children()
	if len(tracks) == 0 {
		return ""
	}

	for _, track := range tracks {
		if code, _ := track.Path("languageCode").Data().(string); strings.HasPrefix(code, "en") {
			if u, _ := track.Path("baseUrl").Data().(string); u != "" {
				return u
			}
		}
	}

	u, _ := tracks[0].Path("baseUrl").Data().(string)

	return u
}
