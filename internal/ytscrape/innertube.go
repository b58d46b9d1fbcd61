package ytscrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// The watch page carries the configuration its own scripts use to
// call the internal API. Deriving the key and client version from the
// page is inherently fragile; every caller treats these requests as
// best effort and absorbs failure silently.
var (
	apiKeyPattern        = regexp.MustCompile(`"INNERTUBE_API_KEY"\s*:\s*"([^"]+)"`)
	clientVersionPattern = regexp.MustCompile(`"INNERTUBE_CLIENT_VERSION"\s*:\s*"([^"]+)"`)
)

type pageConfig struct {
	APIKey        string
	ClientVersion string
}

func extractPageConfig(html string) (pageConfig, bool) {
	key := apiKeyPattern.FindStringSubmatch(html)
	version := clientVersionPattern.FindStringSubmatch(html)

	if key == nil || version == nil {
		return pageConfig{}, false
	}

	return pageConfig{APIKey: key[1], ClientVersion: version[1]}, true
}

func innertubeBody(cfg pageConfig, videoID string) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"context": map[string]interface{}{
			"client": map[string]interface{}{
				"clientName":    "WEB",
				"clientVersion": cfg.ClientVersion,
				"hl":            "en",
				"gl":            "US",
			},
		},
		"videoId": videoID,
	})
}

func callInnertube(ctx context.Context, opts Options, html, endpoint, videoID string) (string, error) {
	cfg, ok := extractPageConfig(html)
	if !ok {
		return "", fmt.Errorf("ytscrape.callInnertube: could not derive api key and client version from page")
	}

	body, err := innertubeBody(cfg, videoID)
	if err != nil {
		return "", fmt.Errorf("ytscrape.callInnertube: %w", err)
	}

	res, err := postJSON(ctx, opts, opts.BaseURL+"/youtubei/v1/"+endpoint+"?key="+cfg.APIKey, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ytscrape.callInnertube: %w", err)
	}

	return res, nil
}

// fetchNextBody performs the secondary "next" call whose response is
// scanned for a comment count when the page itself yields none.
func fetchNextBody(ctx context.Context, opts Options, html, videoID string) (string, error) {
	return callInnertube(ctx, opts, html, "next", videoID)
}

// fetchPlayerDescription re-derives a description from a "player"
// call when the embedded blobs carried none.
func fetchPlayerDescription(ctx context.Context, opts Options, html, videoID string) (string, bool) {
	res, err := callInnertube(ctx, opts, html, "player", videoID)
	if err != nil {
		return "", false
	}

	var root interface{}
	if err := json.Unmarshal([]byte(res), &root); err != nil {
		return "", false
	}

	if m, ok := root.(map[string]interface{}); ok {
		if details, ok := m["videoDetails"].(map[string]interface{}); ok {
			if s, ok := details["shortDescription"].(string); ok && s != "" {
				return s, true
			}
		}
	}

	return "", false
}
