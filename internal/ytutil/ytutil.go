package ytutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,30}$`)

// ExtractChannelHandle accepts either a bare "@handle" or a channel
// url like https://www.youtube.com/@handle[/videos] and returns the
// handle without the leading "@". Anything else is rejected before any
// network traffic happens.
func ExtractChannelHandle(urlOrHandle string) (string, error) {
	s := strings.TrimSpace(urlOrHandle)
	if s == "" {
		return "", fmt.Errorf("ytutil.ExtractChannelHandle: empty input")
	}

	if strings.HasPrefix(s, "@") {
		return validateHandle(strings.TrimPrefix(s, "@"))
	}

	parsed, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("ytutil.ExtractChannelHandle: could not parse input as url: %w", err)
	}

	if parsed.Host != "www.youtube.com" && parsed.Host != "youtube.com" && parsed.Host != "m.youtube.com" {
		return "", fmt.Errorf("ytutil.ExtractChannelHandle: host %q is not a known youtube host", parsed.Host)
	}

	segment := strings.TrimPrefix(parsed.Path, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}

	if !strings.HasPrefix(segment, "@") {
		return "", fmt.Errorf("ytutil.ExtractChannelHandle: could not find an @handle segment in path %q", parsed.Path)
	}

	return validateHandle(strings.TrimPrefix(segment, "@"))
}

func validateHandle(handle string) (string, error) {
	if !handlePattern.MatchString(handle) {
		return "", fmt.Errorf("ytutil.validateHandle: %q is not a valid handle", handle)
	}

	return handle, nil
}

// ExtractVideoID accepts a bare 11-character id, a youtube.com/watch
// url, or a youtu.be short url.
func ExtractVideoID(urlOrID string) (string, error) {
	if len(urlOrID) == 11 && !strings.ContainsAny(urlOrID, "/:.?") {
		return urlOrID, nil
	}

	parsed, err := url.Parse(urlOrID)
	if err != nil {
		return "", fmt.Errorf("ytutil.ExtractVideoID: %w", err)
	}

	if (parsed.Host == "www.youtube.com" || parsed.Host == "youtube.com") && parsed.Path == "/watch" {
		if id := parsed.Query().Get("v"); id != "" {
			if len(id) != 11 {
				return "", fmt.Errorf("ytutil.ExtractVideoID: invalid video id for v parameter; length should be 11")
			}

			return id, nil
		}

		return "", fmt.Errorf("ytutil.ExtractVideoID: no v query parameter in youtube.com url")
	}

	if parsed.Host == "youtu.be" {
		if id := strings.TrimPrefix(parsed.Path, "/"); id != "" {
			if len(id) != 11 {
				return "", fmt.Errorf("ytutil.ExtractVideoID: invalid video id for youtu.be url; length should be 11")
			}

			return id, nil
		}

		return "", fmt.Errorf("ytutil.ExtractVideoID: no path content found in youtu.be url")
	}

	return "", fmt.Errorf("ytutil.ExtractVideoID: invalid url or id; could not find a known pattern")
}
