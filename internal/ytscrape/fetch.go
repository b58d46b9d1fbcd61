package ytscrape

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"fknsrs.biz/p/ytsnap/internal/ctxhttpclient"
)

func fetchPage(ctx context.Context, opts Options, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("ytscrape.fetchPage: %w", err)
	}

	req.Header.Set("user-agent", opts.UserAgent)
	req.Header.Set("accept-language", opts.AcceptLanguage)

	res, err := ctxhttpclient.GetHTTPClient(ctx).Do(req)
	if err != nil {
		return "", fmt.Errorf("ytscrape.fetchPage: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ytscrape.fetchPage: status code: %d", res.StatusCode)
	}

	d, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("ytscrape.fetchPage: could not read response: %w", err)
	}

	return string(d), nil
}

func postJSON(ctx context.Context, opts Options, url string, body io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("ytscrape.postJSON: %w", err)
	}

	req.Header.Set("user-agent", opts.UserAgent)
	req.Header.Set("accept-language", opts.AcceptLanguage)
	req.Header.Set("content-type", "application/json")

	res, err := ctxhttpclient.GetHTTPClient(ctx).Do(req)
	if err != nil {
		return "", fmt.Errorf("ytscrape.postJSON: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ytscrape.postJSON: status code: %d", res.StatusCode)
	}

	d, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("ytscrape.postJSON: could not read response: %w", err)
	}

	return string(d), nil
}
