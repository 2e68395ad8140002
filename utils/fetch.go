// fotohub/utils/fetch.go
package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// FetchURL downloads an image from a remote URL, enforcing a byte cap and a
// timeout. It returns the body and the filename derived from the URL path.
// Any transport error, timeout, or non-2xx status is returned as a single
// error the caller can surface as a form-level validation failure.
func FetchURL(ctx context.Context, rawURL string, maxBytes int64, timeout time.Duration) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, "", fmt.Errorf("invalid URL")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image from URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("failed to fetch image from URL: status %d", resp.StatusCode)
	}

	limited := &io.LimitedReader{R: resp.Body, N: maxBytes + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image from URL: %w", err)
	}
	if limited.N == 0 {
		return nil, "", fmt.Errorf("remote file is larger than the %dMB limit", maxBytes/1024/1024)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("remote file is empty")
	}

	return data, path.Base(parsed.Path), nil
}
