package source

import (
	"context"
	"fmt"
	"net/http"

	"internwatch/internal/model"
)

const userAgent = "internwatch/1.0 (+local)"

// get performs a GET with the watcher's user-agent and returns the response.
// Non-2xx statuses are closed and returned as *model.HTTPError so callers can
// log transport failures distinctly from parse failures.
func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &model.HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return resp, nil
}
