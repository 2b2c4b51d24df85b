package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxFetchSize bounds downloaded templates and chat attachments.
const maxFetchSize = 50 << 20

// HTTPFetcher downloads raw bytes over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url. Any failure is a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Err: err}
	}
	if len(body) > maxFetchSize {
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("body exceeds %d bytes", maxFetchSize)}
	}
	return body, nil
}
