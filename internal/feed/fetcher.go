package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/mmcdole/gofeed"
)

const (
	DefaultUserAgent = "NewsMan/0.1.0"
	DefaultTimeout   = 10 * time.Second
)

// Fetcher downloads and parses one feed at a time.
type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		parser:    gofeed.NewParser(),
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the raw entries of src. Failures are reported as
// *apperr.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, src domain.FeedSource) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, URL: src.URL, Kind: apperr.FetchNetwork, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, URL: src.URL, Kind: apperr.FetchNetwork, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.FetchError{
			Source:     src.Name,
			URL:        src.URL,
			Kind:       apperr.FetchStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %s", resp.Status),
		}
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, URL: src.URL, Kind: apperr.FetchParse, Err: err}
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, EntryFromItem(item))
	}
	return entries, nil
}
