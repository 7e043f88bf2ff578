package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-match/internal/resilience"
)

// DefaultUserAgent is a desktop browser user agent; many small business sites
// refuse obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// LocalFetcher fetches HTML via net/http and rejects blocked or failed pages.
type LocalFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// FetcherOptions configures a LocalFetcher. Zero values take defaults.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
	MaxBodyKB int
}

// NewLocalFetcher creates a LocalFetcher.
func NewLocalFetcher(opts FetcherOptions) *LocalFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyKB <= 0 {
		opts.MaxBodyKB = 1024
	}
	return &LocalFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
			},
		},
		userAgent: opts.UserAgent,
		maxBody:   int64(opts.MaxBodyKB) * 1024,
	}
}

// Fetch downloads a URL. Blocked pages, error statuses and empty bodies fail.
func (l *LocalFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		wrapped := eris.Wrap(err, "local_http: fetch")
		if resilience.IsTransient(err) {
			return nil, resilience.Transient(wrapped, 0)
		}
		return nil, wrapped
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		err := eris.Errorf("local_http: status %d", resp.StatusCode)
		if resilience.IsTransientStatus(resp.StatusCode) {
			return nil, resilience.Transient(err, resp.StatusCode)
		}
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, eris.New("local_http: empty page")
	}

	return &Page{URL: targetURL, StatusCode: resp.StatusCode, Body: body}, nil
}
