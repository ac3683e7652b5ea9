// Package fetch downloads spreadsheet exports and caches their parsed results.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 32 << 20
	userAgent       = "sheetdash/1.0"
)

// Response is a downloaded export.
type Response struct {
	URL         string
	ContentType string
	Data        []byte
}

// HostLimiter rate limits requests per export host.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewHostLimiter creates a per-host limiter. A zero rate disables limiting.
func NewHostLimiter(r rate.Limit, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

// Wait blocks until a request to the URL's host is allowed.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if h == nil || h.rate == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return &url.Error{Op: "parse", URL: rawURL, Err: errors.New("missing host in URL")}
	}
	return h.limiter(u.Host).Wait(ctx)
}

func (h *HostLimiter) limiter(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(h.rate, h.burst)
	h.limiters[host] = l
	return l
}

// Fetcher performs export downloads.
type Fetcher struct {
	client   *http.Client
	limiter  *HostLimiter
	maxBytes int64
	logger   *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.client = &http.Client{Timeout: d} }
}

// WithRateLimit limits requests per host.
func WithRateLimit(r rate.Limit, burst int) FetcherOption {
	return func(f *Fetcher) { f.limiter = NewHostLimiter(r, burst) }
}

// WithMaxBytes caps the size of a downloaded export.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithFetchLogger sets the logger.
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		maxBytes: defaultMaxBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL. Transport failures and non-2xx responses are
// returned as *sheetdash.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		RecordFetch("error")
		return nil, sheetdash.NewFetchError(rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		RecordFetch("error")
		return nil, sheetdash.NewFetchError(rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		RecordFetch("error")
		return nil, sheetdash.NewFetchError(rawURL, err)
	}
	defer resp.Body.Close()

	RecordFetch(strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("export fetch failed", "url", rawURL, "status", resp.StatusCode)
		return nil, sheetdash.NewStatusError(rawURL, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, sheetdash.NewFetchError(rawURL, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, sheetdash.NewFetchError(rawURL, fmt.Errorf("export larger than %d bytes", f.maxBytes))
	}

	f.logger.Debug("export fetched", "url", rawURL, "bytes", len(data), "duration", time.Since(start))
	return &Response{
		URL:         rawURL,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
