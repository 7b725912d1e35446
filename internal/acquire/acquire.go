// Package acquire fetches remote media bytes through an ordered fallback
// chain of pass-through proxies followed by a direct request. Media hosts
// routinely refuse plain fetches, so the proxies are tried first; the
// first strategy returning a non-empty 2xx body wins.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tiksave/backend/internal/logging"
)

// ErrExhausted indicates every strategy failed to produce a non-empty body.
var ErrExhausted = errors.New("all acquisition strategies exhausted")

const fetchUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Strategy describes one way to reach a media URL.
type Strategy struct {
	Name string
	// Endpoint is a proxy prefix; empty means a direct fetch. Endpoints
	// ending in "/" receive the raw target appended as a path suffix,
	// anything else receives the query-encoded target appended.
	Endpoint string
}

// Target returns the URL this strategy actually requests for mediaURL.
func (s Strategy) Target(mediaURL string) string {
	switch {
	case s.Endpoint == "":
		return mediaURL
	case strings.HasSuffix(s.Endpoint, "/"):
		return s.Endpoint + mediaURL
	default:
		return s.Endpoint + url.QueryEscape(mediaURL)
	}
}

// StrategiesFromEndpoints builds the ordered strategy list from proxy
// endpoint prefixes, always terminated by a direct fetch.
func StrategiesFromEndpoints(endpoints []string) []Strategy {
	strategies := make([]Strategy, 0, len(endpoints)+1)
	for _, endpoint := range endpoints {
		name := endpoint
		if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
			name = parsed.Host
		}
		strategies = append(strategies, Strategy{Name: name, Endpoint: endpoint})
	}
	return append(strategies, Strategy{Name: "direct"})
}

// Fetcher runs the fallback chain. It holds no per-URL state: repeated
// fetches of the same URL repeat the full sequence.
type Fetcher struct {
	Client     *http.Client
	Strategies []Strategy
	// MaxBytes bounds how much of a response body is read into memory;
	// larger bodies count as a failed attempt. Zero means no cap.
	MaxBytes int64
	// PerAttemptTimeout bounds each individual strategy request.
	PerAttemptTimeout time.Duration
}

// NewFetcher constructs a Fetcher over the given proxy endpoints.
func NewFetcher(endpoints []string, perAttemptTimeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		Client:            &http.Client{},
		Strategies:        StrategiesFromEndpoints(endpoints),
		MaxBytes:          maxBytes,
		PerAttemptTimeout: perAttemptTimeout,
	}
}

// outcome is the typed result of one strategy attempt.
type outcome struct {
	body []byte
	err  error
}

// Fetch tries each strategy exactly once, in order, and returns the first
// non-empty body. Strategies after the winning one are never invoked.
// When every strategy fails the returned error matches ErrExhausted and
// wraps each per-strategy failure.
func (f *Fetcher) Fetch(ctx context.Context, mediaURL string) ([]byte, error) {
	if mediaURL == "" {
		return nil, errors.New("media url is empty")
	}

	logger := logging.FromContext(ctx)

	failures := make([]error, 0, len(f.Strategies))
	for _, strategy := range f.Strategies {
		out := f.attempt(ctx, strategy, mediaURL)
		if out.err == nil {
			return out.body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug("acquisition strategy failed", "strategy", strategy.Name, "error", out.err)
		failures = append(failures, fmt.Errorf("%s: %w", strategy.Name, out.err))
	}

	return nil, errors.Join(ErrExhausted, errors.Join(failures...))
}

func (f *Fetcher) attempt(ctx context.Context, strategy Strategy, mediaURL string) outcome {
	if f.PerAttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.PerAttemptTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strategy.Target(mediaURL), nil)
	if err != nil {
		return outcome{err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "*/*")
	// No Referer and no credentials on any attempt; media hosts treat
	// referred requests differently and the proxies forward headers.

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return outcome{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return outcome{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	reader := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.MaxBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return outcome{err: fmt.Errorf("read body: %w", err)}
	}
	if f.MaxBytes > 0 && int64(len(body)) > f.MaxBytes {
		return outcome{err: fmt.Errorf("body exceeds %d byte cap", f.MaxBytes)}
	}
	if len(body) == 0 {
		return outcome{err: errors.New("empty body")}
	}

	return outcome{body: body}
}
