package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"sermonfeed/internal/security/netutil"
)

const (
	youtubeFeedBase = "https://www.youtube.com/feeds/videos.xml"

	// Feeds list at most 15 entries; anything near this size is not a feed.
	maxFeedBytes = 5 << 20

	// Only the start of the body is inspected for the XML prolog.
	prologWindow = 1024
)

// PlaylistFeedURL is the Atom feed of a playlist. An empty base means
// YouTube's feed endpoint.
func PlaylistFeedURL(base, playlistID string) string {
	return feedURL(base, "playlist_id", playlistID)
}

// ChannelFeedURL is the Atom feed of a channel's uploads.
func ChannelFeedURL(base, channelID string) string {
	return feedURL(base, "channel_id", channelID)
}

func feedURL(base, param, id string) string {
	if base == "" {
		base = youtubeFeedBase
	}
	return base + "?" + param + "=" + url.QueryEscape(id)
}

// FetcherConfig tunes a Fetcher.
type FetcherConfig struct {
	Timeout   time.Duration // per attempt
	Attempts  int
	Backoff   time.Duration // multiplied by the attempt number
	Rate      rate.Limit
	Burst     int
	UserAgent string

	// BlockPrivateNetworks refuses connections to loopback and private
	// addresses.
	BlockPrivateNetworks bool
}

// DefaultFetcherConfig returns the production settings.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:   10 * time.Second,
		Attempts:  2,
		Backoff:   time.Second,
		Rate:      4,
		Burst:     2,
		UserAgent: "sermonfeed/dev",
	}
}

// Fetcher downloads raw feed documents.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     FetcherConfig
	logger  *log.Logger
}

func NewFetcher(cfg FetcherConfig, logger *log.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	dialer := &net.Dialer{Timeout: cfg.Timeout, KeepAlive: 30 * time.Second}
	if cfg.BlockPrivateNetworks {
		dialer.Control = netutil.PublicOnlyControl
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		TLSHandshakeTimeout:   cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{Transport: transport, CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		}},
		limiter: rate.NewLimiter(cfg.Rate, cfg.Burst),
		cfg:     cfg,
		logger:  logger,
	}
}

// Fetch returns the body of feedURL. Transient failures (network errors,
// timeouts, 429 and 5xx) are retried up to the configured number of attempts.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.Attempts; attempt++ {
		body, err := f.fetchOnce(ctx, feedURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || attempt == f.cfg.Attempts || ctx.Err() != nil {
			break
		}

		wait := f.cfg.Backoff * time.Duration(attempt)
		f.logger.Warn("feed fetch failed, retrying", "url", feedURL, "attempt", attempt, "wait", wait, "err", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, feedURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.transportError(ctx, attemptCtx, feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: feedURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, f.transportError(ctx, attemptCtx, feedURL, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body from %s", ErrInvalidResponse, feedURL)
	}
	head := body[:min(len(body), prologWindow)]
	if !bytes.Contains(head, []byte("<?xml")) {
		return nil, fmt.Errorf("%w: %s did not return an XML document", ErrInvalidResponse, feedURL)
	}
	return body, nil
}

// transportError classifies a failure from the client or the body read.
func (f *Fetcher) transportError(parent, attemptCtx context.Context, feedURL string, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%w: %s: %v", ErrNetwork, feedURL, err)
	}
	var netErr net.Error
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w after %s: %s", ErrRequestTimeout, f.cfg.Timeout, feedURL)
	}
	return fmt.Errorf("%w: %s: %v", ErrNetwork, feedURL, err)
}
