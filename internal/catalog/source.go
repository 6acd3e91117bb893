package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"sermonfeed/internal/feed"
)

// maxCSVBytes bounds how much of a CSV response is read.
const maxCSVBytes = 10 << 20

// Source produces the raw CSV artifact.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSource reads the artifact from its public URL.
type HTTPSource struct {
	URL    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		URL:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating request: %v", feed.ErrNetwork, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %s", feed.ErrRequestTimeout, s.URL)
		}
		return nil, fmt.Errorf("%w: %v", feed.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &feed.HTTPError{StatusCode: resp.StatusCode, URL: s.URL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: error reading body: %v", feed.ErrNetwork, err)
	}
	return body, nil
}

// FileSource reads the artifact straight from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}
