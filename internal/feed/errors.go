package feed

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork         = errors.New("network error")
	ErrRequestTimeout  = errors.New("request timeout")
	ErrHTTP            = errors.New("unexpected HTTP status")
	ErrInvalidResponse = errors.New("invalid response")
	ErrXMLParse        = errors.New("XML parse error")
	ErrTotalFailure    = errors.New("no feed could be fetched")
	ErrRunInProgress   = errors.New("ingestion already running")
	ErrCancelled       = errors.New("ingestion cancelled")
)

// HTTPError carries the status code of a non-200 feed response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Is lets errors.Is(err, ErrHTTP) match any HTTPError.
func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrRequestTimeout) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	return false
}
