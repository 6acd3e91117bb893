package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// ErrChannelNotFound is returned when a channel page carries no channel ID.
var ErrChannelNotFound = errors.New("channel ID not found")

// ChannelPageURL turns "@handle" into the channel page URL. Anything that
// already looks like a URL is returned unchanged.
func ChannelPageURL(handle string) string {
	handle = strings.TrimSpace(handle)
	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		return handle
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return "https://www.youtube.com/" + handle
}

// ResolveChannelID loads a channel page and extracts its "UC..." channel ID.
func (f *Fetcher) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	pageURL := ChannelPageURL(handle)
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: error creating request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	// Skips the cookie consent interstitial served to EU clients.
	req.AddCookie(&http.Cookie{Name: "CONSENT", Value: "YES+1"})

	resp, err := f.client.Do(req)
	if err != nil {
		return "", f.transportError(ctx, reqCtx, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if id := findChannelID(doc); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", ErrChannelNotFound, pageURL)
}

func findChannelID(n *html.Node) string {
	if n.Type == html.ElementNode {
		attrs := map[string]string{}
		for _, a := range n.Attr {
			attrs[strings.ToLower(a.Key)] = a.Val
		}
		switch n.Data {
		case "meta":
			if attrs["itemprop"] == "channelId" || attrs["itemprop"] == "identifier" {
				if id := strings.TrimSpace(attrs["content"]); isChannelID(id) {
					return id
				}
			}
			if attrs["property"] == "og:url" {
				if id := channelIDFromURL(attrs["content"]); id != "" {
					return id
				}
			}
		case "link":
			if attrs["rel"] == "canonical" {
				if id := channelIDFromURL(attrs["href"]); id != "" {
					return id
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if id := findChannelID(c); id != "" {
			return id
		}
	}
	return ""
}

func channelIDFromURL(u string) string {
	_, rest, ok := strings.Cut(u, "/channel/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	id, _, _ = strings.Cut(id, "?")
	if isChannelID(id) {
		return id
	}
	return ""
}

func isChannelID(id string) bool {
	return len(id) == 24 && strings.HasPrefix(id, "UC")
}
