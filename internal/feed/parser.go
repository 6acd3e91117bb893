package feed

import (
	"bytes"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"sermonfeed/internal/video"
)

// Entry is the minimal view of a feed entry the classifier works with.
type Entry struct {
	ID           string
	Title        string
	PublishedAt  string
	ThumbnailURL string
}

// Parse reads a YouTube Atom document. The returned sequence skips entries
// without a video ID or title.
func Parse(raw []byte) (iter.Seq[Entry], error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrXMLParse, err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("%w: empty document", ErrXMLParse)
	}

	return func(yield func(Entry) bool) {
		for _, item := range parsed.Items {
			e, ok := entryFromItem(item)
			if !ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}, nil
}

func entryFromItem(item *gofeed.Item) (Entry, bool) {
	if item == nil {
		return Entry{}, false
	}
	e := Entry{
		ID:    videoID(item),
		Title: strings.TrimSpace(item.Title),
	}
	if e.ID == "" || e.Title == "" {
		return Entry{}, false
	}

	switch {
	case item.PublishedParsed != nil:
		e.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.Published != "":
		e.PublishedAt = strings.TrimSpace(item.Published)
	case item.UpdatedParsed != nil:
		e.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	e.ThumbnailURL = thumbnail(item)
	if e.ThumbnailURL == "" {
		e.ThumbnailURL = video.ThumbnailURL(e.ID)
	}
	return e, true
}

// videoID prefers the yt:videoId element, then the "yt:video:<id>" entry ID,
// then the watch link.
func videoID(item *gofeed.Item) string {
	if v := extensionValue(item.Extensions, "yt", "videoId"); v != "" {
		return v
	}
	if id, ok := strings.CutPrefix(strings.TrimSpace(item.GUID), "yt:video:"); ok && id != "" {
		return id
	}
	return videoIDFromLink(item.Link)
}

func videoIDFromLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	for _, prefix := range []string{"/shorts/", "/live/"} {
		if id, ok := strings.CutPrefix(u.Path, prefix); ok {
			return strings.Trim(id, "/")
		}
	}
	return ""
}

func thumbnail(item *gofeed.Item) string {
	for _, group := range item.Extensions["media"]["group"] {
		for _, thumb := range group.Children["thumbnail"] {
			if u := strings.TrimSpace(thumb.Attrs["url"]); u != "" {
				return u
			}
		}
	}
	if item.Image != nil {
		return strings.TrimSpace(item.Image.URL)
	}
	return ""
}

func extensionValue(exts ext.Extensions, namespace, name string) string {
	for _, e := range exts[namespace][name] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}
