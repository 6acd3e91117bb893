package rss

import (
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"sermonfeed/internal/video"
)

// AtomNS is the namespace for the atom:link self reference.
const AtomNS = "http://www.w3.org/2005/Atom"

// RSS is the root element of an RSS feed.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Atom    string   `xml:"xmlns:atom,attr,omitempty"`
	Channel Channel  `xml:"channel"`
}

// Channel represents the channel element in an RSS feed.
type Channel struct {
	XMLName       xml.Name  `xml:"channel"`
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"` // RFC1123Z
	SelfLink      *AtomLink `xml:"atom:link,omitempty"`
	Items         []Item    `xml:"item"`
}

// AtomLink is the atom:link element pointing at the feed itself.
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// Item represents an item element in an RSS feed.
type Item struct {
	XMLName     xml.Name   `xml:"item"`
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description,omitempty"`
	PubDate     string     `xml:"pubDate,omitempty"` // RFC1123Z
	GUID        *GUID      `xml:"guid,omitempty"`
	Category    string     `xml:"category,omitempty"`
	Enclosure   *Enclosure `xml:"enclosure,omitempty"`
}

// GUID is the item's unique identifier.
type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// Enclosure carries the video thumbnail.
type Enclosure struct {
	URL    string `xml:"url,attr"`
	Length int    `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// FeedInfo describes the channel a feed is built for.
type FeedInfo struct {
	Title       string
	Link        string
	SelfURL     string
	Description string
	Language    string
}

// Build renders records as an RSS 2.0 document. Records without a parseable
// publish time are emitted without a pubDate.
func Build(info FeedInfo, records []video.Record, now time.Time) ([]byte, error) {
	channel := Channel{
		Title:         info.Title,
		Link:          info.Link,
		Description:   info.Description,
		Language:      info.Language,
		LastBuildDate: now.UTC().Format(time.RFC1123Z),
	}
	if info.SelfURL != "" {
		channel.SelfLink = &AtomLink{Href: info.SelfURL, Rel: "self", Type: "application/rss+xml"}
	}

	for _, r := range records {
		item := Item{
			Title:    r.Title,
			Link:     r.WatchURL(),
			GUID:     &GUID{Value: "yt:video:" + r.ID},
			Category: string(r.Type),
		}
		if r.ThumbnailURL != "" {
			item.Description = fmt.Sprintf(`<img src="%s" alt="%s">`,
				html.EscapeString(r.ThumbnailURL), html.EscapeString(r.Title))
			item.Enclosure = &Enclosure{URL: r.ThumbnailURL, Type: "image/jpeg"}
		}
		if t := r.Published(); !t.IsZero() {
			item.PubDate = t.UTC().Format(time.RFC1123Z)
		}
		channel.Items = append(channel.Items, item)
	}

	doc := RSS{Version: "2.0", Atom: AtomNS, Channel: channel}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding rss: %w", err)
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.Write(out)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}
