// Package video holds the record type shared by the ingestion producer and the
// CSV consumers.
package video

import (
	"fmt"
	"sort"
	"time"
)

// Type is the classification assigned to a video.
type Type string

const (
	TypeSermon Type = "sermon"
	TypeLive   Type = "live"
)

// ParseType accepts "sermon" or "live".
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeSermon, TypeLive:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown video type %q (want %q or %q)", s, TypeSermon, TypeLive)
}

// Source records which feed or process produced a record.
type Source string

const (
	SourcePlaylist Source = "playlist"
	SourceChannel  Source = "channel"
	SourceFallback Source = "fallback"
)

// FallbackID is the placeholder video shown whenever real data is unavailable.
const FallbackID = "jNQXAC9IVRw"

// Record is one row of the interchange file.
type Record struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	PublishedAt  string `json:"publishedAt"`
	Type         Type   `json:"type"`
	Source       Source `json:"source"`
}

// Valid reports whether the required fields are present.
func (r Record) Valid() bool {
	return r.ID != "" && r.Title != ""
}

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Published parses PublishedAt. The zero time is returned for values in none
// of the accepted ISO 8601 layouts.
func (r Record) Published() time.Time {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, r.PublishedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// WatchURL returns the public YouTube link for the record.
func (r Record) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + r.ID
}

// ThumbnailURL returns the default thumbnail YouTube serves for a video ID.
func ThumbnailURL(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}

// Fallback builds the synthetic record substituted when the pipeline or a
// reader cannot produce real data.
func Fallback(title string, now time.Time) Record {
	return Record{
		ID:           FallbackID,
		Title:        title,
		ThumbnailURL: ThumbnailURL(FallbackID),
		PublishedAt:  now.UTC().Format(time.RFC3339),
		Type:         TypeSermon,
		Source:       SourceFallback,
	}
}

// SortNewestFirst orders records by PublishedAt descending. Equal timestamps
// are ordered by ID so output is deterministic; records whose timestamp does
// not parse go last.
func SortNewestFirst(records []Record) {
	keys := make([]time.Time, len(records))
	for i, r := range records {
		keys[i] = r.Published()
	}
	sort.Sort(byPublished{records: records, keys: keys})
}

type byPublished struct {
	records []Record
	keys    []time.Time
}

func (b byPublished) Len() int { return len(b.records) }

func (b byPublished) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

func (b byPublished) Less(i, j int) bool {
	ki, kj := b.keys[i], b.keys[j]
	if !ki.Equal(kj) {
		return ki.After(kj)
	}
	return b.records[i].ID < b.records[j].ID
}
