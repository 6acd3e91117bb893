package feed

import (
	"iter"
	"strings"

	"sermonfeed/internal/video"
)

// DefaultLiveKeywords mark a channel upload as a live stream.
var DefaultLiveKeywords = []string{
	"live",
	"stream",
	"streaming",
	"broadcast",
	"broadcasting",
	"sunday service",
	"worship service",
	"church service",
	"online service",
	"virtual service",
	"Focus on Jesus",
	"የእሁድ አገልግሎት",
}

// KeywordMatcher does case-insensitive substring matching against titles.
type KeywordMatcher struct {
	keywords []string
}

// NewKeywordMatcher lowercases and keeps the non-empty keywords.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	m := &KeywordMatcher{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			m.keywords = append(m.keywords, k)
		}
	}
	return m
}

// Match reports whether title contains any keyword.
func (m *KeywordMatcher) Match(title string) bool {
	title = strings.ToLower(title)
	for _, k := range m.keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}

// Keywords returns the normalised keyword list.
func (m *KeywordMatcher) Keywords() []string {
	return append([]string(nil), m.keywords...)
}

// IDSet is a set of video IDs.
type IDSet map[string]struct{}

// IDs collects the IDs of records.
func IDs(records []video.Record) IDSet {
	set := make(IDSet, len(records))
	for _, r := range records {
		set[r.ID] = struct{}{}
	}
	return set
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sermons tags every playlist entry as a sermon. Repeated IDs keep their
// first occurrence.
func Sermons(entries iter.Seq[Entry]) []video.Record {
	var out []video.Record
	seen := IDSet{}
	if entries == nil {
		return out
	}
	for e := range entries {
		if seen.Has(e.ID) {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, record(e, video.TypeSermon, video.SourcePlaylist))
	}
	return out
}

// LiveStreams keeps the channel entries that are not in exclude and whose
// title matches a live keyword. Playlist membership always wins over the
// title.
func LiveStreams(entries iter.Seq[Entry], exclude IDSet, m *KeywordMatcher) []video.Record {
	var out []video.Record
	seen := IDSet{}
	if entries == nil {
		return out
	}
	for e := range entries {
		if exclude.Has(e.ID) || seen.Has(e.ID) || !m.Match(e.Title) {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, record(e, video.TypeLive, video.SourceChannel))
	}
	return out
}

func record(e Entry, typ video.Type, src video.Source) video.Record {
	return video.Record{
		ID:           e.ID,
		Title:        e.Title,
		ThumbnailURL: e.ThumbnailURL,
		PublishedAt:  e.PublishedAt,
		Type:         typ,
		Source:       src,
	}
}
