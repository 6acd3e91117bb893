package rss

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"sermonfeed/internal/video"
)

func TestBuildParsesBack(t *testing.T) {
	records := []video.Record{
		{
			ID:           "sermon02",
			Title:        `He said "Go" today, now & then`,
			ThumbnailURL: "https://i.ytimg.com/vi/sermon02/hqdefault.jpg",
			PublishedAt:  "2024-03-03T10:00:00Z",
			Type:         video.TypeSermon,
			Source:       video.SourcePlaylist,
		},
		{
			ID:          "sermon01",
			Title:       "Undated",
			PublishedAt: "yesterday",
			Type:        video.TypeSermon,
			Source:      video.SourcePlaylist,
		},
	}
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	out, err := Build(FeedInfo{
		Title:   "Sermons",
		Link:    "https://church.example",
		SelfURL: "https://church.example/rss/sermons.xml",
	}, records, now)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "<?xml") {
		t.Error("missing XML header")
	}
	if !strings.Contains(string(out), `rel="self"`) {
		t.Error("missing atom self link")
	}

	parsed, err := gofeed.NewParser().ParseString(string(out))
	if err != nil {
		t.Fatalf("generated feed does not parse: %v", err)
	}
	if parsed.FeedType != "rss" || parsed.Title != "Sermons" {
		t.Errorf("unexpected feed %s %q", parsed.FeedType, parsed.Title)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(parsed.Items))
	}

	first := parsed.Items[0]
	if first.Title != records[0].Title {
		t.Errorf("title = %q", first.Title)
	}
	if first.Link != "https://www.youtube.com/watch?v=sermon02" {
		t.Errorf("link = %q", first.Link)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(records[0].Published()) {
		t.Errorf("published = %v", first.PublishedParsed)
	}
	if parsed.Items[1].Published != "" {
		t.Errorf("undated record should have no pubDate, got %q", parsed.Items[1].Published)
	}
}

func TestBuildEmpty(t *testing.T) {
	out, err := Build(FeedInfo{Title: "Live"}, nil, time.Now())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if strings.Contains(string(out), "<item>") {
		t.Error("expected no items")
	}
}
