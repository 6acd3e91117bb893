package video

import (
	"testing"
	"time"
)

func TestSortNewestFirst(t *testing.T) {
	records := []Record{
		{ID: "jan", Title: "January", PublishedAt: "2024-01-01"},
		{ID: "mar", Title: "March", PublishedAt: "2024-03-01"},
		{ID: "feb", Title: "February", PublishedAt: "2024-02-01"},
	}

	SortNewestFirst(records)

	want := []string{"mar", "feb", "jan"}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, records[i].ID)
		}
	}
}

func TestSortNewestFirstTieBreak(t *testing.T) {
	records := []Record{
		{ID: "b", Title: "B", PublishedAt: "2024-05-05T10:00:00Z"},
		{ID: "bad", Title: "Bad date", PublishedAt: "yesterday"},
		{ID: "a", Title: "A", PublishedAt: "2024-05-05T10:00:00Z"},
		{ID: "c", Title: "C", PublishedAt: "2024-05-05T12:00:00+02:00"},
	}

	SortNewestFirst(records)

	// 12:00+02:00 is 10:00Z, so all three share an instant and fall back to ID order.
	want := []string{"a", "b", "c", "bad"}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, records[i].ID)
		}
	}
}

func TestFallback(t *testing.T) {
	now := time.Date(2025, 3, 9, 8, 30, 0, 0, time.FixedZone("EAT", 3*3600))
	r := Fallback("Videos unavailable", now)

	if r.ID != FallbackID {
		t.Errorf("expected ID %s, got %s", FallbackID, r.ID)
	}
	if r.Type != TypeSermon || r.Source != SourceFallback {
		t.Errorf("expected sermon/fallback, got %s/%s", r.Type, r.Source)
	}
	if r.PublishedAt != "2025-03-09T05:30:00Z" {
		t.Errorf("unexpected PublishedAt %q", r.PublishedAt)
	}
	if r.ThumbnailURL != ThumbnailURL(FallbackID) {
		t.Errorf("unexpected thumbnail %q", r.ThumbnailURL)
	}
	if !r.Valid() {
		t.Error("fallback record should be valid")
	}
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"sermon", "live"} {
		if _, err := ParseType(s); err != nil {
			t.Errorf("ParseType(%q) error = %v", s, err)
		}
	}
	if _, err := ParseType("podcast"); err == nil {
		t.Error("expected error for unknown type")
	}
}
