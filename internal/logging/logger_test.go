package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("classified videos", "sermons", 3, "live", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "classified videos" || entry["sermons"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected timestamp")
	}
}

func TestNewLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "DEBUG", "logfmt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("fetching feed", "url", "https://example.com")

	if !strings.Contains(buf.String(), `msg="fetching feed"`) {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
