package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDefaults(t *testing.T) {
	config := GetConfig()

	if config.Port != 8080 || config.GetAddress() != ":8080" {
		t.Errorf("unexpected port %d", config.Port)
	}
	if config.OutputPath != filepath.Join("data", "youtube-videos.csv") {
		t.Errorf("unexpected output path %s", config.OutputPath)
	}
	if config.CacheTTL != 2*time.Minute || config.FetchTimeout != 10*time.Second {
		t.Errorf("unexpected durations %+v", config)
	}
}

func TestGetConfigEnv(t *testing.T) {
	t.Setenv("SERMONFEED_PORT", "9090")
	t.Setenv("SERMONFEED_DATA_PATH", "/srv/site")
	t.Setenv("SERMONFEED_PLAYLIST_ID", "PLsermons")
	t.Setenv("SERMONFEED_CHANNEL_ID", "UCchannel")
	t.Setenv("SERMONFEED_INGEST_INTERVAL", "900")
	t.Setenv("SERMONFEED_CACHE_TTL", "30s")
	t.Setenv("SERMONFEED_LIVE_KEYWORDS", "live, revival ,")
	t.Setenv("SERMONFEED_FETCH_ATTEMPTS", "not-a-number")

	config := GetConfig()

	if config.Port != 9090 {
		t.Errorf("Port = %d", config.Port)
	}
	if config.OutputPath != filepath.Join("/srv/site", "youtube-videos.csv") {
		t.Errorf("OutputPath = %s", config.OutputPath)
	}
	if config.IngestInterval != 15*time.Minute || config.CacheTTL != 30*time.Second {
		t.Errorf("unexpected durations %s %s", config.IngestInterval, config.CacheTTL)
	}
	if !slices.Equal(config.LiveKeywords, []string{"live", "revival"}) {
		t.Errorf("LiveKeywords = %v", config.LiveKeywords)
	}
	if config.FetchAttempts != 2 {
		t.Errorf("invalid attempts should be ignored, got %d", config.FetchAttempts)
	}
	if err := config.ValidateIngest(); err != nil {
		t.Errorf("ValidateIngest() error = %v", err)
	}
}

func TestValidateIngest(t *testing.T) {
	err := Defaults().ValidateIngest()
	if err == nil {
		t.Fatal("expected error without feed IDs")
	}
	for _, want := range []string{"PLAYLIST_ID", "CHANNEL_HANDLE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}

	config := Defaults()
	config.PlaylistID = "PL"
	config.ChannelHandle = "@grace"
	if err := config.ValidateIngest(); err != nil {
		t.Errorf("handle should satisfy the channel requirement: %v", err)
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
playlist_id: PLfromfile
channel_handle: "@gracechurch"
live_keywords:
  - live
  - revival night
site:
  title: Grace Church Sermons
ingest:
  interval: 30m
  attempts: 4
  feed_base_url: https://mirror.example/feeds
log:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERMONFEED_PLAYLIST_ID", "PLfromenv")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.PlaylistID != "PLfromenv" {
		t.Errorf("environment should win over the file, got %s", config.PlaylistID)
	}
	if config.ChannelHandle != "@gracechurch" || config.SiteTitle != "Grace Church Sermons" {
		t.Errorf("file values not applied: %+v", config)
	}
	if config.IngestInterval != 30*time.Minute || config.FetchAttempts != 4 {
		t.Errorf("ingest settings not applied: %s %d", config.IngestInterval, config.FetchAttempts)
	}
	if config.FeedBaseURL != "https://mirror.example/feeds" {
		t.Errorf("FeedBaseURL = %s", config.FeedBaseURL)
	}
	if !slices.Equal(config.LiveKeywords, []string{"live", "revival night"}) {
		t.Errorf("LiveKeywords = %v", config.LiveKeywords)
	}
	if config.LogFormat != "json" || config.SettingsPath != path {
		t.Errorf("unexpected config %+v", config)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadSettings(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("ingest: [unclosed"), 0o644)
	if _, err := LoadSettings(bad); err == nil {
		t.Error("expected YAML error")
	}

	dur := filepath.Join(dir, "duration.yaml")
	os.WriteFile(dur, []byte("ingest:\n  interval: soon\n"), 0o644)
	if _, err := LoadSettings(dur); err == nil {
		t.Error("expected duration error")
	}
}
