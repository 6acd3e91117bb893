package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the optional YAML settings file.
type Settings struct {
	PlaylistID    string   `yaml:"playlist_id"`
	ChannelID     string   `yaml:"channel_id"`
	ChannelHandle string   `yaml:"channel_handle"`
	OutputPath    string   `yaml:"output_path"`
	CSVURL        string   `yaml:"csv_url"`
	LiveKeywords  []string `yaml:"live_keywords"`
	Site          struct {
		Title string `yaml:"title"`
		URL   string `yaml:"url"`
	} `yaml:"site"`
	Ingest struct {
		Interval string `yaml:"interval"`
		Timeout  string `yaml:"timeout"`
		Attempts int    `yaml:"attempts"`
		FeedBase string `yaml:"feed_base_url"`
	} `yaml:"ingest"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadSettings reads and parses a settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	for name, v := range map[string]string{"ingest.interval": settings.Ingest.Interval, "ingest.timeout": settings.Ingest.Timeout} {
		if v == "" {
			continue
		}
		if _, ok := parseDuration(v); !ok {
			return nil, fmt.Errorf("invalid duration for %s: %q", name, v)
		}
	}

	return &settings, nil
}

// Apply copies every non-empty setting into config.
func (s *Settings) Apply(config *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.PlaylistID, s.PlaylistID)
	set(&config.ChannelID, s.ChannelID)
	set(&config.ChannelHandle, s.ChannelHandle)
	set(&config.OutputPath, s.OutputPath)
	set(&config.CSVURL, s.CSVURL)
	set(&config.SiteTitle, s.Site.Title)
	set(&config.SiteURL, s.Site.URL)
	set(&config.LogLevel, s.Log.Level)
	set(&config.LogFormat, s.Log.Format)
	set(&config.FeedBaseURL, s.Ingest.FeedBase)

	if len(s.LiveKeywords) > 0 {
		config.LiveKeywords = append([]string(nil), s.LiveKeywords...)
	}
	if d, ok := parseDuration(s.Ingest.Interval); ok {
		config.IngestInterval = d
	}
	if d, ok := parseDuration(s.Ingest.Timeout); ok {
		config.FetchTimeout = d
	}
	if s.Ingest.Attempts > 0 {
		config.FetchAttempts = s.Ingest.Attempts
	}
}
