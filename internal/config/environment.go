// Save as: internal/config/environment.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "SERMONFEED_"

type Config struct {
	Port         int
	DBPath       string
	DataPath     string
	OutputPath   string
	CSVURL       string
	SettingsPath string

	PlaylistID    string
	ChannelID     string
	ChannelHandle string
	LiveKeywords  []string
	FeedBaseURL   string // empty means YouTube

	IngestInterval time.Duration
	CacheTTL       time.Duration
	FetchTimeout   time.Duration
	FetchAttempts  int

	LogLevel  string
	LogFormat string

	AdminTokenHash string
	SiteTitle      string
	SiteURL        string
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Port:           8080, // default port
		DBPath:         "data/sermonfeed.db",
		DataPath:       "data",
		OutputPath:     filepath.Join("data", "youtube-videos.csv"),
		IngestInterval: time.Hour,
		CacheTTL:       2 * time.Minute,
		FetchTimeout:   10 * time.Second,
		FetchAttempts:  2,
		LogLevel:       "info",
		LogFormat:      "text",
		SiteTitle:      "Sermons",
		SiteURL:        "http://localhost:8080",
	}
}

// GetConfig returns the defaults overridden by environment variables.
func GetConfig() Config {
	config := Defaults()
	applyEnv(&config, os.Getenv)
	return config
}

// Load builds the configuration from defaults, the optional settings file and
// the environment, in increasing order of precedence. settingsPath may be
// empty, in which case SERMONFEED_SETTINGS is consulted.
func Load(settingsPath string) (Config, error) {
	config := Defaults()
	if settingsPath == "" {
		settingsPath = os.Getenv(envPrefix + "SETTINGS")
	}
	if settingsPath != "" {
		settings, err := LoadSettings(settingsPath)
		if err != nil {
			return config, err
		}
		settings.Apply(&config)
		config.SettingsPath = settingsPath
	}
	applyEnv(&config, os.Getenv)
	return config, nil
}

func applyEnv(config *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(envPrefix + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := getenv(envPrefix + key); v != "" {
			if d, ok := parseDuration(v); ok {
				*dst = d
			}
		}
	}

	num("PORT", &config.Port)
	str("DB_PATH", &config.DBPath)
	if dataPath := getenv(envPrefix + "DATA_PATH"); dataPath != "" {
		config.DataPath = dataPath
		config.OutputPath = filepath.Join(dataPath, "youtube-videos.csv")
	}
	str("OUTPUT_PATH", &config.OutputPath)
	str("CSV_URL", &config.CSVURL)

	str("PLAYLIST_ID", &config.PlaylistID)
	str("CHANNEL_ID", &config.ChannelID)
	str("CHANNEL_HANDLE", &config.ChannelHandle)
	str("FEED_BASE_URL", &config.FeedBaseURL)
	if kw := getenv(envPrefix + "LIVE_KEYWORDS"); kw != "" {
		config.LiveKeywords = splitList(kw)
	}

	dur("INGEST_INTERVAL", &config.IngestInterval)
	dur("CACHE_TTL", &config.CacheTTL)
	dur("FETCH_TIMEOUT", &config.FetchTimeout)
	num("FETCH_ATTEMPTS", &config.FetchAttempts)

	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_FORMAT", &config.LogFormat)

	str("ADMIN_TOKEN_HASH", &config.AdminTokenHash)
	str("SITE_TITLE", &config.SiteTitle)
	str("SITE_URL", &config.SiteURL)
}

// parseDuration accepts Go durations ("90s", "1h") and bare seconds ("900").
func parseDuration(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateIngest checks that both feeds can be located.
func (c Config) ValidateIngest() error {
	var errs []error
	if c.PlaylistID == "" {
		errs = append(errs, errors.New(envPrefix+"PLAYLIST_ID is required"))
	}
	if c.ChannelID == "" && c.ChannelHandle == "" {
		errs = append(errs, errors.New(envPrefix+"CHANNEL_ID or "+envPrefix+"CHANNEL_HANDLE is required"))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	return errors.Join(errs...)
}

func (c Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
