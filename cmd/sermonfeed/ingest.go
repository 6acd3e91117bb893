package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sermonfeed/internal/config"
	"sermonfeed/internal/database"
	"sermonfeed/internal/feed"
)

var (
	ingestPlaylist string
	ingestChannel  string
	ingestHandle   string
	ingestOutput   string
	ingestRecord   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch both feeds once and rewrite the video CSV",
	Long: `Fetch the sermon playlist and channel feeds, classify their videos and
replace the CSV file. Exits non-zero when neither feed could be read, after
leaving a single fallback row in the file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := state.cfg
		overrideString(&cfg.PlaylistID, ingestPlaylist)
		overrideString(&cfg.ChannelID, ingestChannel)
		overrideString(&cfg.ChannelHandle, ingestHandle)
		overrideString(&cfg.OutputPath, ingestOutput)
		if err := cfg.ValidateIngest(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var db *database.DB
		if ingestRecord {
			var err error
			if db, err = openDB(cfg.DBPath); err != nil {
				return err
			}
			defer db.Close()
		}

		fetcher := newFetcher(cfg, state.logger)
		ingester, err := newIngester(ctx, cfg, fetcher, db, state.logger)
		if err != nil {
			return err
		}

		report, err := ingester.Run(ctx)
		if db != nil {
			if lerr := db.RecordRun(context.WithoutCancel(ctx), report.Run()); lerr != nil {
				state.logger.Error("failed to record run", "err", lerr)
			}
		}
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		state.logger.Info("ingestion succeeded", "sermons", report.Sermons, "live", report.Live, "partial", report.Partial)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestPlaylist, "playlist", "", "Sermon playlist ID (default: SERMONFEED_PLAYLIST_ID)")
	ingestCmd.Flags().StringVar(&ingestChannel, "channel", "", "Channel ID (default: SERMONFEED_CHANNEL_ID)")
	ingestCmd.Flags().StringVar(&ingestHandle, "handle", "", "Channel @handle, resolved when no channel ID is set")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "CSV output path (default: data/youtube-videos.csv)")
	ingestCmd.Flags().BoolVar(&ingestRecord, "record", false, "Record the run in the database ledger")
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func openDB(path string) (*database.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := database.NewDB(path, database.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func newFetcher(cfg config.Config, logger *log.Logger) *feed.Fetcher {
	fcfg := feed.DefaultFetcherConfig()
	fcfg.Timeout = cfg.FetchTimeout
	fcfg.Attempts = cfg.FetchAttempts
	fcfg.UserAgent = "sermonfeed/" + Version
	fcfg.BlockPrivateNetworks = true
	return feed.NewFetcher(fcfg, logger.WithPrefix("fetch"))
}

func newIngester(ctx context.Context, cfg config.Config, fetcher *feed.Fetcher, db *database.DB, logger *log.Logger) (*feed.Ingester, error) {
	channelID, err := channelID(ctx, cfg, fetcher, db, logger)
	if err != nil {
		return nil, err
	}
	return feed.NewIngester(fetcher, feed.IngesterConfig{
		SermonFeedURL:  feed.PlaylistFeedURL(cfg.FeedBaseURL, cfg.PlaylistID),
		ChannelFeedURL: feed.ChannelFeedURL(cfg.FeedBaseURL, channelID),
		OutputPath:     cfg.OutputPath,
		LiveKeywords:   cfg.LiveKeywords,
	}, logger.WithPrefix("ingest")), nil
}

// channelID returns the configured channel ID, resolving the handle when
// only that is set. Resolved IDs are remembered in the settings table.
func channelID(ctx context.Context, cfg config.Config, fetcher *feed.Fetcher, db *database.DB, logger *log.Logger) (string, error) {
	if cfg.ChannelID != "" {
		return cfg.ChannelID, nil
	}

	key := "channel_id:" + cfg.ChannelHandle
	if db != nil {
		if id, err := db.GetSetting(ctx, key); err == nil && id != "" {
			return id, nil
		} else if err != nil && !errors.Is(err, database.ErrNotFound) {
			logger.Warn("failed to read cached channel ID", "err", err)
		}
	}

	id, err := fetcher.ResolveChannelID(ctx, cfg.ChannelHandle)
	if err != nil {
		return "", fmt.Errorf("resolving channel %s: %w", cfg.ChannelHandle, err)
	}
	logger.Info("resolved channel handle", "handle", cfg.ChannelHandle, "channel", id)

	if db != nil {
		if err := db.SetSetting(ctx, key, id); err != nil {
			logger.Warn("failed to cache channel ID", "err", err)
		}
	}
	return id, nil
}
