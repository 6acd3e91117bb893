package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sermonfeed/internal/auth"
	"sermonfeed/internal/catalog"
	"sermonfeed/internal/feed"
	"sermonfeed/internal/server"
)

// Ledger rows kept after each run.
const keepRuns = 500

var (
	servePort     int
	serveDB       string
	serveNoIngest bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the video catalog and refresh it on a schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := state.cfg
		if servePort > 0 {
			cfg.Port = servePort
		}
		overrideString(&cfg.DBPath, serveDB)
		logger := state.logger

		logger.Info("starting sermonfeed", "version", Version, "port", cfg.Port, "db", cfg.DBPath, "output", cfg.OutputPath)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		var src catalog.Source = catalog.FileSource{Path: cfg.OutputPath}
		if cfg.CSVURL != "" {
			src = catalog.NewHTTPSource(cfg.CSVURL, cfg.FetchTimeout)
		}
		cat := catalog.New(src, catalog.NewCache(cfg.CacheTTL, nil), logger.WithPrefix("catalog"))

		var feedService *feed.Service
		if !serveNoIngest {
			if err := cfg.ValidateIngest(); err != nil {
				return err
			}
			ingester, err := newIngester(ctx, cfg, newFetcher(cfg, logger), db, logger)
			if err != nil {
				return err
			}
			feedService = feed.NewService(ingester, db, cfg.IngestInterval, logger.WithPrefix("scheduler"))
			feedService.OnRun(func(feed.Report) {
				cat.Invalidate()
				pruneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if n, err := db.PruneRuns(pruneCtx, keepRuns); err != nil {
					logger.Warn("failed to prune run ledger", "err", err)
				} else if n > 0 {
					logger.Debug("pruned run ledger", "removed", n)
				}
			})
			feedService.Start()
			defer feedService.Stop()
		}

		verifier := auth.NewVerifier(cfg.AdminTokenHash)
		if !verifier.Enabled() {
			logger.Warn("SERMONFEED_ADMIN_TOKEN_HASH not set, manual refresh disabled")
		}

		srv := server.NewServer(db, logger.WithPrefix("http"), cat, feedService, verifier, server.Config{
			OutputPath: cfg.OutputPath,
			SiteTitle:  cfg.SiteTitle,
			SiteURL:    cfg.SiteURL,
		})
		return srv.Start(ctx, cfg.GetAddress())
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to run the server on (default: 8080 or SERMONFEED_PORT)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Path to database file (default: data/sermonfeed.db or SERMONFEED_DB_PATH)")
	serveCmd.Flags().BoolVar(&serveNoIngest, "no-ingest", false, "Only serve the existing CSV, never fetch feeds")
}
