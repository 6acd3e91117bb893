// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"sermonfeed/internal/auth"
	"sermonfeed/internal/catalog"
	"sermonfeed/internal/database"
	"sermonfeed/internal/feed"
)

type Config struct {
	OutputPath string // CSV artifact served at CSVPath
	SiteTitle  string
	SiteURL    string
}

// CSVPath is the public location of the video artifact.
const CSVPath = "/data/youtube-videos.csv"

type Server struct {
	db          *database.DB
	logger      *log.Logger
	catalog     *catalog.Catalog
	feedService *feed.Service
	verifier    *auth.Verifier
	config      Config
	now         func() time.Time
}

// NewServer wires the HTTP surface. feedService may be nil, which disables
// manual refreshes.
func NewServer(db *database.DB, logger *log.Logger, cat *catalog.Catalog, feedService *feed.Service, verifier *auth.Verifier, config Config) *Server {
	if verifier == nil {
		verifier = auth.NewVerifier("")
	}
	return &Server{
		db:          db,
		logger:      logger,
		catalog:     cat,
		feedService: feedService,
		verifier:    verifier,
		config:      config,
		now:         time.Now,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+CSVPath, s.handleCSV)
	mux.HandleFunc("GET /api/videos", s.handleVideos)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /rss/sermons.xml", s.handleRSS)
	mux.HandleFunc("GET /rss/live.xml", s.handleRSS)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /api/admin/refresh", s.requireToken(s.handleRefresh))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusNotFound, "not found")
	})

	return loggingMiddleware(s.logger, securityHeaders(gzipMiddleware(mux)))
}

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.verifier.Enabled() {
			RespondWithError(w, http.StatusForbidden, "admin refresh is disabled")
			return
		}
		if err := s.verifier.Authorize(r); err != nil {
			s.logger.Warn("rejected admin request", "remote", r.RemoteAddr, "err", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="sermonfeed"`)
			RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
