// internal/server/handlers.go
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"sermonfeed/internal/database"
	"sermonfeed/internal/feed"
	"sermonfeed/internal/rss"
	"sermonfeed/internal/video"
)

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(s.config.OutputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("error opening video file", "path", s.config.OutputPath, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.logger.Error("error reading video file", "path", s.config.OutputPath, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=120")
	http.ServeContent(w, r, "youtube-videos.csv", info.ModTime(), f)
}

type videosResponse struct {
	Type   string         `json:"type,omitempty"`
	Videos []video.Record `json:"videos"`
	Cached bool           `json:"cached"`
	Error  string         `json:"error,omitempty"`
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	var typ video.Type
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := video.ParseType(raw)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		typ = parsed
	}

	res := s.catalog.Load(r.Context(), typ)
	resp := videosResponse{Type: string(typ), Videos: res.Videos, Cached: res.Cached}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	typ, title := video.TypeSermon, s.config.SiteTitle
	if strings.HasSuffix(r.URL.Path, "/live.xml") {
		typ, title = video.TypeLive, s.config.SiteTitle+" (Live)"
	}

	res := s.catalog.Load(r.Context(), typ)
	if res.Err != nil {
		http.Error(w, "Videos temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	siteURL := strings.TrimSuffix(s.siteURL(r), "/")
	out, err := rss.Build(rss.FeedInfo{
		Title:       title,
		Link:        siteURL,
		SelfURL:     siteURL + r.URL.Path,
		Description: "Latest " + string(typ) + " videos",
		Language:    "en-us",
	}, res.Videos, s.now())
	if err != nil {
		s.logger.Error("error building RSS feed", "type", typ, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write(out); err != nil {
		s.logger.Error("error writing RSS response", "err", err)
	}
}

// siteURL falls back to the request's own origin when none is configured.
func (s *Server) siteURL(r *http.Request) string {
	if s.config.SiteURL != "" {
		return s.config.SiteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			RespondWithError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	runs, err := s.db.RecentRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("error listing runs", "err", err)
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if runs == nil {
		runs = []database.Run{}
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

type healthResponse struct {
	Status      string        `json:"status"`
	Artifact    bool          `json:"artifact"`
	LastGoodRun *database.Run `json:"lastSuccessfulRun,omitempty"`
	Problem     string        `json:"problem,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check failed: DB ping error", "err", err)
		RespondWithJSON(w, http.StatusInternalServerError, healthResponse{Status: "error", Problem: "database unavailable"})
		return
	}

	resp := healthResponse{Status: "ok"}
	if _, err := os.Stat(s.config.OutputPath); err == nil {
		resp.Artifact = true
	} else {
		resp.Status = "degraded"
		resp.Problem = "video file missing"
	}
	if run, err := s.db.LastSuccessfulRun(ctx); err == nil {
		resp.LastGoodRun = &run
	}

	RespondWithJSON(w, http.StatusOK, resp)
}

type reportResponse struct {
	RunID    string `json:"runId"`
	Status   string `json:"status"`
	Sermons  int    `json:"sermons"`
	Live     int    `json:"live"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.feedService == nil {
		RespondWithError(w, http.StatusServiceUnavailable, "ingestion is not running")
		return
	}

	// The run outlives a client that hangs up.
	report, err := s.feedService.Trigger(context.WithoutCancel(r.Context()))
	if errors.Is(err, feed.ErrRunInProgress) {
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	s.catalog.Invalidate()

	resp := reportResponse{
		RunID:    report.RunID.String(),
		Status:   report.Status(),
		Sermons:  report.Sermons,
		Live:     report.Live,
		Duration: report.FinishedAt.Sub(report.StartedAt).String(),
	}
	if err != nil {
		resp.Error = err.Error()
		RespondWithJSON(w, http.StatusBadGateway, resp)
		return
	}
	RespondWithJSON(w, http.StatusOK, resp)
}
