package feed

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sermonfeed/internal/database"
	"sermonfeed/internal/video"
	"sermonfeed/internal/videocsv"
)

// Getter retrieves a raw feed document. *Fetcher implements it.
type Getter interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// IngesterConfig names the two feeds and the output file.
type IngesterConfig struct {
	SermonFeedURL  string
	ChannelFeedURL string
	OutputPath     string
	LiveKeywords   []string
}

// Snapshot is the classified content of one pair of feed pulls.
type Snapshot struct {
	Sermons    []video.Record
	Live       []video.Record
	SermonErr  error
	ChannelErr error
}

// Records returns sermons and live videos together, newest first.
func (s Snapshot) Records() []video.Record {
	out := make([]video.Record, 0, len(s.Sermons)+len(s.Live))
	out = append(out, s.Sermons...)
	out = append(out, s.Live...)
	video.SortNewestFirst(out)
	return out
}

// Report summarises one producer run.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Sermons    int
	Live       int
	Partial    bool
	Err        error
}

// Status is the ledger status of the run.
func (r Report) Status() string {
	switch {
	case r.Err != nil:
		return database.RunStatusFailed
	case r.Partial:
		return database.RunStatusPartial
	}
	return database.RunStatusOK
}

// Run converts the report into a ledger row.
func (r Report) Run() database.Run {
	run := database.Run{
		ID:          r.RunID.String(),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		SermonCount: r.Sermons,
		LiveCount:   r.Live,
		Status:      r.Status(),
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}
	return run
}

// Ingester runs the fetch, classify and write pipeline.
type Ingester struct {
	getter  Getter
	cfg     IngesterConfig
	matcher *KeywordMatcher
	logger  *log.Logger
	now     func() time.Time
}

func NewIngester(getter Getter, cfg IngesterConfig, logger *log.Logger) *Ingester {
	keywords := cfg.LiveKeywords
	if len(keywords) == 0 {
		keywords = DefaultLiveKeywords
	}
	return &Ingester{
		getter:  getter,
		cfg:     cfg,
		matcher: NewKeywordMatcher(keywords),
		logger:  logger,
		now:     time.Now,
	}
}

// Collect fetches both feeds concurrently and classifies their entries. A
// failed feed contributes nothing; without the sermon feed no live entry is
// excluded. ErrTotalFailure is returned only when both feeds failed.
func (in *Ingester) Collect(ctx context.Context) (Snapshot, error) {
	var (
		snap           Snapshot
		sermonEntries  iter.Seq[Entry]
		channelEntries iter.Seq[Entry]
		g              errgroup.Group
	)
	g.Go(func() error {
		sermonEntries, snap.SermonErr = in.load(ctx, in.cfg.SermonFeedURL)
		return nil
	})
	g.Go(func() error {
		channelEntries, snap.ChannelErr = in.load(ctx, in.cfg.ChannelFeedURL)
		return nil
	})
	_ = g.Wait()

	if snap.SermonErr != nil {
		in.logger.Error("sermon feed unavailable, live videos will not be checked against the playlist", "err", snap.SermonErr)
	}
	if snap.ChannelErr != nil {
		in.logger.Error("channel feed unavailable", "err", snap.ChannelErr)
	}

	snap.Sermons = Sermons(sermonEntries)
	snap.Live = LiveStreams(channelEntries, IDs(snap.Sermons), in.matcher)
	in.logger.Info("classified videos", "sermons", len(snap.Sermons), "live", len(snap.Live))

	if snap.SermonErr != nil && snap.ChannelErr != nil {
		return snap, fmt.Errorf("%w: sermons: %w; channel: %w", ErrTotalFailure, snap.SermonErr, snap.ChannelErr)
	}
	return snap, nil
}

func (in *Ingester) load(ctx context.Context, feedURL string) (iter.Seq[Entry], error) {
	if feedURL == "" {
		return nil, fmt.Errorf("%w: feed URL not configured", ErrNetwork)
	}
	raw, err := in.getter.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Run performs one complete producer run and replaces the output file. When
// no feed could be fetched the file holds a single fallback row describing
// the error, and that error is returned. A cancelled run leaves the file
// untouched.
func (in *Ingester) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.New(), StartedAt: in.now()}
	in.logger.Info("ingestion started", "run", report.RunID)

	snap, err := in.Collect(ctx)
	if cerr := ctx.Err(); cerr != nil {
		in.logger.Warn("ingestion cancelled, keeping previous file", "run", report.RunID, "path", in.cfg.OutputPath)
		return in.finish(report, fmt.Errorf("%w: %w", ErrCancelled, cerr))
	}
	if err != nil {
		fallback := video.Fallback(singleLine(fmt.Sprintf("Error fetching videos: %v", err)), in.now())
		if werr := videocsv.WriteFile(in.cfg.OutputPath, []video.Record{fallback}); werr != nil {
			err = errors.Join(err, werr)
		} else {
			in.logger.Warn("wrote fallback video file", "path", in.cfg.OutputPath)
		}
		return in.finish(report, err)
	}

	report.Sermons = len(snap.Sermons)
	report.Live = len(snap.Live)
	report.Partial = snap.SermonErr != nil || snap.ChannelErr != nil

	if err := videocsv.WriteFile(in.cfg.OutputPath, snap.Records()); err != nil {
		return in.finish(report, err)
	}
	in.logger.Info("wrote video file", "path", in.cfg.OutputPath, "sermons", report.Sermons, "live", report.Live)
	return in.finish(report, nil)
}

// singleLine folds line breaks so the fallback file stays one row.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (in *Ingester) finish(report Report, err error) (Report, error) {
	report.FinishedAt = in.now()
	report.Err = err
	if err != nil {
		in.logger.Error("ingestion failed", "run", report.RunID, "err", err)
	} else {
		in.logger.Info("ingestion finished", "run", report.RunID, "took", report.FinishedAt.Sub(report.StartedAt))
	}
	return report, err
}
