package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"sermonfeed/internal/database"
)

// Ledger stores the outcome of each run.
type Ledger interface {
	RecordRun(ctx context.Context, run database.Run) error
}

// Service runs the Ingester on a fixed interval and on demand.
type Service struct {
	ingester *Ingester
	ledger   Ledger
	logger   *log.Logger
	interval time.Duration

	running  atomic.Bool
	mu       sync.Mutex
	onRun    []func(Report)
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewService creates a Service. ledger may be nil.
func NewService(ingester *Ingester, ledger Ledger, interval time.Duration, logger *log.Logger) *Service {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Service{
		ingester: ingester,
		ledger:   ledger,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// OnRun registers fn to be called after every completed run.
func (s *Service) OnRun(fn func(Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRun = append(s.onRun, fn)
}

func (s *Service) Start() {
	s.wg.Add(1)
	go s.updateLoop()
}

// Stop ends the update loop. An in-flight run is cancelled, which leaves the
// output file as it was, and Stop waits for it to return.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

// Interval is the time between scheduled runs.
func (s *Service) Interval() time.Duration {
	return s.interval
}

func (s *Service) updateLoop() {
	defer s.wg.Done()
	s.logger.Info("starting ingestion loop", "interval", s.interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.done
		cancel()
	}()

	s.runScheduled(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runScheduled(ctx)
		case <-s.done:
			s.logger.Info("ingestion loop shutting down")
			return
		}
	}
}

func (s *Service) runScheduled(ctx context.Context) {
	if _, err := s.Trigger(ctx); errors.Is(err, ErrRunInProgress) {
		s.logger.Warn("skipping scheduled ingestion, previous run still active")
	}
}

// Trigger runs the pipeline once. It returns ErrRunInProgress if another run
// has not finished yet.
func (s *Service) Trigger(ctx context.Context) (Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Report{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	report, err := s.ingester.Run(ctx)

	if s.ledger != nil {
		recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if lerr := s.ledger.RecordRun(recordCtx, report.Run()); lerr != nil {
			s.logger.Error("failed to record run", "run", report.RunID, "err", lerr)
		}
		cancel()
	}

	s.mu.Lock()
	hooks := append([]func(Report){}, s.onRun...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(report)
	}
	return report, err
}
