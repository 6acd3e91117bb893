package feed

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"sermonfeed/internal/database"
)

type memoryLedger struct {
	mu   sync.Mutex
	runs []database.Run
}

func (l *memoryLedger) RecordRun(ctx context.Context, run database.Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, run)
	return nil
}

func (l *memoryLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.runs)
}

func TestServiceTrigger(t *testing.T) {
	g := newStubGetter()
	g.bodies[sermonURL] = samplePlaylistFeed
	g.bodies[channelURL] = sampleChannelFeed
	in, _ := newTestIngester(t, g)
	ledger := &memoryLedger{}

	svc := NewService(in, ledger, time.Hour, testLogger())
	var hooked []Report
	svc.OnRun(func(r Report) { hooked = append(hooked, r) })

	report, err := svc.Trigger(context.Background())
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if len(hooked) != 1 || hooked[0].RunID != report.RunID {
		t.Errorf("OnRun hook not called with report")
	}
	if ledger.count() != 1 {
		t.Fatalf("expected 1 recorded run, got %d", ledger.count())
	}
	run := ledger.runs[0]
	if run.ID != report.RunID.String() || run.Status != database.RunStatusOK || run.SermonCount != 2 {
		t.Errorf("unexpected ledger row %+v", run)
	}
}

func TestServiceRejectsConcurrentRuns(t *testing.T) {
	g := newStubGetter()
	g.bodies[sermonURL] = samplePlaylistFeed
	g.bodies[channelURL] = sampleChannelFeed
	g.release = make(chan struct{})
	in, _ := newTestIngester(t, g)
	svc := NewService(in, nil, time.Hour, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Trigger(context.Background())
		done <- err
	}()

	// Wait for the first run to reach the getter.
	deadline := time.Now().Add(2 * time.Second)
	for {
		g.mu.Lock()
		started := g.calls[sermonURL] > 0
		g.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first run never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := svc.Trigger(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}

	close(g.release)
	if err := <-done; err != nil {
		t.Errorf("first run failed: %v", err)
	}
}

func TestServiceStartStop(t *testing.T) {
	g := newStubGetter()
	g.bodies[sermonURL] = samplePlaylistFeed
	g.bodies[channelURL] = sampleChannelFeed
	in, _ := newTestIngester(t, g)
	ledger := &memoryLedger{}

	svc := NewService(in, ledger, time.Second, testLogger())
	if svc.Interval() != time.Minute {
		t.Errorf("interval should be clamped to a minute, got %s", svc.Interval())
	}

	ran := make(chan struct{}, 1)
	svc.OnRun(func(Report) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	svc.Start()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("initial run did not happen")
	}
	svc.Stop()
	svc.Stop()

	if ledger.count() != 1 {
		t.Errorf("expected 1 recorded run, got %d", ledger.count())
	}
}

func TestServiceStopDuringRunKeepsFile(t *testing.T) {
	g := newStubGetter()
	g.bodies[sermonURL] = samplePlaylistFeed
	g.bodies[channelURL] = sampleChannelFeed
	in, out := newTestIngester(t, g)

	if _, err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	before, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	g.mu.Lock()
	g.release = make(chan struct{})
	g.calls = map[string]int{}
	g.mu.Unlock()

	ledger := &memoryLedger{}
	svc := NewService(in, ledger, time.Hour, testLogger())
	svc.Start()

	deadline := time.Now().Add(2 * time.Second)
	for {
		g.mu.Lock()
		started := g.calls[sermonURL] > 0 && g.calls[channelURL] > 0
		g.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduled run never started")
		}
		time.Sleep(time.Millisecond)
	}

	svc.Stop()

	after, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Errorf("interrupted run replaced the file:\n%s", after)
	}
	if ledger.count() != 1 {
		t.Fatalf("expected 1 recorded run, got %d", ledger.count())
	}
	if run := ledger.runs[0]; run.Status != database.RunStatusFailed {
		t.Errorf("expected failed run, got %+v", run)
	}
}
