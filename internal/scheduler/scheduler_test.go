package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/uxradar/internal/filter"
	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
	"github.com/amishk599/uxradar/internal/store"
)

// --- Mock implementations ---

// ScriptedRunner returns outcomes[i] on the i-th call, repeating the last.
type ScriptedRunner struct {
	mu       sync.Mutex
	outcomes []model.PipelineOutcome
	err      error
	calls    atomic.Int32
}

func (r *ScriptedRunner) Run(_ context.Context) (model.PipelineOutcome, []pipelinelog.Event, error) {
	n := int(r.calls.Add(1)) - 1
	if r.err != nil {
		return model.PipelineOutcome{}, nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n >= len(r.outcomes) {
		n = len(r.outcomes) - 1
	}
	return r.outcomes[n], nil, nil
}

type RecordingNotifier struct {
	mu      sync.Mutex
	batches [][]model.Listing
	err     error
}

func (n *RecordingNotifier) Notify(listings []model.Listing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.batches = append(n.batches, listings)
	return nil
}

func (n *RecordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.batches)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okOutcome(listings ...model.Listing) model.PipelineOutcome {
	return model.PipelineOutcome{RunID: "run", Listings: listings, Status: model.StatusOK}
}

func listing(id string, e model.Eligibility) model.Listing {
	return model.Listing{ID: id, Title: "UX Researcher " + id, URL: "https://example.com/" + id, Eligibility: e}
}

// --- Tests ---

func TestRunOnce_DeliversOnlyNewListings(t *testing.T) {
	runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{
		okOutcome(listing("a", model.EligibilityGlobal), listing("b", model.EligibilityGlobal)),
		okOutcome(listing("a", model.EligibilityGlobal), listing("b", model.EligibilityGlobal), listing("c", model.EligibilityGlobal)),
	}}
	notifier := &RecordingNotifier{}
	s := NewScheduler(runner, nil, store.NewMemoryStore(), notifier, time.Hour, 0, discardLogger())

	n, err := s.RunOnce(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("first RunOnce = %d, %v; want 2, nil", n, err)
	}

	n, err = s.RunOnce(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("second RunOnce = %d, %v; want 1, nil", n, err)
	}
	if len(notifier.batches) != 2 || notifier.batches[1][0].ID != "c" {
		t.Errorf("batches = %+v", notifier.batches)
	}
}

func TestRunOnce_NothingNewSkipsNotify(t *testing.T) {
	runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{okOutcome()}}
	notifier := &RecordingNotifier{}
	s := NewScheduler(runner, nil, store.NewMemoryStore(), notifier, time.Hour, 0, discardLogger())

	if n, err := s.RunOnce(context.Background()); err != nil || n != 0 {
		t.Fatalf("RunOnce = %d, %v", n, err)
	}
	if notifier.count() != 0 {
		t.Errorf("notifier called %d times, want 0", notifier.count())
	}
}

func TestRunOnce_AppliesFilter(t *testing.T) {
	runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{
		okOutcome(listing("a", model.EligibilityGlobal), listing("b", model.EligibilityRestricted)),
	}}
	notifier := &RecordingNotifier{}
	f := filter.NewListingFilter(filter.Options{GlobalOnly: true}, time.Now())
	s := NewScheduler(runner, f, store.NewMemoryStore(), notifier, time.Hour, 0, discardLogger())

	n, err := s.RunOnce(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("RunOnce = %d, %v; want 1, nil", n, err)
	}
	if notifier.batches[0][0].ID != "a" {
		t.Errorf("delivered %+v, want only a", notifier.batches[0])
	}
}

func TestRunOnce_NotifyFailureLeavesListingsUnseen(t *testing.T) {
	runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{okOutcome(listing("a", model.EligibilityGlobal))}}
	notifier := &RecordingNotifier{err: errors.New("slack down")}
	st := store.NewMemoryStore()
	s := NewScheduler(runner, nil, st, notifier, time.Hour, 0, discardLogger())

	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce: expected error when notify fails")
	}
	if seen, _ := st.HasSeen("a"); seen {
		t.Error("listing marked seen despite failed notification")
	}

	notifier.err = nil
	if n, err := s.RunOnce(context.Background()); err != nil || n != 1 {
		t.Errorf("retry RunOnce = %d, %v; want 1, nil", n, err)
	}
}

func TestRunOnce_FailureStatuses(t *testing.T) {
	tests := []struct {
		status model.Status
		want   error
	}{
		{model.StatusQuotaExhausted, model.ErrQuotaExhausted},
		{model.StatusAllFailed, model.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{{RunID: "r", Status: tt.status}}}
			notifier := &RecordingNotifier{}
			s := NewScheduler(runner, nil, store.NewMemoryStore(), notifier, time.Hour, 0, discardLogger())

			_, err := s.RunOnce(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("RunOnce error = %v, want %v", err, tt.want)
			}
			if notifier.count() != 0 {
				t.Error("notifier should not be called")
			}
		})
	}
}

func TestRunOnce_RunnerError(t *testing.T) {
	runner := &ScriptedRunner{err: context.Canceled}
	s := NewScheduler(runner, nil, store.NewMemoryStore(), &RecordingNotifier{}, time.Hour, 0, discardLogger())

	if _, err := s.RunOnce(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("RunOnce error = %v, want context.Canceled", err)
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{okOutcome()}}
	s := NewScheduler(runner, nil, store.NewMemoryStore(), &RecordingNotifier{}, time.Hour, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := runner.calls.Load(); got != 1 {
		t.Errorf("runner calls = %d, want 1 (immediate cycle only)", got)
	}
}

func TestRun_RepeatsOnInterval(t *testing.T) {
	runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{okOutcome()}}
	s := NewScheduler(runner, nil, store.NewMemoryStore(), &RecordingNotifier{}, 20*time.Millisecond, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	if got := runner.calls.Load(); got < 3 {
		t.Errorf("runner calls = %d, want >= 3", got)
	}
}

func TestRun_ErrorDoesNotStopLoop(t *testing.T) {
	runner := &ScriptedRunner{outcomes: []model.PipelineOutcome{{RunID: "r", Status: model.StatusAllFailed}}}
	s := NewScheduler(runner, nil, store.NewMemoryStore(), &RecordingNotifier{}, 20*time.Millisecond, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if got := runner.calls.Load(); got < 2 {
		t.Errorf("runner calls = %d, want >= 2 (failed cycles should not end the loop)", got)
	}
}
