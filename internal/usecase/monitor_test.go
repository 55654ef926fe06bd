package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vberezny/stockbot/internal/domain"
	"github.com/vberezny/stockbot/internal/metrics"
	"go.uber.org/zap"
)

type monitorFixture struct {
	watches  *mockWatchRepo
	states   *mockStateRepo
	probe    *mockProbe
	notifier *mockNotifier
	groups   *mockGroupRepo
	monitor  *Monitor
}

func newMonitorFixture() *monitorFixture {
	f := &monitorFixture{
		watches:  &mockWatchRepo{},
		states:   &mockStateRepo{},
		probe:    &mockProbe{},
		notifier: &mockNotifier{},
		groups:   &mockGroupRepo{},
	}
	recorder := metrics.NewRecorder()
	logger := zap.NewNop()
	dispatcher := NewDispatcher(f.groups, f.notifier, recorder, logger)
	f.monitor = NewMonitor(
		f.watches, f.states, f.probe,
		NewProbeLimiter(0), NewStateTracker(), dispatcher,
		recorder, logger,
		time.Minute, time.Second,
	)
	return f
}

func TestMonitorRestockScenario(t *testing.T) {
	f := newMonitorFixture()
	f.watches.listItemCodesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"10312"}, nil
	}
	f.watches.listByItemFunc = func(ctx context.Context, itemCode string) ([]domain.Watch, error) {
		return []domain.Watch{{ChatID: 42, TelegramUserID: 42, Username: "alice", ItemCode: itemCode}}, nil
	}

	availability := domain.AvailabilityOutOfStock
	f.probe.checkFunc = func(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
		return &domain.ProductInfo{ItemCode: itemCode, Name: "Test Set", Availability: availability}, nil
	}

	// Cycle 1: first observation, out of stock. No notification.
	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	if len(f.notifier.directCalls) != 0 {
		t.Fatalf("cycle 1 sent %d messages, want 0", len(f.notifier.directCalls))
	}

	// Cycle 2: item restocks. Exactly one direct message.
	availability = domain.AvailabilityInStock
	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle 2: %v", err)
	}
	if len(f.notifier.directCalls) != 1 {
		t.Fatalf("cycle 2 sent %d direct messages, want exactly 1", len(f.notifier.directCalls))
	}
	if f.notifier.directCalls[0].userID != 42 {
		t.Errorf("notified user %d, want 42", f.notifier.directCalls[0].userID)
	}

	// Cycle 3: still in stock. No repeat notification.
	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle 3: %v", err)
	}
	if len(f.notifier.directCalls) != 1 {
		t.Errorf("cycle 3 re-sent; total = %d, want still 1", len(f.notifier.directCalls))
	}
}

func TestMonitorProbeFailureContinuesCycle(t *testing.T) {
	f := newMonitorFixture()
	f.watches.listItemCodesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"10312", "99999"}, nil
	}
	f.probe.checkFunc = func(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
		if itemCode == "99999" {
			return nil, fmt.Errorf("request timed out: %w", domain.ErrProbeUnavailable)
		}
		return &domain.ProductInfo{ItemCode: itemCode, Availability: domain.AvailabilityOutOfStock}, nil
	}

	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if got := f.probe.callCount("10312"); got != 1 {
		t.Errorf("healthy item probed %d times, want 1", got)
	}
	// The failing item gets one immediate retry, then the cycle moves on.
	if got := f.probe.callCount("99999"); got != 2 {
		t.Errorf("failing item probed %d times, want 2 (initial + retry)", got)
	}
	if _, ok := f.monitor.tracker.Snapshot("99999"); ok {
		t.Error("failed probe must not record a status")
	}
	for _, state := range f.states.upserted {
		if state.ItemCode == "99999" {
			t.Error("failed probe must not persist a status")
		}
	}

	// Next cycle retries the failed item.
	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("second RunCycle: %v", err)
	}
	if got := f.probe.callCount("99999"); got != 4 {
		t.Errorf("failing item probed %d times after two cycles, want 4", got)
	}
}

func TestMonitorFailedProbeKeepsRecordedStatus(t *testing.T) {
	f := newMonitorFixture()
	f.watches.listItemCodesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"10312"}, nil
	}

	failing := false
	f.probe.checkFunc = func(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
		if failing {
			return nil, fmt.Errorf("store unreachable: %w", domain.ErrProbeUnavailable)
		}
		return &domain.ProductInfo{ItemCode: itemCode, Availability: domain.AvailabilityOutOfStock}, nil
	}

	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	before, ok := f.monitor.tracker.Snapshot("10312")
	if !ok {
		t.Fatal("status not recorded by successful probe")
	}

	failing = true
	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("failing cycle: %v", err)
	}
	after, _ := f.monitor.tracker.Snapshot("10312")
	if after != before {
		t.Errorf("failed probe changed recorded state: %+v -> %+v", before, after)
	}
}

func TestMonitorWatchSetLoadFailureAbortsCycle(t *testing.T) {
	f := newMonitorFixture()
	f.watches.listItemCodesFunc = func(ctx context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	}

	if err := f.monitor.RunCycle(context.Background()); err == nil {
		t.Error("RunCycle should surface a watch-set load failure")
	}
	if len(f.probe.calls) != 0 {
		t.Errorf("probed %d items after load failure, want 0", len(f.probe.calls))
	}
}

func TestMonitorPersistsObservedState(t *testing.T) {
	f := newMonitorFixture()
	f.watches.listItemCodesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"10312"}, nil
	}
	f.probe.checkFunc = func(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
		return &domain.ProductInfo{ItemCode: itemCode, Availability: domain.AvailabilityInStock}, nil
	}

	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(f.states.upserted) != 1 {
		t.Fatalf("persisted %d states, want 1", len(f.states.upserted))
	}
	if got := f.states.upserted[0]; got.ItemCode != "10312" || got.Availability != domain.AvailabilityInStock {
		t.Errorf("persisted state = %+v", got)
	}
}

func TestMonitorItemNotFoundIsNotRetried(t *testing.T) {
	f := newMonitorFixture()
	f.watches.listItemCodesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"00000"}, nil
	}
	f.probe.checkFunc = func(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
		return nil, domain.ErrItemNotFound
	}

	if err := f.monitor.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if got := f.probe.callCount("00000"); got != 1 {
		t.Errorf("unknown item probed %d times in one cycle, want 1", got)
	}
}

func TestMonitorSeedsTrackerFromPersistedState(t *testing.T) {
	f := newMonitorFixture()
	f.states.listFunc = func(ctx context.Context) ([]domain.ItemState, error) {
		return []domain.ItemState{
			{ItemCode: "10312", Availability: domain.AvailabilityOutOfStock, CheckedAt: time.Now().Add(-time.Hour)},
		}, nil
	}
	f.watches.listItemCodesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"10312"}, nil
	}
	f.watches.listByItemFunc = func(ctx context.Context, itemCode string) ([]domain.Watch, error) {
		return []domain.Watch{{ChatID: 7, TelegramUserID: 7, ItemCode: itemCode}}, nil
	}
	f.probe.checkFunc = func(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
		return &domain.ProductInfo{ItemCode: itemCode, Availability: domain.AvailabilityInStock}, nil
	}

	// Run drives seed + first cycle, then exits on cancel.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.monitor.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		f.notifier.mu.Lock()
		sent := len(f.notifier.directCalls)
		f.notifier.mu.Unlock()
		if sent > 0 {
			break
		}
		select {
		case <-deadline:
			cancel()
			t.Fatal("restock after restart was not announced; seeding failed")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if len(f.notifier.directCalls) != 1 {
		t.Errorf("sent %d messages, want 1", len(f.notifier.directCalls))
	}
}
