package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/vberezny/stockbot/internal/domain"
	"github.com/vberezny/stockbot/internal/metrics"
	"go.uber.org/zap"
)

// Monitor runs the periodic stock-checking loop. A single goroutine owns the
// loop, so cycles never overlap: a cycle that outlives the interval simply
// delays the next tick. Each probe goes through the shared ProbeLimiter, so
// items are checked strictly one at a time.
type Monitor struct {
	watches    domain.WatchRepository
	states     domain.ItemStateRepository
	probe      domain.StockProbe
	limiter    *ProbeLimiter
	tracker    *StateTracker
	dispatcher *Dispatcher
	recorder   *metrics.Recorder
	logger     *zap.Logger

	interval     time.Duration
	probeTimeout time.Duration
}

func NewMonitor(
	watches domain.WatchRepository,
	states domain.ItemStateRepository,
	probe domain.StockProbe,
	limiter *ProbeLimiter,
	tracker *StateTracker,
	dispatcher *Dispatcher,
	recorder *metrics.Recorder,
	logger *zap.Logger,
	interval time.Duration,
	probeTimeout time.Duration,
) *Monitor {
	return &Monitor{
		watches:      watches,
		states:       states,
		probe:        probe,
		limiter:      limiter,
		tracker:      tracker,
		dispatcher:   dispatcher,
		recorder:     recorder,
		logger:       logger,
		interval:     interval,
		probeTimeout: probeTimeout,
	}
}

// Run seeds the tracker from persisted state, executes one cycle
// immediately, then keeps cycling on the interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	if states, err := m.states.ListAll(ctx); err != nil {
		m.logger.Warn("failed to load persisted item states, starting cold", zap.Error(err))
	} else {
		m.tracker.Seed(states)
	}

	m.logger.Info("monitor started", zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runCycleLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return
		case <-ticker.C:
			m.runCycleLogged(ctx)
		}
	}
}

func (m *Monitor) runCycleLogged(ctx context.Context) {
	if err := m.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Error("monitoring cycle failed", zap.Error(err))
	}
}

// RunCycle checks every watched item once. A failure to load the watch set
// aborts the whole cycle; a single failing item never does.
func (m *Monitor) RunCycle(ctx context.Context) error {
	start := time.Now()

	codes, err := m.watches.ListItemCodes(ctx)
	if err != nil {
		return err
	}
	sort.Strings(codes)

	if len(codes) == 0 {
		m.logger.Debug("no watched items")
		return nil
	}

	m.logger.Info("monitoring cycle started", zap.Int("item_count", len(codes)))

	for _, code := range codes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m.checkItem(ctx, code)
	}

	m.recorder.CycleComplete()
	m.logger.Info("monitoring cycle complete",
		zap.Int("item_count", len(codes)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (m *Monitor) checkItem(ctx context.Context, itemCode string) {
	info, err := m.probeOnce(ctx, itemCode)
	if err != nil && m.shouldRetry(ctx, err) {
		m.logger.Debug("retrying probe", zap.String("item_code", itemCode), zap.Error(err))
		info, err = m.probeOnce(ctx, itemCode)
	}
	if err != nil {
		// A failed probe is not an observation: the item keeps its last
		// recorded status and is retried next cycle.
		m.recorder.ProbeResult("failed")
		m.logger.Warn("probe failed",
			zap.String("item_code", itemCode),
			zap.Error(err),
		)
		return
	}
	m.recorder.ProbeResult("ok")

	checkedAt := time.Now().UTC()
	transition := m.tracker.Observe(itemCode, info.Availability, checkedAt)
	m.recorder.Transition(transition.String())

	if err := m.states.Upsert(ctx, domain.ItemState{
		ItemCode:     itemCode,
		Availability: info.Availability,
		CheckedAt:    checkedAt,
	}); err != nil {
		m.logger.Warn("failed to persist item state",
			zap.String("item_code", itemCode),
			zap.Error(err),
		)
	}

	if transition != TransitionBecameInStock {
		m.logger.Debug("item checked",
			zap.String("item_code", itemCode),
			zap.String("availability", string(info.Availability)),
			zap.String("transition", transition.String()),
		)
		return
	}

	m.logger.Info("item back in stock",
		zap.String("item_code", itemCode),
		zap.String("name", info.Name),
	)

	watches, err := m.watches.ListByItem(ctx, itemCode)
	if err != nil {
		m.logger.Error("failed to load watches for restocked item",
			zap.String("item_code", itemCode),
			zap.Error(err),
		)
		return
	}
	m.dispatcher.NotifyInStock(ctx, info, watches)
}

// probeOnce acquires the rate budget and issues one probe. The probe context
// is detached from the run context so shutdown never aborts a request in
// flight; the per-probe timeout bounds it instead.
func (m *Monitor) probeOnce(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
	if err := m.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.probeTimeout)
	defer cancel()
	return m.probe.Check(probeCtx, itemCode)
}

// shouldRetry allows one immediate retry for transient probe failures.
// Unknown item codes are deterministic and cancellation must not be fought.
func (m *Monitor) shouldRetry(ctx context.Context, err error) bool {
	return errors.Is(err, domain.ErrProbeUnavailable) && ctx.Err() == nil
}
