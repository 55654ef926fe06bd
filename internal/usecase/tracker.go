package usecase

import (
	"sync"
	"time"

	"github.com/vberezny/stockbot/internal/domain"
)

// Transition classifies the change between two consecutive observations of
// one item.
type Transition int

const (
	TransitionFirstObservation Transition = iota
	TransitionNoChange
	TransitionBecameInStock
	TransitionBecameUnavailable
)

func (t Transition) String() string {
	switch t {
	case TransitionFirstObservation:
		return "first_observation"
	case TransitionNoChange:
		return "no_change"
	case TransitionBecameInStock:
		return "became_in_stock"
	case TransitionBecameUnavailable:
		return "became_unavailable"
	default:
		return "unknown"
	}
}

// StateTracker keeps the last recorded availability per item and classifies
// each new observation against it. Observations come only from the monitor
// goroutine; the mutex orders them against Seed and Snapshot.
type StateTracker struct {
	mu     sync.Mutex
	states map[string]domain.ItemState
}

func NewStateTracker() *StateTracker {
	return &StateTracker{states: make(map[string]domain.ItemState)}
}

// Seed loads persisted item states, so a restart does not re-classify known
// items as first observations.
func (t *StateTracker) Seed(states []domain.ItemState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, state := range states {
		t.states[state.ItemCode] = state
	}
}

// Observe records a successful probe result and returns the transition it
// represents. The first observation of an item is recorded silently: without
// a prior status there is nothing to compare against, and announcing it
// would fire a spurious alert on every fresh watch. A change between two
// not-in-stock statuses (say unknown to out_of_stock) is not
// notification-worthy and classifies as no change.
func (t *StateTracker) Observe(itemCode string, availability domain.Availability, at time.Time) Transition {
	t.mu.Lock()
	defer t.mu.Unlock()

	prior, seen := t.states[itemCode]
	t.states[itemCode] = domain.ItemState{ItemCode: itemCode, Availability: availability, CheckedAt: at}

	switch {
	case !seen:
		return TransitionFirstObservation
	case prior.Availability == availability:
		return TransitionNoChange
	case availability.InStock():
		return TransitionBecameInStock
	case prior.Availability.InStock():
		return TransitionBecameUnavailable
	default:
		return TransitionNoChange
	}
}

// Snapshot returns the current recorded state for an item, if any.
func (t *StateTracker) Snapshot(itemCode string) (domain.ItemState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[itemCode]
	return state, ok
}
