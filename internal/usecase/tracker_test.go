package usecase

import (
	"testing"
	"time"

	"github.com/vberezny/stockbot/internal/domain"
)

func TestStateTrackerFirstObservationNeverNotifies(t *testing.T) {
	statuses := []domain.Availability{
		domain.AvailabilityInStock,
		domain.AvailabilityOutOfStock,
		domain.AvailabilityPreOrder,
		domain.AvailabilityUnknown,
	}

	for _, status := range statuses {
		tracker := NewStateTracker()
		transition := tracker.Observe("10312", status, time.Now())
		if transition != TransitionFirstObservation {
			t.Errorf("first observe with %s = %s, want first_observation", status, transition)
		}
		state, ok := tracker.Snapshot("10312")
		if !ok || state.Availability != status {
			t.Errorf("first observe with %s did not record the status", status)
		}
	}
}

func TestStateTrackerTransitions(t *testing.T) {
	tests := []struct {
		name  string
		prior domain.Availability
		next  domain.Availability
		want  Transition
	}{
		{"oos to in stock", domain.AvailabilityOutOfStock, domain.AvailabilityInStock, TransitionBecameInStock},
		{"unknown to in stock", domain.AvailabilityUnknown, domain.AvailabilityInStock, TransitionBecameInStock},
		{"preorder to in stock", domain.AvailabilityPreOrder, domain.AvailabilityInStock, TransitionBecameInStock},
		{"in stock to oos", domain.AvailabilityInStock, domain.AvailabilityOutOfStock, TransitionBecameUnavailable},
		{"in stock to unknown", domain.AvailabilityInStock, domain.AvailabilityUnknown, TransitionBecameUnavailable},
		{"in stock unchanged", domain.AvailabilityInStock, domain.AvailabilityInStock, TransitionNoChange},
		{"oos unchanged", domain.AvailabilityOutOfStock, domain.AvailabilityOutOfStock, TransitionNoChange},
		{"unknown to oos", domain.AvailabilityUnknown, domain.AvailabilityOutOfStock, TransitionNoChange},
		{"oos to preorder", domain.AvailabilityOutOfStock, domain.AvailabilityPreOrder, TransitionNoChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewStateTracker()
			tracker.Observe("75192", tt.prior, time.Now())
			got := tracker.Observe("75192", tt.next, time.Now())
			if got != tt.want {
				t.Errorf("observe %s after %s = %s, want %s", tt.next, tt.prior, got, tt.want)
			}
			state, _ := tracker.Snapshot("75192")
			if state.Availability != tt.next {
				t.Errorf("status after observe = %s, want %s", state.Availability, tt.next)
			}
		})
	}
}

func TestStateTrackerSeedSuppressesFirstObservation(t *testing.T) {
	tracker := NewStateTracker()
	tracker.Seed([]domain.ItemState{
		{ItemCode: "10312", Availability: domain.AvailabilityOutOfStock, CheckedAt: time.Now().Add(-time.Hour)},
	})

	transition := tracker.Observe("10312", domain.AvailabilityInStock, time.Now())
	if transition != TransitionBecameInStock {
		t.Errorf("observe after seed = %s, want became_in_stock", transition)
	}
}

func TestStateTrackerIndependentItems(t *testing.T) {
	tracker := NewStateTracker()
	tracker.Observe("10312", domain.AvailabilityOutOfStock, time.Now())

	if transition := tracker.Observe("75192", domain.AvailabilityInStock, time.Now()); transition != TransitionFirstObservation {
		t.Errorf("different item classified as %s, want first_observation", transition)
	}
	if transition := tracker.Observe("10312", domain.AvailabilityInStock, time.Now()); transition != TransitionBecameInStock {
		t.Errorf("tracked item classified as %s, want became_in_stock", transition)
	}
}
