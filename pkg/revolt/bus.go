package revolt

import (
	"context"
	"time"
)

// EventHandler consumes one dispatched event. Returned errors are routed
// to the client's async error sink; they never stop event ingestion.
type EventHandler func(ctx context.Context, event *Event) error

// InterestSet filters which events a subscription receives.
// An empty set matches every event.
type InterestSet struct {
	Names []EventName
}

// Matches reports whether the event passes this filter.
func (i InterestSet) Matches(event *Event) bool {
	if event == nil {
		return false
	}
	if len(i.Names) == 0 {
		return true
	}
	for _, name := range i.Names {
		if name == event.Name {
			return true
		}
	}

	return false
}

// BackpressurePolicy defines how queues behave when subscriber buffers are full.
type BackpressurePolicy string

const (
	// BackpressureDropNewest drops the incoming event when full.
	BackpressureDropNewest BackpressurePolicy = "drop_newest"
	// BackpressureDropOldest evicts the oldest queued event before enqueue.
	BackpressureDropOldest BackpressurePolicy = "drop_oldest"
	// BackpressureBlock blocks until queue space is available or context is canceled.
	BackpressureBlock BackpressurePolicy = "block"
)

// SubscriptionSpec configures a single consumer subscription.
type SubscriptionSpec struct {
	Name           string
	Buffer         int
	Workers        int
	HandlerTimeout time.Duration
	Backpressure   BackpressurePolicy
}

// Subscription controls an active handler registration.
type Subscription interface {
	// Name returns the subscription identifier.
	Name() string
	// Close stops delivery for this subscription.
	Close(ctx context.Context) error
}
