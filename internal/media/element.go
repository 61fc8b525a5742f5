// Package media drives a video element to a target time: pause, wait for
// readiness, seek, confirm arrival, with a timeout fallback.
package media

// ReadyState mirrors the HTML media readiness ladder
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// Subscription is a cancelable listener registration. Cancel must be idempotent.
type Subscription interface {
	Cancel()
}

// Element is the playback surface the controller drives. Implementations
// deliver readiness and seek-completed notifications to the registered
// callbacks until the returned subscription is canceled.
type Element interface {
	ReadyState() ReadyState
	Pause()
	SetCurrentTime(seconds float64)
	OnReady(fn func()) Subscription
	OnSeeked(fn func()) Subscription
}

// SubscriptionFunc adapts a plain function to Subscription
type SubscriptionFunc func()

// Cancel calls f
func (f SubscriptionFunc) Cancel() { f() }
