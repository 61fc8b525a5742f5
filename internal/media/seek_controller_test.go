package media

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	mu          sync.Mutex
	ready       ReadyState
	pauses      int
	currentTime float64
	seeks       []float64
	nextID      int
	onReady     map[int]func()
	onSeeked    map[int]func()
	// seekedOnSet fires seeked synchronously from SetCurrentTime
	seekedOnSet bool
}

func newFakeElement(ready ReadyState) *fakeElement {
	return &fakeElement{
		ready:    ready,
		onReady:  make(map[int]func()),
		onSeeked: make(map[int]func()),
	}
}

func (f *fakeElement) ReadyState() ReadyState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *fakeElement) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeElement) SetCurrentTime(seconds float64) {
	f.mu.Lock()
	f.currentTime = seconds
	f.seeks = append(f.seeks, seconds)
	fireNow := f.seekedOnSet
	f.mu.Unlock()
	if fireNow {
		f.FireSeeked()
	}
}

func (f *fakeElement) subscribe(m map[int]func(), fn func()) Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	m[id] = fn
	var once sync.Once
	return SubscriptionFunc(func() {
		once.Do(func() {
			f.mu.Lock()
			delete(m, id)
			f.mu.Unlock()
		})
	})
}

func (f *fakeElement) OnReady(fn func()) Subscription  { return f.subscribe(f.onReady, fn) }
func (f *fakeElement) OnSeeked(fn func()) Subscription { return f.subscribe(f.onSeeked, fn) }

func (f *fakeElement) fire(m map[int]func()) {
	f.mu.Lock()
	fns := make([]func(), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeElement) FireSeeked() { f.fire(f.onSeeked) }

func (f *fakeElement) BecomeReady() {
	f.mu.Lock()
	f.ready = HaveEnoughData
	f.mu.Unlock()
	f.fire(f.onReady)
}

func (f *fakeElement) listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.onReady) + len(f.onSeeked)
}

func (f *fakeElement) snapshot() (pauses int, current float64, seeks []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses, f.currentTime, append([]float64(nil), f.seeks...)
}

func waitDone(t *testing.T, r *Request) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("request for %.1fs did not finish", r.Target())
	}
}

func TestSeekTo_ReadyElementSettles(t *testing.T) {
	el := newFakeElement(HaveEnoughData)
	c := NewController(el)

	req := c.SeekTo(42.7)
	assert.Equal(t, StateSeeking, req.State())
	assert.Equal(t, 1, el.listeners())

	el.FireSeeked()
	waitDone(t, req)

	pauses, current, _ := el.snapshot()
	assert.Equal(t, StateSettled, req.State())
	assert.Equal(t, 42.7, current)
	assert.Equal(t, 2, pauses, "pause before seeking and again once settled")
	assert.Zero(t, el.listeners())
	assert.Zero(t, c.ActiveSubscriptions())
}

func TestSeekTo_SynchronousSeekedDoesNotDeadlock(t *testing.T) {
	el := newFakeElement(HaveEnoughData)
	el.seekedOnSet = true
	c := NewController(el)

	req := c.SeekTo(15.3)
	waitDone(t, req)
	assert.Equal(t, StateSettled, req.State())
	assert.Zero(t, el.listeners())
}

func TestSeekTo_WaitsForReadiness(t *testing.T) {
	el := newFakeElement(HaveMetadata)
	c := NewController(el)

	req := c.SeekTo(65.2)
	assert.Equal(t, StateWaitingForReadiness, req.State())
	_, _, seeks := el.snapshot()
	assert.Empty(t, seeks, "no seek before a frame is available")

	el.BecomeReady()
	assert.Equal(t, StateSeeking, req.State())
	assert.Equal(t, 1, el.listeners(), "readiness listener released, seeked listener held")

	el.FireSeeked()
	waitDone(t, req)
	_, current, _ := el.snapshot()
	assert.Equal(t, 65.2, current)
}

func TestSeekTo_NeverReadyHasNoDeadline(t *testing.T) {
	el := newFakeElement(HaveNothing)
	c := NewController(el, WithTimeout(20*time.Millisecond))

	req := c.SeekTo(10)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StateWaitingForReadiness, req.State())
	_, _, seeks := el.snapshot()
	assert.Empty(t, seeks)

	// the readiness listener is the only one kept past the deadline
	el.mu.Lock()
	ready, seeked := len(el.onReady), len(el.onSeeked)
	el.mu.Unlock()
	assert.Equal(t, 1, ready)
	assert.Zero(t, seeked)

	c.Close()
	assert.Zero(t, el.listeners())
}

func TestSeekTo_TimeoutAbandonsAndCleansUp(t *testing.T) {
	el := newFakeElement(HaveEnoughData)
	abandoned := make(chan float64, 1)
	c := NewController(el,
		WithTimeout(20*time.Millisecond),
		WithAbandonHandler(func(target float64) { abandoned <- target }),
	)

	req := c.SeekTo(98.5)
	waitDone(t, req)

	assert.Equal(t, StateAbandoned, req.State())
	assert.Zero(t, el.listeners())
	select {
	case target := <-abandoned:
		assert.Equal(t, 98.5, target)
	case <-time.After(time.Second):
		t.Fatal("abandon handler not called")
	}

	// a late completion signal is a no-op
	el.FireSeeked()
	pauses, _, _ := el.snapshot()
	assert.Equal(t, 1, pauses)
}

func TestSeekTo_SupersedesPreviousRequest(t *testing.T) {
	el := newFakeElement(HaveEnoughData)
	c := NewController(el)

	first := c.SeekTo(15.3)
	second := c.SeekTo(42.7)

	waitDone(t, first)
	assert.Equal(t, StateSuperseded, first.State())
	assert.Equal(t, 1, el.listeners(), "only the latest request listens")

	el.FireSeeked()
	waitDone(t, second)
	assert.Equal(t, StateSettled, second.State())

	_, current, seeks := el.snapshot()
	assert.Equal(t, 42.7, current)
	assert.Equal(t, []float64{15.3, 42.7}, seeks)
}

func TestSeekTo_SupersedeWhileWaiting(t *testing.T) {
	el := newFakeElement(HaveMetadata)
	c := NewController(el)

	first := c.SeekTo(5)
	second := c.SeekTo(9)
	waitDone(t, first)
	assert.Equal(t, 1, el.listeners())

	el.BecomeReady()
	el.FireSeeked()
	waitDone(t, second)

	_, _, seeks := el.snapshot()
	assert.Equal(t, []float64{9}, seeks, "stale readiness must not trigger a seek")
}

func TestController_RapidSeeksLeaveOneRequest(t *testing.T) {
	el := newFakeElement(HaveEnoughData)
	c := NewController(el)

	var last *Request
	for i := 0; i < 50; i++ {
		last = c.SeekTo(float64(i))
	}
	require.NotNil(t, last)
	assert.Equal(t, 1, el.listeners())
	assert.Equal(t, 1, c.ActiveSubscriptions())

	state, target := c.Status()
	assert.Equal(t, StateSeeking, state)
	assert.Equal(t, 49.0, target)
}

func TestController_Close(t *testing.T) {
	el := newFakeElement(HaveEnoughData)
	c := NewController(el)

	req := c.SeekTo(3)
	c.Close()
	waitDone(t, req)
	assert.Equal(t, StateSuperseded, req.State())
	assert.Zero(t, el.listeners())

	after := c.SeekTo(4)
	waitDone(t, after)
	_, _, seeks := el.snapshot()
	assert.Equal(t, []float64{3}, seeks)
}

func TestController_StatusIdle(t *testing.T) {
	c := NewController(newFakeElement(HaveNothing))
	state, _ := c.Status()
	assert.Equal(t, StateIdle, state)
	assert.Zero(t, c.ActiveSubscriptions())
}
