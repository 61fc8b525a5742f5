package media

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/localens-go/internal/logger"
)

// DefaultSeekTimeout bounds how long a seek may wait for its completion signal
const DefaultSeekTimeout = time.Second

// SeekState is the lifecycle of one seek request
type SeekState string

const (
	StateIdle                SeekState = "idle"
	StateWaitingForReadiness SeekState = "waiting_for_readiness"
	StateSeeking             SeekState = "seeking"
	StateSettled             SeekState = "settled"
	StateAbandoned           SeekState = "abandoned"
	StateSuperseded          SeekState = "superseded"
)

// Terminal reports whether no further transition can happen
func (s SeekState) Terminal() bool {
	return s == StateSettled || s == StateAbandoned || s == StateSuperseded
}

type stopper interface {
	Stop() bool
}

// Option configures a Controller
type Option func(*Controller)

// WithTimeout overrides the seek-completed deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAbandonHandler registers a callback run when a seek times out
func WithAbandonHandler(fn func(target float64)) Option {
	return func(c *Controller) {
		c.onAbandon = fn
	}
}

// Controller owns the seek lifecycle of a single media element. Only one
// request is outstanding at a time; a new SeekTo supersedes the previous one
// and cancels all of its subscriptions.
type Controller struct {
	mu        sync.Mutex
	el        Element
	timeout   time.Duration
	afterFunc func(time.Duration, func()) stopper
	onAbandon func(target float64)

	cur    *Request
	gen    uint64
	closed bool
}

// Request tracks one SeekTo call
type Request struct {
	c      *Controller
	gen    uint64
	target float64

	state SeekState
	subs  []Subscription
	timer stopper
	done  chan struct{}
}

// NewController creates a controller for el
func NewController(el Element, opts ...Option) *Controller {
	c := &Controller{
		el:      el,
		timeout: DefaultSeekTimeout,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SeekTo moves the element to target seconds. If the element has no current
// frame yet, the seek waits for readiness without a deadline; once seeking,
// the completion signal must arrive within the timeout or the request is
// abandoned silently.
func (c *Controller) SeekTo(target float64) *Request {
	c.mu.Lock()
	c.gen++
	req := &Request{c: c, gen: c.gen, target: target, state: StateIdle, done: make(chan struct{})}
	if c.closed {
		req.state = StateSuperseded
		close(req.done)
		c.mu.Unlock()
		return req
	}
	stale := c.supersedeLocked()
	c.cur = req
	c.mu.Unlock()
	cancelAll(stale)

	logger.WithFields(logrus.Fields{
		"target":     target,
		"generation": req.gen,
	}).Debug("Seek requested")

	if c.el.ReadyState() < HaveCurrentData {
		if !c.transition(req, StateIdle, StateWaitingForReadiness) {
			return req
		}
		sub := c.el.OnReady(func() { c.onReady(req) })
		c.adopt(req, sub, StateWaitingForReadiness)
		return req
	}

	c.startSeek(req, StateIdle)
	return req
}

func (c *Controller) onReady(req *Request) {
	c.mu.Lock()
	if c.cur != req || req.state != StateWaitingForReadiness {
		c.mu.Unlock()
		return
	}
	subs := req.takeLocked()
	c.mu.Unlock()
	cancelAll(subs)

	c.startSeek(req, StateWaitingForReadiness)
}

func (c *Controller) startSeek(req *Request, from SeekState) {
	if !c.transition(req, from, StateSeeking) {
		return
	}

	c.el.Pause()
	sub := c.el.OnSeeked(func() { c.onSeeked(req) })
	if !c.adopt(req, sub, StateSeeking) {
		return
	}

	c.mu.Lock()
	if c.cur == req && req.state == StateSeeking {
		req.timer = c.afterFunc(c.timeout, func() { c.onTimeout(req) })
	}
	c.mu.Unlock()

	c.el.SetCurrentTime(req.target)
}

func (c *Controller) onSeeked(req *Request) {
	c.mu.Lock()
	if c.cur != req || req.state != StateSeeking {
		c.mu.Unlock()
		return
	}
	subs := req.finishLocked(StateSettled)
	c.mu.Unlock()
	cancelAll(subs)

	// some pipelines resume for a frame right after seeking
	c.el.Pause()

	logger.WithFields(logrus.Fields{
		"target":     req.target,
		"generation": req.gen,
	}).Debug("Seek settled")
}

func (c *Controller) onTimeout(req *Request) {
	c.mu.Lock()
	if c.cur != req || req.state != StateSeeking {
		c.mu.Unlock()
		return
	}
	subs := req.finishLocked(StateAbandoned)
	hook := c.onAbandon
	c.mu.Unlock()
	cancelAll(subs)

	logger.WithFields(logrus.Fields{
		"target":     req.target,
		"generation": req.gen,
		"timeout":    c.timeout,
	}).Debug("Seek abandoned: no completion signal")

	if hook != nil {
		hook(req.target)
	}
}

// transition moves req from one state to another if it is still current
func (c *Controller) transition(req *Request, from, to SeekState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != req || req.state != from {
		return false
	}
	req.state = to
	return true
}

// adopt attaches sub to req while req remains current in state want;
// otherwise the subscription is canceled straight away
func (c *Controller) adopt(req *Request, sub Subscription, want SeekState) bool {
	c.mu.Lock()
	if c.cur == req && req.state == want {
		req.subs = append(req.subs, sub)
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()
	sub.Cancel()
	return false
}

func (c *Controller) supersedeLocked() []Subscription {
	if c.cur == nil || c.cur.state.Terminal() {
		return nil
	}
	return c.cur.finishLocked(StateSuperseded)
}

// Status reports the current request, if any
func (c *Controller) Status() (state SeekState, target float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return StateIdle, 0
	}
	return c.cur.state, c.cur.target
}

// ActiveSubscriptions counts listeners held for the current request
func (c *Controller) ActiveSubscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return 0
	}
	return len(c.cur.subs)
}

// Close cancels any in-flight request. Later SeekTo calls are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	stale := c.supersedeLocked()
	c.mu.Unlock()
	cancelAll(stale)
}

// Target returns the requested position in seconds
func (r *Request) Target() float64 { return r.target }

// State returns the request's current state
func (r *Request) State() SeekState {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	return r.state
}

// Done is closed once the request settles, is abandoned or is superseded
func (r *Request) Done() <-chan struct{} { return r.done }

func (r *Request) takeLocked() []Subscription {
	subs := r.subs
	r.subs = nil
	return subs
}

func (r *Request) finishLocked(final SeekState) []Subscription {
	r.state = final
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	close(r.done)
	return r.takeLocked()
}

func cancelAll(subs []Subscription) {
	for _, s := range subs {
		s.Cancel()
	}
}
