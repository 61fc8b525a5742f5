// Package session ties one analysis result to its view state, the shared
// video element, the overlay geometry and the local previews. Every input is
// serialized through one lock, like events on a UI loop.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/internal/media"
	"github.com/anime-shed/localens-go/internal/observer"
	"github.com/anime-shed/localens-go/internal/overlay"
	"github.com/anime-shed/localens-go/internal/preview"
	"github.com/anime-shed/localens-go/pkg/geometry"
	"github.com/anime-shed/localens-go/pkg/issueindex"
	"github.com/anime-shed/localens-go/pkg/models"
)

// Options configures a Session
type Options struct {
	SeekTimeout time.Duration
	Revoker     preview.Revoker
	Publisher   observer.Subject
}

// Session is the owned state of one result view
type Session struct {
	// loop serializes Dispatch so effects run in event order
	loop     sync.Mutex
	mu       sync.Mutex
	state    overlay.State
	seeker   *media.Controller
	tracker  *geometry.Tracker
	previews *preview.Registry
	pub      observer.Subject
	timeout  time.Duration
	duration float64
}

// New creates an empty session
func New(opts Options) *Session {
	timeout := opts.SeekTimeout
	if timeout <= 0 {
		timeout = media.DefaultSeekTimeout
	}
	return &Session{
		tracker:  geometry.NewTracker(),
		previews: preview.NewRegistry(opts.Revoker),
		pub:      opts.Publisher,
		timeout:  timeout,
	}
}

// AttachVideo binds the single video element shared by seeking and the
// overlay. A previously attached element's controller is closed.
func (s *Session) AttachVideo(el media.Element) {
	ctrl := media.NewController(el,
		media.WithTimeout(s.timeout),
		media.WithAbandonHandler(s.seekAbandoned),
	)

	s.mu.Lock()
	old := s.seeker
	s.seeker = ctrl
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.Dispatch(overlay.VideoPresenceChanged{Present: true})
}

// DetachVideo releases the video element and any pending seek
func (s *Session) DetachVideo() {
	s.mu.Lock()
	old := s.seeker
	s.seeker = nil
	s.duration = 0
	s.mu.Unlock()

	if old != nil {
		old.Close()
		s.tracker.MediaUnloaded()
	}
	s.Dispatch(overlay.VideoPresenceChanged{Present: false})
}

// Load replaces the current result. Previews of the previous result are
// released and new ones created for every file the result references.
func (s *Session) Load(result *models.AnalysisResult) overlay.State {
	if result == nil {
		return s.Dispatch(overlay.ResultCleared{})
	}

	s.mu.Lock()
	hasVideo := s.seeker != nil
	s.mu.Unlock()

	if err := s.previews.ClearAll(); err != nil {
		logger.WithError(err).Warn("Failed to release previous previews")
	}
	for _, fr := range result.Results {
		if _, err := s.previews.Create(fr.Filename); err != nil {
			logger.WithError(err).WithField("file", fr.Filename).Warn("Failed to create preview")
		}
	}
	return s.Dispatch(overlay.ResultLoaded{Result: result, HasVideo: hasVideo})
}

// Dispatch applies ev and performs the resulting effects
func (s *Session) Dispatch(ev overlay.Event) overlay.State {
	s.loop.Lock()
	defer s.loop.Unlock()

	s.mu.Lock()
	next, effects := overlay.Reduce(s.state, ev)
	s.state = next
	seeker := s.seeker
	s.mu.Unlock()

	for _, fx := range effects {
		switch e := fx.(type) {
		case overlay.SeekEffect:
			if seeker == nil {
				continue
			}
			logger.WithFields(logrus.Fields{
				"issue_id": e.IssueID,
				"seconds":  e.Seconds,
			}).Debug("Seeking to issue")
			seeker.SeekTo(e.Seconds)
		}
	}
	return next
}

// Click hit-tests the overlay at a container pixel and toggles the issue under it
func (s *Session) Click(x, y float64) (overlay.State, bool) {
	hit, ok := overlay.HitTest(s.Shapes(), x, y)
	if !ok {
		return s.State(), false
	}
	return s.Dispatch(overlay.IssueClicked{ID: hit.IssueID}), true
}

// State returns a snapshot of the view state
func (s *Session) State() overlay.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resize records a new container size
func (s *Session) Resize(container geometry.Size) {
	s.tracker.Resize(container)
}

// MediaLoaded records the intrinsic media size once it is known
func (s *Session) MediaLoaded(intrinsic geometry.Size) {
	s.tracker.MediaLoaded(intrinsic)
}

// Shapes renders the current overlay. It is empty until geometry is known.
func (s *Session) Shapes() []overlay.Shape {
	g, ok := s.tracker.Current()
	if !ok {
		return nil
	}
	st := s.State()
	return overlay.Render(g, st.OverlayIssues(), st.ActiveID)
}

// SetMediaDuration records the authoritative video duration in seconds
func (s *Session) SetMediaDuration(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds > 0 {
		s.duration = seconds
	}
}

// Duration is the media duration when known, else the timestamp estimate
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.duration > 0 {
		return s.duration
	}
	return issueindex.EstimateDuration(s.state.Issues)
}

// Seek reports the state of the current seek request
func (s *Session) Seek() (media.SeekState, float64) {
	s.mu.Lock()
	seeker := s.seeker
	s.mu.Unlock()
	if seeker == nil {
		return media.StateIdle, 0
	}
	return seeker.Status()
}

// Previews exposes the preview handles owned by this session
func (s *Session) Previews() *preview.Registry {
	return s.previews
}

// Clear drops the result and releases every preview
func (s *Session) Clear() error {
	s.Dispatch(overlay.ResultCleared{})
	return s.previews.ClearAll()
}

// Close tears the session down
func (s *Session) Close() error {
	s.DetachVideo()
	return s.previews.Close()
}

func (s *Session) seekAbandoned(target float64) {
	if s.pub == nil {
		return
	}
	s.pub.NotifyObservers(context.Background(), observer.Event{
		EventType: observer.SeekAbandoned,
		Metadata:  map[string]interface{}{"target": target},
	})
}
