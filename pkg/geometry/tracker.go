package geometry

import "sync"

// Tracker recomputes the contain-fit geometry whenever the container is
// resized or the media reports its intrinsic size (image load, video metadata).
type Tracker struct {
	mu        sync.RWMutex
	container Size
	media     Size
	current   Geometry
	ok        bool
}

// NewTracker creates a tracker with no known sizes
func NewTracker() *Tracker {
	return &Tracker{}
}

// Resize records a new container size
func (t *Tracker) Resize(container Size) (Geometry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.container = container
	return t.recompute()
}

// MediaLoaded records the intrinsic media size
func (t *Tracker) MediaLoaded(media Size) (Geometry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.media = media
	return t.recompute()
}

// MediaUnloaded forgets the media size; no geometry is produced until the next load
func (t *Tracker) MediaUnloaded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.media = Size{}
	t.current, t.ok = Geometry{}, false
}

// Current returns the last computed geometry
func (t *Tracker) Current() (Geometry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.ok
}

func (t *Tracker) recompute() (Geometry, bool) {
	t.current, t.ok = ContainFit(t.container, t.media)
	return t.current, t.ok
}
