// Package preview owns local preview handles for uploaded files. Every handle
// is released exactly once: when it is replaced, removed, or when the
// registry is cleared or closed.
package preview

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/logger"
)

const urlScheme = "blob:localens/"

// Revoker releases the resource behind a handle URL
type Revoker interface {
	Revoke(url string) error
}

// RevokerFunc adapts a function to Revoker
type RevokerFunc func(url string) error

// Revoke calls f
func (f RevokerFunc) Revoke(url string) error { return f(url) }

// Handle is one live preview
type Handle struct {
	File string `json:"file"`
	URL  string `json:"url"`
}

// Registry maps file names to preview handles
type Registry struct {
	mu      sync.Mutex
	revoker Revoker
	byFile  map[string]string
	order   []string
	revoked map[string]struct{}
	closed  bool
}

// NewRegistry creates a registry that releases handles through r
func NewRegistry(r Revoker) *Registry {
	if r == nil {
		r = RevokerFunc(func(string) error { return nil })
	}
	return &Registry{
		revoker: r,
		byFile:  make(map[string]string),
		revoked: make(map[string]struct{}),
	}
}

// Create mints a handle for file. An existing handle for the same file is
// revoked first.
func (r *Registry) Create(file string) (Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Handle{}, errors.NewValidationError("preview registry is closed", nil)
	}
	url := urlScheme + uuid.NewString()
	old, replaced := r.byFile[file]
	r.byFile[file] = url
	if !replaced {
		r.order = append(r.order, file)
	}
	r.mu.Unlock()

	if replaced {
		if err := r.revoke(old); err != nil {
			return Handle{File: file, URL: url}, err
		}
	}
	return Handle{File: file, URL: url}, nil
}

// Get returns the live handle for file
func (r *Registry) Get(file string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	url, ok := r.byFile[file]
	if !ok {
		return Handle{}, false
	}
	return Handle{File: file, URL: url}, true
}

// Handles lists live handles in creation order
func (r *Registry) Handles() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Handle, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, Handle{File: f, URL: r.byFile[f]})
	}
	return out
}

// Remove revokes the handle for file
func (r *Registry) Remove(file string) error {
	r.mu.Lock()
	url, ok := r.byFile[file]
	if ok {
		r.dropLocked(file)
	}
	r.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("no preview for %q", file), nil)
	}
	return r.revoke(url)
}

// Release revokes a handle by URL. Releasing a URL twice is an error.
func (r *Registry) Release(url string) error {
	r.mu.Lock()
	file, live := "", false
	for f, u := range r.byFile {
		if u == url {
			file, live = f, true
			break
		}
	}
	if live {
		r.dropLocked(file)
	}
	_, known := r.revoked[url]
	r.mu.Unlock()

	if !live && !known {
		return errors.NewNotFoundError(fmt.Sprintf("unknown preview %s", url), nil)
	}
	return r.revoke(url)
}

// ClearAll revokes every live handle
func (r *Registry) ClearAll() error {
	r.mu.Lock()
	urls := make([]string, 0, len(r.order))
	for _, f := range r.order {
		urls = append(urls, r.byFile[f])
	}
	r.byFile = make(map[string]string)
	r.order = nil
	r.mu.Unlock()

	var firstErr error
	for _, u := range urls {
		if err := r.revoke(u); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close clears the registry and rejects further Create calls
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.ClearAll()
}

// Revoked lists released URLs, sorted
func (r *Registry) Revoked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.revoked))
	for u := range r.revoked {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) dropLocked(file string) {
	delete(r.byFile, file)
	for i, f := range r.order {
		if f == file {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// revoke releases url once; a second attempt is an error and never reaches
// the revoker
func (r *Registry) revoke(url string) error {
	r.mu.Lock()
	if _, done := r.revoked[url]; done {
		r.mu.Unlock()
		return errors.NewInternalError(fmt.Sprintf("preview %s already revoked", url), nil)
	}
	r.revoked[url] = struct{}{}
	r.mu.Unlock()

	if err := r.revoker.Revoke(url); err != nil {
		logger.WithError(err).WithField("url", url).Warn("Failed to revoke preview")
		return err
	}
	return nil
}
