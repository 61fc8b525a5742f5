package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anime-shed/localens-go/pkg/models"
)

// DefaultCapacity bounds how many results a MemoryRepository keeps
const DefaultCapacity = 100

type entry struct {
	summary Summary
	result  *models.AnalysisResult
}

// MemoryRepository is an in-process ResultRepository. The oldest result is
// evicted once capacity is reached.
type MemoryRepository struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string
	capacity int
	now      func() time.Time
	onRemove []func(id string)
}

// NewMemoryRepository creates a repository holding up to capacity results.
// Non-positive capacity uses DefaultCapacity.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryRepository{
		entries:  make(map[string]*entry),
		capacity: capacity,
		now:      time.Now,
	}
}

// OnRemove registers fn to run after a result is evicted or deleted.
// Hooks run outside the repository lock.
func (r *MemoryRepository) OnRemove(fn func(id string)) {
	r.mu.Lock()
	r.onRemove = append(r.onRemove, fn)
	r.mu.Unlock()
}

// Save stores result under a new id
func (r *MemoryRepository) Save(ctx context.Context, result *models.AnalysisResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if result == nil {
		return "", ErrInvalidResult
	}

	id := uuid.NewString()
	e := &entry{
		summary: Summary{
			ID:          id,
			StoredAt:    r.now(),
			Provider:    result.Provider,
			InputType:   result.InputType,
			FileCount:   len(result.Results),
			TotalIssues: len(result.AllIssues()),
		},
		result: result,
	}

	var evicted []string
	r.mu.Lock()
	r.entries[id] = e
	r.order = append(r.order, id)
	for len(r.order) > r.capacity {
		evicted = append(evicted, r.order[0])
		delete(r.entries, r.order[0])
		r.order = r.order[1:]
	}
	hooks := r.onRemove
	r.mu.Unlock()

	r.removed(hooks, evicted...)
	return id, nil
}

// Get retrieves a stored result
func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return e.result, nil
}

// List returns summaries, newest first
func (r *MemoryRepository) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.entries[r.order[i]].summary)
	}
	return out, nil
}

// Delete removes a stored result
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	if _, ok := r.entries[id]; !ok {
		r.mu.Unlock()
		return ErrResultNotFound
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	hooks := r.onRemove
	r.mu.Unlock()

	r.removed(hooks, id)
	return nil
}

func (r *MemoryRepository) removed(hooks []func(string), ids ...string) {
	for _, id := range ids {
		for _, fn := range hooks {
			fn(id)
		}
	}
}
