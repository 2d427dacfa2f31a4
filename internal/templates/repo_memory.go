package templates

import (
	"context"
	"sync"

	"resume-builder/resume/model"
)

// MemoryRepo is an in-memory catalog.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	data  map[string]model.Template
}

// NewMemoryRepo constructs a MemoryRepo holding templates in the given order.
func NewMemoryRepo(seed ...model.Template) *MemoryRepo {
	r := &MemoryRepo{data: make(map[string]model.Template, len(seed))}
	for _, t := range seed {
		r.Put(t)
	}
	return r
}

// Put adds or replaces a template.
func (r *MemoryRepo) Put(t model.Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	r.data[t.ID] = t
}

// Remove deletes a template. Documents that reference it fall back to defaults.
func (r *MemoryRepo) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return
	}
	delete(r.data, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// List returns templates in insertion order.
func (r *MemoryRepo) List(ctx context.Context) ([]model.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.data[id])
	}
	return out, nil
}

// Get returns a template by id.
func (r *MemoryRepo) Get(ctx context.Context, id string) (model.Template, error) {
	if err := ctx.Err(); err != nil {
		return model.Template{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.data[id]
	if !ok {
		return model.Template{}, ErrNotFound
	}
	return t, nil
}
