package resumes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	data    map[string]Resume // id -> resume
	byShare map[string]string // shareId -> id
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:    make(map[string]Resume),
		byShare: make(map[string]string),
	}
}

// Create stores a new resume.
func (r *MemoryRepo) Create(ctx context.Context, res Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[res.ID]; ok {
		return ErrConflict
	}
	if res.Revision == 0 {
		res.Revision = 1
	}
	r.data[res.ID] = clone(res)
	if res.ShareID != "" {
		r.byShare[res.ShareID] = res.ID
	}
	return nil
}

// Get returns a live resume owned by userID.
func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[id]
	if !ok || res.UserID != userID || res.DeletedAt != nil {
		return Resume{}, ErrNotFound
	}
	return clone(res), nil
}

// GetByShareID returns a live public resume by share id.
func (r *MemoryRepo) GetByShareID(ctx context.Context, shareID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byShare[shareID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	res := r.data[id]
	if !res.IsPublic || res.DeletedAt != nil {
		return Resume{}, ErrNotFound
	}
	return clone(res), nil
}

// Update performs a compare-and-swap on the revision.
func (r *MemoryRepo) Update(ctx context.Context, res Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[res.ID]
	if !ok || cur.UserID != res.UserID || cur.DeletedAt != nil {
		return Resume{}, ErrNotFound
	}
	if cur.Revision != res.Revision {
		return Resume{}, ErrConflict
	}
	if res.ShareID != "" && res.ShareID != cur.ShareID {
		if other, taken := r.byShare[res.ShareID]; taken && other != res.ID {
			return Resume{}, ErrConflict
		}
		r.byShare[res.ShareID] = res.ID
	}
	res.Share.ViewCount = cur.Share.ViewCount
	res.CreatedAt = cur.CreatedAt
	res.Revision = cur.Revision + 1
	r.data[res.ID] = clone(res)
	return clone(res), nil
}

// SoftDelete marks a resume deleted. Deleting twice is ErrNotFound.
func (r *MemoryRepo) SoftDelete(ctx context.Context, userID, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok || res.UserID != userID || res.DeletedAt != nil {
		return ErrNotFound
	}
	res.DeletedAt = &at
	res.UpdatedAt = at
	res.Revision++
	r.data[id] = res
	return nil
}

// List returns one page of a user's live resumes and the total match count.
func (r *MemoryRepo) List(ctx context.Context, userID string, q ListQuery) ([]Resume, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	q = q.Normalize()
	needle := strings.ToLower(q.Search)

	r.mu.RLock()
	var matched []Resume
	for _, res := range r.data {
		if res.UserID != userID || res.DeletedAt != nil {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(res.Title), needle) {
			continue
		}
		matched = append(matched, res)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if q.Order == "desc" {
			return listLess(matched[j], matched[i], q.Sort)
		}
		return listLess(matched[i], matched[j], q.Sort)
	})

	total := len(matched)
	start := q.Offset()
	if start >= total {
		return []Resume{}, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	out := make([]Resume, 0, end-start)
	for _, res := range matched[start:end] {
		out = append(out, clone(res))
	}
	return out, total, nil
}

// listLess orders by the sort field, then by id for a stable page boundary.
func listLess(a, b Resume, field string) bool {
	switch field {
	case "title":
		if a.Title != b.Title {
			return a.Title < b.Title
		}
	case "createdAt":
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	default:
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	}
	return a.ID < b.ID
}

// Stats counts live resumes and those updated since the given time.
func (r *MemoryRepo) Stats(ctx context.Context, userID string, since time.Time) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var st Stats
	for _, res := range r.data {
		if res.UserID != userID || res.DeletedAt != nil {
			continue
		}
		st.Total++
		if !res.UpdatedAt.Before(since) {
			st.RecentUpdates++
		}
	}
	return st, nil
}

// IncrementViewCount bumps the view counter without touching the revision.
func (r *MemoryRepo) IncrementViewCount(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok || res.DeletedAt != nil {
		return 0, ErrNotFound
	}
	res.Share.ViewCount++
	r.data[id] = res
	return res.Share.ViewCount, nil
}
