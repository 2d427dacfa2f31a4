package resumes

import (
	"context"
	"strings"
	"time"
)

// Repo defines persistence operations for resumes. Every read excludes
// soft-deleted documents.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	Get(ctx context.Context, userID, id string) (Resume, error)
	GetByShareID(ctx context.Context, shareID string) (Resume, error)
	// Update writes r if the stored revision still equals r.Revision and
	// returns the stored aggregate with the bumped revision. A lost race is ErrConflict.
	Update(ctx context.Context, r Resume) (Resume, error)
	SoftDelete(ctx context.Context, userID, id string, at time.Time) error
	List(ctx context.Context, userID string, q ListQuery) ([]Resume, int, error)
	Stats(ctx context.Context, userID string, since time.Time) (Stats, error)
	// IncrementViewCount atomically bumps the share view counter.
	IncrementViewCount(ctx context.Context, id string) (int64, error)
}

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// Normalize clamps paging and whitelists sort fields.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	switch strings.TrimSpace(q.Sort) {
	case "createdAt", "created_at":
		q.Sort = "createdAt"
	case "title":
		q.Sort = "title"
	default:
		q.Sort = "updatedAt"
	}
	if strings.EqualFold(q.Order, "asc") {
		q.Order = "asc"
	} else {
		q.Order = "desc"
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset is the number of rows skipped before the page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
