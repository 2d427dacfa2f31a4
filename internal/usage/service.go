package usage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type store interface {
	Record(ctx context.Context, d Download) error
	Summary(ctx context.Context, userID string) (Summary, error)
}

// Service records export downloads per document owner.
type Service struct {
	store store
	Now   func() time.Time
}

// NewService constructs a Service with in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Record stores one completed download.
func (s *Service) Record(ctx context.Context, userID, resumeID, format string, shared bool) error {
	userID = strings.TrimSpace(userID)
	resumeID = strings.TrimSpace(resumeID)
	format = strings.ToLower(strings.TrimSpace(format))
	if userID == "" || resumeID == "" || format == "" {
		return ErrInvalidDownload
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.store.Record(ctx, Download{
		ID:        uuid.NewString(),
		UserID:    userID,
		ResumeID:  resumeID,
		Format:    format,
		Shared:    shared,
		CreatedAt: now().UTC(),
	})
}

// Summary returns the owner's download totals.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	return s.store.Summary(ctx, userID)
}

// Count returns the owner's total downloads.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	sum, err := s.store.Summary(ctx, userID)
	if err != nil {
		return 0, err
	}
	return sum.Total, nil
}
