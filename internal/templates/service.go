package templates

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Service exposes the read-only template catalog.
type Service struct {
	Repo Repo
}

// ValidID reports whether id is well formed.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// List returns every active template.
func (s *Service) List(ctx context.Context) ([]model.Template, error) {
	return s.Repo.List(ctx)
}

// Get returns a template, failing with ErrInvalidID or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (model.Template, error) {
	id = strings.TrimSpace(id)
	if !ValidID(id) {
		return model.Template{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return s.Repo.Get(ctx, id)
}

// Resolve returns the template a document renders with. Absent, malformed,
// deleted or unreadable references fall back to model.DefaultTemplate.
func (s *Service) Resolve(ctx context.Context, id string) model.Template {
	if strings.TrimSpace(id) == "" {
		return model.DefaultTemplate()
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidID) {
			telemetry.Warn("templates.resolve.failed", map[string]any{"template_id": id, "error": err})
		}
		return model.DefaultTemplate()
	}
	return t
}
