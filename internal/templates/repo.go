package templates

import (
	"context"

	"resume-builder/resume/model"
)

// Repo reads the template catalog.
type Repo interface {
	List(ctx context.Context) ([]model.Template, error)
	Get(ctx context.Context, id string) (model.Template, error)
}
