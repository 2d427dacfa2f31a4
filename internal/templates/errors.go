package templates

import "errors"

var (
	// ErrNotFound is returned when no active template has the id.
	ErrNotFound = errors.New("template not found")
	// ErrInvalidID is returned for ids that cannot name a template.
	ErrInvalidID = errors.New("invalid template id")
)
