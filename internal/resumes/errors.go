package resumes

import "errors"

var (
	ErrNotFound        = errors.New("resume not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrVersionNotFound = errors.New("version not found")
	ErrConsentRequired = errors.New("explicit consent is required to make a resume public")
	ErrExpired         = errors.New("share link has expired")
	ErrUnauthorized    = errors.New("invalid share password")
	ErrForbidden       = errors.New("download is not allowed for this resume")
	ErrConflict        = errors.New("resume was modified concurrently")
)
