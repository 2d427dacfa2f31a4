package usage

import "errors"

var (
	// ErrInvalidDownload is returned for a download without owner, document or format.
	ErrInvalidDownload = errors.New("invalid download record")
)
