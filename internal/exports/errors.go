package exports

import "errors"

// ErrExportFailed covers renderer errors, timeouts and malformed output.
var ErrExportFailed = errors.New("export failed")
