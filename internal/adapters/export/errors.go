package export

import "errors"

// Sentinel kinds for export reading errors.
var (
	ErrRead          = errors.New("read export")
	ErrMissingColumn = errors.New("missing column")
)
