package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrInvalidScale reports a min/max scale outside the supported domains.
	ErrInvalidScale = errors.New("invalid scale")
	// ErrNotBuilt reports a nil or empty cohort handed to the engine.
	ErrNotBuilt = errors.New("cohort not built")
)
