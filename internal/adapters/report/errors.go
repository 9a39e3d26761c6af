package report

import "errors"

var (
	// ErrNotScored is returned when a renderer receives a cohort that the
	// score engine has not completed.
	ErrNotScored = errors.New("cohort is not scored")

	// ErrRender wraps failures of the underlying writer.
	ErrRender = errors.New("render report")
)
