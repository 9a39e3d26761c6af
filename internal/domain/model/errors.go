package model

import "errors"

// Sentinel kinds for score computation errors.
var (
	// ErrDivisionByZero is returned when a score would divide by an empty
	// rating set, a zero scale or a zero team average.
	ErrDivisionByZero = errors.New("division by zero")
)
