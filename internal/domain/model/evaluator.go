package model

import (
	"fmt"
	"slices"
)

// Evaluator is a student who rated an evaluated peer. It holds one integer
// rating per evaluation aspect, in source order.
type Evaluator struct {
	LastName string
	Surname  string

	// Score is the evaluator's rating of the peer normalized to 0..100.
	// It is only meaningful after Compute succeeded.
	Score float64

	ratings []int
}

// NewEvaluator creates an evaluator without ratings.
func NewEvaluator(lastName, surname string) *Evaluator {
	return &Evaluator{LastName: lastName, Surname: surname}
}

// AddRating appends an aspect rating.
func (e *Evaluator) AddRating(rating int) {
	e.ratings = append(e.ratings, rating)
}

// Ratings returns a copy of the aspect ratings.
func (e *Evaluator) Ratings() []int {
	return slices.Clone(e.ratings)
}

// Len returns the number of aspect ratings.
func (e *Evaluator) Len() int { return len(e.ratings) }

// Name returns "LastName Surname".
func (e *Evaluator) Name() string { return e.LastName + " " + e.Surname }

// Compute normalizes the rating sum to a 0..100 score and stores it.
//
// Exports always start aspect ratings at 1. When the scale starts at 0 every
// rating is shifted down by one before summing.
func (e *Evaluator) Compute(minScale, maxScale int) (float64, error) {
	if maxScale == 0 {
		return 0, fmt.Errorf("evaluator %q: %w: max scale is 0", e.Name(), ErrDivisionByZero)
	}
	if len(e.ratings) == 0 {
		return 0, fmt.Errorf("evaluator %q: %w: no ratings", e.Name(), ErrDivisionByZero)
	}

	offset := 1
	if minScale == 1 {
		offset = 0
	}

	total := 0
	for _, r := range e.ratings {
		total += r - offset
	}

	e.Score = float64(total) * 100 / float64(maxScale*len(e.ratings))
	return e.Score, nil
}
