package model

import "fmt"

// Evaluated is a student rated by their teammates.
type Evaluated struct {
	LastName string
	Surname  string
	Email    string

	// Note is the mean of the evaluators' scores, or the override value when
	// Modified is set.
	Note float64

	// Factor is Note divided by the team average. Values outside the usual
	// 0.8..1.2 band are kept as computed.
	Factor float64

	// Modified reports that Note was entered manually and must not be
	// recomputed from evaluator data.
	Modified bool

	evaluators []*Evaluator
}

// NewEvaluated creates an evaluated student without evaluators.
func NewEvaluated(lastName, surname, email string) *Evaluated {
	return &Evaluated{LastName: lastName, Surname: surname, Email: email}
}

// AddEvaluator attaches an evaluator to the student.
func (s *Evaluated) AddEvaluator(e *Evaluator) {
	s.evaluators = append(s.evaluators, e)
}

// Evaluators returns the student's evaluators in source order. The slice must
// not be modified.
func (s *Evaluated) Evaluators() []*Evaluator { return s.evaluators }

// Len returns the number of evaluators.
func (s *Evaluated) Len() int { return len(s.evaluators) }

// Name returns "LastName Surname".
func (s *Evaluated) Name() string { return s.LastName + " " + s.Surname }

// Override replaces the note with a manually entered value. The last call
// wins.
func (s *Evaluated) Override(note float64) {
	s.Note = note
	s.Modified = true
}

// ComputeNote computes every evaluator score and stores their mean as the
// note. An overridden student keeps its note and its evaluators are left
// untouched.
func (s *Evaluated) ComputeNote(minScale, maxScale int) (float64, error) {
	if s.Modified {
		return s.Note, nil
	}
	if len(s.evaluators) == 0 {
		return 0, fmt.Errorf("evaluated %q: %w: no evaluators", s.Name(), ErrDivisionByZero)
	}

	total := 0.0
	for _, e := range s.evaluators {
		score, err := e.Compute(minScale, maxScale)
		if err != nil {
			return 0, fmt.Errorf("evaluated %q: %w", s.Name(), err)
		}
		total += score
	}

	s.Note = total / float64(len(s.evaluators))
	return s.Note, nil
}

func (s *Evaluated) computeFactor(average float64) {
	s.Factor = s.Note / average
}
