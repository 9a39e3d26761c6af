package model

import "fmt"

// Team is a group of students who evaluated each other.
type Team struct {
	Name string

	// Average is the mean note of the team's evaluated students.
	Average float64

	students []*Evaluated
}

// NewTeam creates an empty team.
func NewTeam(name string) *Team {
	return &Team{Name: name}
}

// AddStudent attaches an evaluated student to the team.
func (t *Team) AddStudent(s *Evaluated) {
	t.students = append(t.students, s)
}

// Students returns the team's evaluated students in source order. The slice
// must not be modified.
func (t *Team) Students() []*Evaluated { return t.students }

// Len returns the number of evaluated students, which is also the number of
// report rows the team spans.
func (t *Team) Len() int { return len(t.students) }

// Compute scores every student, stores the team average and derives each
// student's factor. It returns the number of students processed.
func (t *Team) Compute(minScale, maxScale int) (int, error) {
	if len(t.students) == 0 {
		return 0, fmt.Errorf("team %q: %w: no evaluated students", t.Name, ErrDivisionByZero)
	}

	total := 0.0
	for _, s := range t.students {
		note, err := s.ComputeNote(minScale, maxScale)
		if err != nil {
			return 0, fmt.Errorf("team %q: %w", t.Name, err)
		}
		total += note
	}

	average := total / float64(len(t.students))
	if average == 0 {
		return 0, fmt.Errorf("team %q: %w: team average is 0", t.Name, ErrDivisionByZero)
	}
	t.Average = average

	for _, s := range t.students {
		s.computeFactor(average)
	}
	return len(t.students), nil
}
