package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/okian/epp/internal/domain/model"
)

// WriteText dumps the cohort the way the verbose console output shows it.
func WriteText(dst io.Writer, c *model.Cohort) error {
	if c == nil {
		return ErrNotScored
	}
	w := bufio.NewWriter(dst)
	fmt.Fprintf(w, "Number of students evaluated: %d\n", c.NEvaluated)
	fmt.Fprintf(w, "Groupings: %v\n", c.Groupings)
	for _, t := range c.Teams() {
		fmt.Fprintf(w, "Team: %s, average score=%.2f\n", t.Name, t.Average)
		for _, s := range t.Students() {
			fmt.Fprintf(w, "  Evaluated: %s, %s, %s, note=%.1f, factor=%.2f, mod=%t\n",
				s.LastName, s.Surname, s.Email, s.Note, s.Factor, s.Modified)
			for _, e := range s.Evaluators() {
				fmt.Fprintf(w, "    Evaluator: %s, %s, score=%.2f, %v\n",
					e.LastName, e.Surname, e.Score, e.Ratings())
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
