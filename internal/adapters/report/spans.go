// Package report renders a scored cohort as a workbook, a text dump or a
// JSON view.
package report

import "github.com/okian/epp/internal/domain/model"

// firstDataRow is the sheet row of the first student; row 1 is the header.
const firstDataRow = 2

// Span is the inclusive range of sheet rows a team occupies.
type Span struct {
	Team  string
	First int
	Last  int
}

// Rows returns the number of rows in the span.
func (s Span) Rows() int { return s.Last - s.First + 1 }

// Spans returns each team's rows in the summary sheet, in team order.
// Teams without students get no span.
func Spans(c *model.Cohort) []Span {
	spans := make([]Span, 0, c.Len())
	row := firstDataRow
	for _, t := range c.Teams() {
		if t.Len() == 0 {
			continue
		}
		spans = append(spans, Span{Team: t.Name, First: row, Last: row + t.Len() - 1})
		row += t.Len()
	}
	return spans
}
