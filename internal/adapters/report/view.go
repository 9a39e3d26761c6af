package report

import "github.com/okian/epp/internal/domain/model"

// CohortView is the JSON shape of a scored cohort.
type CohortView struct {
	NEvaluated int        `json:"n_evaluated"`
	Groupings  []bool     `json:"groupings"`
	Teams      []TeamView `json:"teams"`
}

// TeamView is one team of a CohortView.
type TeamView struct {
	Name     string          `json:"name"`
	Average  float64         `json:"average"`
	First    int             `json:"first_row"`
	Last     int             `json:"last_row"`
	Students []EvaluatedView `json:"students"`
}

// EvaluatedView is one evaluated student.
type EvaluatedView struct {
	LastName   string          `json:"last_name"`
	Surname    string          `json:"surname"`
	Email      string          `json:"email,omitempty"`
	Note       float64         `json:"note"`
	Factor     float64         `json:"factor"`
	Modified   bool            `json:"modified"`
	Evaluators []EvaluatorView `json:"evaluators"`
}

// EvaluatorView is one evaluator's contribution.
type EvaluatorView struct {
	LastName string  `json:"last_name"`
	Surname  string  `json:"surname"`
	Score    float64 `json:"score"`
	Ratings  []int   `json:"ratings"`
}

// NewView builds the JSON view of a scored cohort.
func NewView(c *model.Cohort) (CohortView, error) {
	if c == nil || !c.Scored() {
		return CohortView{}, ErrNotScored
	}

	spans := Spans(c)
	v := CohortView{
		NEvaluated: c.NEvaluated,
		Groupings:  append([]bool(nil), c.Groupings...),
		Teams:      make([]TeamView, 0, len(spans)),
	}
	for i, t := range teamsWithStudents(c) {
		tv := TeamView{
			Name:     t.Name,
			Average:  t.Average,
			First:    spans[i].First,
			Last:     spans[i].Last,
			Students: make([]EvaluatedView, 0, t.Len()),
		}
		for _, s := range t.Students() {
			sv := EvaluatedView{
				LastName:   s.LastName,
				Surname:    s.Surname,
				Email:      s.Email,
				Note:       s.Note,
				Factor:     s.Factor,
				Modified:   s.Modified,
				Evaluators: make([]EvaluatorView, 0, s.Len()),
			}
			for _, e := range s.Evaluators() {
				sv.Evaluators = append(sv.Evaluators, EvaluatorView{
					LastName: e.LastName,
					Surname:  e.Surname,
					Score:    e.Score,
					Ratings:  e.Ratings(),
				})
			}
			tv.Students = append(tv.Students, sv)
		}
		v.Teams = append(v.Teams, tv)
	}
	return v, nil
}
