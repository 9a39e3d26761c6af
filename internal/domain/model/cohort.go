package model

// Cohort is the top of the hierarchy: every team of one export.
type Cohort struct {
	// NEvaluated is the number of evaluated students across all teams.
	NEvaluated int

	// Groupings holds one flag per evaluated student, alternating once per
	// team boundary and starting at true. Renderers use it for banding.
	Groupings []bool

	teams  []*Team
	scored bool
}

// NewCohort creates an empty cohort.
func NewCohort() *Cohort {
	return &Cohort{}
}

// AddTeam appends a team.
func (c *Cohort) AddTeam(t *Team) {
	c.teams = append(c.teams, t)
}

// Teams returns the teams in source order. The slice must not be modified.
func (c *Cohort) Teams() []*Team { return c.teams }

// Len returns the number of teams.
func (c *Cohort) Len() int { return len(c.teams) }

// Scored reports whether the last Compute completed.
func (c *Cohort) Scored() bool { return c.scored }

// Compute scores every team in order, then rebuilds NEvaluated and Groupings.
// On error the cohort is left unscored with NEvaluated and Groupings cleared.
// Team and student values are meaningless while Scored is false.
func (c *Cohort) Compute(minScale, maxScale int) error {
	c.scored = false
	c.NEvaluated = 0
	c.Groupings = nil

	n := 0
	for _, t := range c.teams {
		count, err := t.Compute(minScale, maxScale)
		if err != nil {
			return err
		}
		n += count
	}

	c.NEvaluated = n
	c.Groupings = c.groupings()
	c.scored = true
	return nil
}

func (c *Cohort) groupings() []bool {
	out := make([]bool, 0, c.NEvaluated)
	state := true
	for _, t := range c.teams {
		for range t.students {
			out = append(out, state)
		}
		state = !state
	}
	return out
}
