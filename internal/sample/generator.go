// Package sample generates synthetic peer-evaluation exports.
package sample

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/okian/epp/internal/config"
	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/internal/domain/scoring"
	"github.com/okian/epp/pkg/logger"
)

// Defaults for a generated cohort.
const (
	DefaultTeams    = 4
	DefaultTeamSize = 4
	DefaultAspects  = 5
)

// Manual notes fall in this range.
const (
	overrideMin = 50.0
	overrideMax = 100.0
)

var aspects = []string{
	"Organisation du travail d'équipe",
	"Présence",
	"Communication",
	"Contribution technique",
	"Respect des échéances",
	"Qualité du travail",
	"Initiative",
}

// Generator produces exports in workshop order: team, evaluated student,
// evaluator, aspect. Every member of a team rates every member, self
// included.
type Generator struct {
	teams        int
	teamSize     int
	aspects      int
	overrideProb float64
	scale        scoring.Scale
	seed         uint64
	logger       logger.Logger
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithTeams sets the number of teams.
func WithTeams(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.teams = n
		}
	}
}

// WithTeamSize sets the number of students per team.
func WithTeamSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.teamSize = n
		}
	}
}

// WithAspects sets the number of rated aspects per evaluator.
func WithAspects(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.aspects = n
		}
	}
}

// WithOverrideProbability sets the chance that a student carries a manual
// note. Values are clamped to [0, 1].
func WithOverrideProbability(p float64) Option {
	return func(g *Generator) {
		g.overrideProb = min(max(p, 0), 1)
	}
}

// WithScale sets the rating scale.
func WithScale(s scoring.Scale) Option {
	return func(g *Generator) {
		g.scale = s
	}
}

// WithSeed makes the output reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithLogger sets the generator logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a generator with the default shape on the 1..5 scale.
func New(opts ...Option) *Generator {
	g := &Generator{
		teams:    DefaultTeams,
		teamSize: DefaultTeamSize,
		aspects:  DefaultAspects,
		scale:    scoring.DefaultScale,
		seed:     1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Records returns the generated rows. Line numbers start at 2, after the
// header.
func (g *Generator) Records() []model.Record {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	low := max(g.scale.Min, 1)

	records := make([]model.Record, 0, g.teams*g.teamSize*g.teamSize*g.aspects)
	line := 2
	for t := 0; t < g.teams; t++ {
		team := fmt.Sprintf("EQUIPE%d", t+1)
		members := make([]string, g.teamSize)
		for i := range members {
			members[i] = fmt.Sprintf("etudiant%d", t*g.teamSize+i+1)
		}

		for _, evaluated := range members {
			override := "0"
			if g.overrideProb > 0 && rng.Float64() < g.overrideProb {
				note := overrideMin + rng.Float64()*(overrideMax-overrideMin)
				override = strings.Replace(strconv.FormatFloat(note, 'f', 1, 64), ".", ",", 1)
			}
			for _, evaluator := range members {
				for a := 0; a < g.aspects; a++ {
					records = append(records, model.Record{
						Line:              line,
						Team:              team,
						EvaluatedLastName: evaluated,
						EvaluatedSurname:  evaluated,
						EvaluatedEmail:    evaluated + "@etsmtl.ca",
						EvaluatorLastName: evaluator,
						EvaluatorSurname:  evaluator,
						Rating:            strconv.Itoa(low + rng.IntN(g.scale.Max-low+1)),
						Override:          override,
					})
					line++
				}
			}
		}
	}
	return records
}

// exportHeader is the full column list of a workshop export.
var exportHeader = []string{
	"Groupe", "Nom_évalué", "Prenom_évalué", "Courriel_évalué", "Bareme",
	"Note_aspect", "Note_calc", "Note_modif", "Note", "MNG", "Facteur",
	"Commentaires", "Nom_évaluateur", "Prenom_évaluateur", "Commentaires_generaux",
}

// Write renders the generated rows as a semicolon-delimited export using
// the given column names.
func (g *Generator) Write(ctx context.Context, w io.Writer, cols config.Columns) error {
	header := append([]string(nil), exportHeader...)
	rename := map[string]string{
		"Groupe":            cols.Team,
		"Nom_évalué":        cols.EvaluatedLastName,
		"Prenom_évalué":     cols.EvaluatedSurname,
		"Courriel_évalué":   cols.EvaluatedEmail,
		"Note_aspect":       cols.Rating,
		"Note_modif":        cols.Override,
		"Nom_évaluateur":    cols.EvaluatorLastName,
		"Prenom_évaluateur": cols.EvaluatorSurname,
	}
	for i, h := range header {
		if v := rename[h]; v != "" {
			header[i] = v
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	records := g.Records()
	row := make([]string, len(header))
	for i, r := range records {
		aspect := aspects[(r.Line-2)%g.aspects%len(aspects)]
		row[0], row[1], row[2], row[3], row[4] = r.Team, r.EvaluatedLastName, r.EvaluatedSurname, r.EvaluatedEmail, aspect
		row[5], row[6], row[7], row[8], row[9], row[10] = r.Rating, "", r.Override, "", "", ""
		row[11], row[12], row[13], row[14] = "", r.EvaluatorLastName, r.EvaluatorSurname, ""
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}

	if g.logger != nil {
		g.logger.Debug(ctx, "sample export written",
			logger.Int("teams", g.teams),
			logger.Int("team_size", g.teamSize),
			logger.Int("rows", len(records)))
	}
	return nil
}
