// Package hierarchy groups a flat, ordered record stream into the
// cohort → team → evaluated → evaluator hierarchy.
//
// Grouping is positional: a new group starts whenever a key differs from the
// previous record's key. Rows of one team, student or evaluator must be
// contiguous; non-contiguous rows sharing a key produce separate groups.
package hierarchy

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/pkg/logger"
)

// Field names used in MalformedRecordError.
const (
	FieldTeam              = "team"
	FieldEvaluatedLastName = "evaluated_last_name"
	FieldEvaluatedSurname  = "evaluated_surname"
	FieldEvaluatorLastName = "evaluator_last_name"
	FieldEvaluatorSurname  = "evaluator_surname"
	FieldRating            = "rating"
	FieldOverride          = "override"
)

// Stats summarizes a build.
type Stats struct {
	Records    int
	Teams      int
	Evaluated  int
	Evaluators int
	Ratings    int
	Overrides  int
}

// lastSeen holds the grouping keys of the previous record.
type lastSeen struct {
	team      string
	evaluated string
	evaluator string
}

// Builder consumes records one at a time and grows a cohort.
// A Builder is single-use and not safe for concurrent use.
type Builder struct {
	cohort    *model.Cohort
	team      *model.Team
	evaluated *model.Evaluated
	evaluator *model.Evaluator
	last      lastSeen
	stats     Stats
	logger    logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLogger sets the logger used for debug traces.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a builder with an empty cohort.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{cohort: model.NewCohort()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add places one record in the hierarchy.
func (b *Builder) Add(ctx context.Context, rec model.Record) error {
	if err := validate(rec); err != nil {
		return err
	}

	override, err := parseOverride(rec)
	if err != nil {
		return err
	}
	overridden := override > 0
	var rating int
	if !overridden {
		if rating, err = parseRating(rec); err != nil {
			return err
		}
	}

	evaluatedKey := key(rec.EvaluatedLastName, rec.EvaluatedSurname)
	evaluatorKey := key(rec.EvaluatorLastName, rec.EvaluatorSurname)

	teamAdded := false
	if b.team == nil || rec.Team != b.last.team {
		b.team = model.NewTeam(rec.Team)
		b.cohort.AddTeam(b.team)
		b.stats.Teams++
		teamAdded = true
		b.debug(ctx, "team started", logger.String("team", rec.Team), logger.Int("line", rec.Line))
	}

	evaluatedAdded := false
	if teamAdded || evaluatedKey != b.last.evaluated {
		b.evaluated = model.NewEvaluated(rec.EvaluatedLastName, rec.EvaluatedSurname, rec.EvaluatedEmail)
		b.team.AddStudent(b.evaluated)
		b.stats.Evaluated++
		evaluatedAdded = true
	}

	if evaluatedAdded || evaluatorKey != b.last.evaluator {
		b.evaluator = model.NewEvaluator(rec.EvaluatorLastName, rec.EvaluatorSurname)
		b.evaluated.AddEvaluator(b.evaluator)
		b.stats.Evaluators++
	}

	b.last = lastSeen{team: rec.Team, evaluated: evaluatedKey, evaluator: evaluatorKey}
	b.stats.Records++

	if overridden {
		b.evaluated.Override(override)
		b.stats.Overrides++
		b.debug(ctx, "note overridden",
			logger.String("evaluated", b.evaluated.Name()),
			logger.Float64("note", override),
			logger.Int("line", rec.Line))
	} else {
		b.evaluator.AddRating(rating)
		b.stats.Ratings++
	}
	return nil
}

// Cohort returns the built, unscored cohort. It fails with ErrEmptyInput when
// no record was added.
func (b *Builder) Cohort() (*model.Cohort, error) {
	if b.stats.Records == 0 {
		return nil, ErrEmptyInput
	}
	return b.cohort, nil
}

// Stats returns counters for the records added so far.
func (b *Builder) Stats() Stats { return b.stats }

// Build groups records into a cohort in a single forward pass.
func Build(ctx context.Context, records []model.Record, opts ...Option) (*model.Cohort, Stats, error) {
	if len(records) == 0 {
		return nil, Stats{}, ErrEmptyInput
	}

	b := NewBuilder(opts...)
	for _, rec := range records {
		if err := b.Add(ctx, rec); err != nil {
			return nil, b.stats, err
		}
	}

	c, err := b.Cohort()
	return c, b.stats, err
}

func (b *Builder) debug(ctx context.Context, msg string, fields ...logger.Field) {
	if b.logger != nil {
		b.logger.Debug(ctx, msg, fields...)
	}
}

// key joins a last name and a surname. The separator cannot appear in
// cleaned export text.
func key(lastName, surname string) string {
	return lastName + "\x00" + surname
}

func validate(rec model.Record) error {
	required := []struct {
		field string
		value string
	}{
		{FieldTeam, rec.Team},
		{FieldEvaluatedLastName, rec.EvaluatedLastName},
		{FieldEvaluatedSurname, rec.EvaluatedSurname},
		{FieldEvaluatorLastName, rec.EvaluatorLastName},
		{FieldEvaluatorSurname, rec.EvaluatorSurname},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &MalformedRecordError{Line: rec.Line, Field: r.field, Reason: "missing value"}
		}
	}
	return nil
}

func parseRating(rec model.Record) (int, error) {
	v := strings.TrimSpace(rec.Rating)
	if v == "" {
		return 0, &MalformedRecordError{Line: rec.Line, Field: FieldRating, Reason: "missing value"}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &MalformedRecordError{Line: rec.Line, Field: FieldRating, Reason: "not an integer", Err: err}
	}
	return n, nil
}

// parseOverride accepts a decimal point or a decimal comma. Empty means no
// override. NaN and infinities are rejected.
func parseOverride(rec model.Record) (float64, error) {
	v := strings.TrimSpace(rec.Override)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil {
		return 0, &MalformedRecordError{Line: rec.Line, Field: FieldOverride, Reason: "not a number", Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &MalformedRecordError{Line: rec.Line, Field: FieldOverride, Reason: "not a finite number"}
	}
	return f, nil
}
