// Package scoring turns a built cohort into scored notes, team averages and
// per-student factors.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/pkg/logger"
	"github.com/okian/epp/pkg/metrics"
)

// Engine scores a fully built cohort in place.
type Engine struct {
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a score engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute validates the scale and scores the cohort bottom-up: evaluators,
// then student notes, then team averages and factors, then cohort groupings.
// Any failure leaves the cohort unscored.
func (e *Engine) Compute(ctx context.Context, cohort *model.Cohort, scale Scale) error {
	if err := scale.Validate(); err != nil {
		metrics.RecordPipelineError("compute", "invalid_scale")
		return err
	}
	if cohort == nil || cohort.Len() == 0 {
		metrics.RecordPipelineError("compute", "not_built")
		return ErrNotBuilt
	}

	start := time.Now()
	if err := cohort.Compute(scale.Min, scale.Max); err != nil {
		metrics.RecordPipelineError("compute", "division_by_zero")
		return fmt.Errorf("compute scores: %w", err)
	}
	elapsed := time.Since(start)
	metrics.RecordComputeLatency(float64(elapsed.Microseconds()) / 1000)
	metrics.UpdateCohortSize(cohort.Len(), cohort.NEvaluated)

	if e.logger != nil {
		e.logger.Debug(ctx, "cohort scored",
			logger.Int("teams", cohort.Len()),
			logger.Int("evaluated", cohort.NEvaluated),
			logger.String("scale", scale.String()),
			logger.Any("elapsed", elapsed))
	}
	return nil
}
