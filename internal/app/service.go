// Package service sequences the pipeline: the export is read, grouped into
// a cohort, scored, and only then rendered or stored.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/epp/internal/adapters/export"
	"github.com/okian/epp/internal/adapters/report"
	"github.com/okian/epp/internal/adapters/repository"
	"github.com/okian/epp/internal/config"
	"github.com/okian/epp/internal/domain/hierarchy"
	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/internal/domain/scoring"
	"github.com/okian/epp/pkg/logger"
	"github.com/okian/epp/pkg/metrics"
)

// Service runs evaluations and keeps scored reports.
type Service struct {
	scale     scoring.Scale
	columns   config.Columns
	sheetName string
	store     repository.Store
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScale sets the scale used when a request does not name one.
func WithScale(scale scoring.Scale) Option {
	return func(s *Service) {
		s.scale = scale
	}
}

// WithColumns sets the expected export headers.
func WithColumns(c config.Columns) Option {
	return func(s *Service) {
		s.columns = c
	}
}

// WithSheetName sets the title of generated worksheets.
func WithSheetName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.sheetName = name
		}
	}
}

// WithStore sets the report store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a Service with the default scale, headers and an
// in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		scale:     scoring.DefaultScale,
		columns:   config.DefaultColumns(),
		sheetName: report.DefaultSheetName,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Scale returns the default scale.
func (s *Service) Scale() scoring.Scale { return s.scale }

// Evaluate reads src and returns the scored cohort. Nothing is returned
// unless every phase succeeded.
func (s *Service) Evaluate(ctx context.Context, src io.Reader, scale scoring.Scale) (*model.Cohort, error) {
	if err := scale.Validate(); err != nil {
		metrics.RecordPipelineError("compute", "invalid_scale")
		return nil, err
	}

	records, err := export.NewReader(
		export.WithColumns(s.columns),
		export.WithLogger(s.logger),
	).Read(ctx, src)
	if err != nil {
		metrics.RecordPipelineError("read", readErrorKind(err))
		return nil, err
	}
	metrics.RecordRowsRead(len(records))

	start := time.Now()
	cohort, stats, err := hierarchy.Build(ctx, records, hierarchy.WithLogger(s.logger))
	if err != nil {
		metrics.RecordPipelineError("build", buildErrorKind(err))
		return nil, err
	}
	metrics.RecordBuildLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordOverrides(stats.Overrides)

	engine := scoring.NewEngine(scoring.WithLogger(s.logger))
	if err := engine.Compute(ctx, cohort, scale); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "evaluation scored",
		logger.Int("records", stats.Records),
		logger.Int("teams", stats.Teams),
		logger.Int("evaluated", stats.Evaluated),
		logger.Int("overrides", stats.Overrides),
		logger.String("scale", scale.String()))
	return cohort, nil
}

// Submit evaluates src and stores the result.
func (s *Service) Submit(ctx context.Context, src io.Reader, scale scoring.Scale) (repository.Report, error) {
	cohort, err := s.Evaluate(ctx, src, scale)
	if err != nil {
		return repository.Report{}, err
	}
	r, err := s.store.Save(ctx, repository.Report{Scale: scale, Cohort: cohort})
	if err != nil {
		return repository.Report{}, fmt.Errorf("save report: %w", err)
	}
	s.logger.Debug(ctx, "report stored", logger.String("id", r.ID))
	return r, nil
}

// Report returns a stored report.
func (s *Service) Report(ctx context.Context, id string) (repository.Report, error) {
	return s.store.Get(ctx, id)
}

// Reports returns the number of stored reports.
func (s *Service) Reports(ctx context.Context) int {
	return s.store.Count(ctx)
}

// WriteXLSX renders a scored cohort as the summary workbook.
func (s *Service) WriteXLSX(ctx context.Context, dst io.Writer, cohort *model.Cohort) error {
	w := report.NewXLSXWriter(
		report.WithSheetName(s.sheetName),
		report.WithLogger(s.logger),
	)
	if err := w.Write(ctx, dst, cohort); err != nil {
		metrics.RecordPipelineError("render", "xlsx")
		return err
	}
	return nil
}

func readErrorKind(err error) string {
	if errors.Is(err, export.ErrMissingColumn) {
		return "missing_column"
	}
	return "read"
}

func buildErrorKind(err error) string {
	switch {
	case errors.Is(err, hierarchy.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, hierarchy.ErrMalformedRecord):
		return "malformed_record"
	default:
		return "unknown"
	}
}
