// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/epp/internal/adapters/repository"
	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/internal/domain/scoring"
	"github.com/okian/epp/pkg/logger"
)

// DefaultMaxUploadBytes bounds an uploaded export.
const DefaultMaxUploadBytes = 16 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Scale is used when a request names neither a preset nor min/max.
	Scale() scoring.Scale

	// Submit scores an export and stores the result.
	Submit(ctx context.Context, src io.Reader, scale scoring.Scale) (repository.Report, error)

	// Report returns a stored report or repository.ErrNotFound.
	Report(ctx context.Context, id string) (repository.Report, error)

	// Reports returns the number of stored reports.
	Reports(ctx context.Context) int

	// WriteXLSX renders a scored cohort as a workbook.
	WriteXLSX(ctx context.Context, dst io.Writer, cohort *model.Cohort) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	reportsHandler *ReportsHandler
}

// Option applies a configuration option to the Server.
type Option func(*options)

type options struct {
	maxUploadBytes int64
	logger         logger.Logger
}

// WithMaxUploadBytes bounds the size of an uploaded export.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := options{maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("api")
	}
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		reportsHandler: NewReportsHandler(deps, o.maxUploadBytes, o.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/v1/reports", MetricsMiddleware(s.reportsHandler.HandlePostReport, "reports"))
	mux.HandleFunc("/v1/reports/", MetricsMiddleware(s.reportsHandler.HandleGetReport, "report"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
