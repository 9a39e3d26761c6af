package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/epp/internal/adapters/export"
	"github.com/okian/epp/internal/adapters/report"
	"github.com/okian/epp/internal/adapters/repository"
	"github.com/okian/epp/internal/domain/hierarchy"
	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/internal/domain/scoring"
	"github.com/okian/epp/pkg/logger"
)

const (
	reportsPrefix = "/v1/reports/"
	xlsxSuffix    = ".xlsx"
	xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportsHandler handles export uploads and report reads.
type ReportsHandler struct {
	deps           Dependencies
	maxUploadBytes int64
	logger         logger.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies, maxUploadBytes int64, l logger.Logger) *ReportsHandler {
	return &ReportsHandler{deps: deps, maxUploadBytes: maxUploadBytes, logger: l}
}

type submitResponse struct {
	ID         string `json:"id"`
	NEvaluated int    `json:"n_evaluated"`
	Teams      int    `json:"teams"`
	Scale      string `json:"scale"`
	Groupings  []bool `json:"groupings"`
}

// HandlePostReport handles POST /v1/reports?min=&max=&preset= with the
// export as body.
func (h *ReportsHandler) HandlePostReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_report"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	scale, err := scaleFromQuery(r.URL.Query(), h.deps.Scale())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scale", wrapKind(op, ErrBadRequest, err))
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	rep, err := h.deps.Submit(r.Context(), body, scale)
	if err != nil {
		status, code, kind := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "submit report", logger.Error(err))
		}
		writeError(w, status, code, wrapKind(op, kind, err))
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		ID:         rep.ID,
		NEvaluated: rep.Cohort.NEvaluated,
		Teams:      rep.Cohort.Len(),
		Scale:      rep.Scale.String(),
		Groupings:  rep.Cohort.Groupings,
	})
}

// HandleGetReport handles GET /v1/reports/{id} and GET /v1/reports/{id}.xlsx.
func (h *ReportsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, reportsPrefix)
	asXLSX := strings.HasSuffix(id, xlsxSuffix)
	id = strings.TrimSuffix(id, xlsxSuffix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	rep, err := h.deps.Report(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	if !asXLSX {
		view, err := report.NewView(rep.Cohort)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, reportResponse{ID: rep.ID, Scale: rep.Scale.String(), CohortView: view})
		return
	}

	var buf bytes.Buffer
	if err := h.deps.WriteXLSX(r.Context(), &buf, rep.Cohort); err != nil {
		h.logger.Error(r.Context(), "render workbook", logger.String("id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", xlsxMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "epp-"+id+xlsxSuffix))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type reportResponse struct {
	ID    string `json:"id"`
	Scale string `json:"scale"`
	report.CohortView
}

// scaleFromQuery resolves the scale of a request. A preset overrides min and
// max; a missing bound falls back to def.
func scaleFromQuery(q url.Values, def scoring.Scale) (scoring.Scale, error) {
	if p := q.Get("preset"); p != "" {
		return scoring.Preset(p)
	}
	s := def
	for _, b := range []struct {
		key string
		dst *int
	}{{"min", &s.Min}, {"max", &s.Max}} {
		v := q.Get(b.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return scoring.Scale{}, fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = n
	}
	return s, s.Validate()
}

// classify maps a pipeline error to a status, an error code and a kind.
func classify(err error) (int, string, error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", ErrTooLarge
	case errors.Is(err, hierarchy.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input", ErrBadRequest
	case errors.Is(err, hierarchy.ErrMalformedRecord):
		return http.StatusBadRequest, "malformed_record", ErrBadRequest
	case errors.Is(err, export.ErrMissingColumn), errors.Is(err, export.ErrRead):
		return http.StatusBadRequest, "malformed_export", ErrBadRequest
	case errors.Is(err, scoring.ErrInvalidScale):
		return http.StatusBadRequest, "invalid_scale", ErrBadRequest
	case errors.Is(err, model.ErrDivisionByZero):
		return http.StatusUnprocessableEntity, "division_by_zero", ErrUnprocessable
	default:
		return http.StatusInternalServerError, "internal_error", err
	}
}
