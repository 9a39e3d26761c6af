// Package export reads the semicolon-delimited peer-evaluation export into
// flat records.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/okian/epp/internal/config"
	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/pkg/logger"
)

// Delimiter separates fields in the export.
const Delimiter = ';'

// Reader turns an export into records.
type Reader struct {
	columns config.Columns
	logger  logger.Logger
}

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithColumns overrides the expected header names.
func WithColumns(c config.Columns) Option {
	return func(r *Reader) {
		r.columns = c
	}
}

// WithLogger sets the reader logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a reader expecting the default workshop headers.
func NewReader(opts ...Option) *Reader {
	r := &Reader{columns: config.DefaultColumns()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read cleans src and returns its rows in source order. An export holding
// only a header yields no records and no error.
func (r *Reader) Read(ctx context.Context, src io.Reader) ([]model.Record, error) {
	var cleaned bytes.Buffer
	if err := Clean(&cleaned, src); err != nil {
		return nil, err
	}

	cr := csv.NewReader(&cleaned)
	cr.Comma = Delimiter
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrRead, err)
	}

	idx, err := r.index(header)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		line, _ := cr.FieldPos(0)
		if blank(row) {
			continue
		}
		records = append(records, idx.record(row, line))
	}

	if r.logger != nil {
		r.logger.Debug(ctx, "export read", logger.Int("records", len(records)))
	}
	return records, nil
}

// columnIndex holds the position of each known column, -1 when absent.
type columnIndex struct {
	team, evaluatedLastName, evaluatedSurname, evaluatedEmail int
	evaluatorLastName, evaluatorSurname, rating, override     int
}

func (r *Reader) index(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	lookup := func(name string, required bool) (int, error) {
		i, ok := pos[name]
		if !ok {
			if required {
				return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
			}
			return -1, nil
		}
		return i, nil
	}

	var (
		idx  columnIndex
		errs []error
	)
	for _, c := range []struct {
		dst      *int
		name     string
		required bool
	}{
		{&idx.team, r.columns.Team, true},
		{&idx.evaluatedLastName, r.columns.EvaluatedLastName, true},
		{&idx.evaluatedSurname, r.columns.EvaluatedSurname, true},
		{&idx.evaluatedEmail, r.columns.EvaluatedEmail, false},
		{&idx.evaluatorLastName, r.columns.EvaluatorLastName, true},
		{&idx.evaluatorSurname, r.columns.EvaluatorSurname, true},
		{&idx.rating, r.columns.Rating, true},
		{&idx.override, r.columns.Override, false},
	} {
		i, err := lookup(c.name, c.required)
		if err != nil {
			errs = append(errs, err)
		}
		*c.dst = i
	}
	return idx, errors.Join(errs...)
}

func (idx columnIndex) record(row []string, line int) model.Record {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}
	return model.Record{
		Line:              line,
		Team:              field(idx.team),
		EvaluatedLastName: field(idx.evaluatedLastName),
		EvaluatedSurname:  field(idx.evaluatedSurname),
		EvaluatedEmail:    field(idx.evaluatedEmail),
		EvaluatorLastName: field(idx.evaluatorLastName),
		EvaluatorSurname:  field(idx.evaluatorSurname),
		Rating:            field(idx.rating),
		Override:          field(idx.override),
	}
}

func blank(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}
