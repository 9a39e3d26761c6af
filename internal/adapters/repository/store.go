// Package repository keeps scored reports for the HTTP surface.
package repository

import (
	"context"
	"time"

	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/internal/domain/scoring"
)

// Report is one scored export.
type Report struct {
	ID        string
	Scale     scoring.Scale
	Cohort    *model.Cohort
	CreatedAt time.Time
}

// Store provides read/write access to scored reports.
type Store interface {
	// Save stores r and returns it with its id and creation time set.
	// Reports without an id get a random one.
	Save(ctx context.Context, r Report) (Report, error)

	// Get returns the report stored under id.
	// Returns ErrNotFound if the id is unknown or evicted.
	Get(ctx context.Context, id string) (Report, error)

	// Count returns the number of reports held.
	Count(ctx context.Context) int
}
