// Package config defines the process configuration and how it is loaded.
//
// Values are layered from defaults, an optional YAML file and EPP_*
// environment variables. Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/epp/internal/domain/scoring"
)

// Columns maps export header names to record fields.
type Columns struct {
	Team              string `koanf:"team"`
	EvaluatedLastName string `koanf:"evaluated_last_name"`
	EvaluatedSurname  string `koanf:"evaluated_surname"`
	EvaluatedEmail    string `koanf:"evaluated_email"`
	EvaluatorLastName string `koanf:"evaluator_last_name"`
	EvaluatorSurname  string `koanf:"evaluator_surname"`
	Rating            string `koanf:"rating"`
	Override          string `koanf:"override"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// MinScale and MaxScale bound a single aspect rating.
	MinScale int `koanf:"min_scale"`
	MaxScale int `koanf:"max_scale"`

	// Preset names a grading scheme (ELE400, ELE795). When set it replaces
	// MinScale and MaxScale.
	Preset string `koanf:"preset"`

	// Addr is the HTTP listen address used by serve.
	Addr string `koanf:"addr"`

	// MaxUploadBytes caps the size of an uploaded export.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// ReportCapacity bounds the number of reports kept in memory by serve.
	ReportCapacity int `koanf:"report_capacity"`

	// SheetName is the worksheet title of generated workbooks.
	SheetName string `koanf:"sheet_name"`

	Columns Columns `koanf:"columns"`
}

// DefaultColumns are the headers of the workshop "export des évaluations
// (sans multiligne)" file.
func DefaultColumns() Columns {
	return Columns{
		Team:              "Groupe",
		EvaluatedLastName: "Nom_évalué",
		EvaluatedSurname:  "Prenom_évalué",
		EvaluatedEmail:    "Courriel_évalué",
		EvaluatorLastName: "Nom_évaluateur",
		EvaluatorSurname:  "Prenom_évaluateur",
		Rating:            "Note_aspect",
		Override:          "Note_modif",
	}
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		MinScale:       scoring.DefaultScale.Min,
		MaxScale:       scoring.DefaultScale.Max,
		Addr:           ":9080",
		MaxUploadBytes: 16 << 20,
		ReportCapacity: 256,
		SheetName:      "Sommaire de l'EPP",
		Columns:        DefaultColumns(),
	}
}

// Scale resolves the effective scale: the preset when one is set, min/max
// otherwise.
func (c *Config) Scale() (scoring.Scale, error) {
	if strings.TrimSpace(c.Preset) != "" {
		s, err := scoring.Preset(c.Preset)
		if err != nil {
			return scoring.Scale{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return s, nil
	}
	s, err := scoring.NewScale(c.MinScale, c.MaxScale)
	if err != nil {
		return scoring.Scale{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s, nil
}

// Validate checks every field that can be wrong.
func (c *Config) Validate() error {
	if _, err := c.Scale(); err != nil {
		return err
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	if c.ReportCapacity <= 0 {
		return fmt.Errorf("%w: report_capacity must be positive", ErrInvalidConfig)
	}
	if c.SheetName == "" {
		return fmt.Errorf("%w: sheet_name must not be empty", ErrInvalidConfig)
	}
	for name, v := range map[string]string{
		"team":                c.Columns.Team,
		"evaluated_last_name": c.Columns.EvaluatedLastName,
		"evaluated_surname":   c.Columns.EvaluatedSurname,
		"evaluator_last_name": c.Columns.EvaluatorLastName,
		"evaluator_surname":   c.Columns.EvaluatorSurname,
		"rating":              c.Columns.Rating,
	} {
		if v == "" {
			return fmt.Errorf("%w: columns.%s must not be empty", ErrInvalidConfig, name)
		}
	}
	return nil
}
