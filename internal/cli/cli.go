// Package cli wires the epp subcommands: convert, serve and sample.
package cli

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/okian/epp/internal/config"
	"github.com/okian/epp/internal/domain/scoring"
	"github.com/okian/epp/pkg/logger"
)

// ErrUsage reports a command line that cannot be run.
var ErrUsage = errors.New("usage")

// env carries what every subcommand needs.
type env struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	log    logger.Logger
}

// Run loads the configuration, initializes logging and runs the subcommand
// named by args.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	log := logger.Named("cli")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	e := &env{cfg: cfg, stdout: stdout, stderr: stderr, log: log}
	return e.root().ParseAndRun(ctx, args)
}

func (e *env) root() *ffcli.Command {
	fs := e.flagSet("epp")
	return &ffcli.Command{
		Name:       "epp",
		ShortUsage: "epp <subcommand> [flags] [args...]",
		ShortHelp:  "Score peer evaluations exported from the workshop module.",
		FlagSet:    fs,
		Subcommands: []*ffcli.Command{
			e.convertCommand(),
			e.serveCommand(),
			e.sampleCommand(),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}
}

func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// scaleFlags registers -ELE400, -ELE795, -min and -max, defaulting to the
// configured scale.
type scaleFlags struct {
	ele400   *bool
	ele795   *bool
	minScale *int
	maxScale *int
}

func (e *env) scaleFlags(fs *flag.FlagSet) (*scaleFlags, error) {
	def, err := e.cfg.Scale()
	if err != nil {
		return nil, err
	}
	return &scaleFlags{
		ele400:   fs.Bool(scoring.PresetELE400, false, "use the ELE400 scheme (min 1, max 5)"),
		ele795:   fs.Bool(scoring.PresetELE795, false, "use the ELE795 scheme (min 0, max 3)"),
		minScale: fs.Int("min", def.Min, "minimum rating of an aspect (0 or 1)"),
		maxScale: fs.Int("max", def.Max, "maximum rating of an aspect (2 to 5)"),
	}, nil
}

// resolve returns the selected scale. A preset flag overrides -min and -max.
func (f *scaleFlags) resolve() (scoring.Scale, error) {
	switch {
	case *f.ele400 && *f.ele795:
		return scoring.Scale{}, errors.Join(ErrUsage, errors.New("-ELE400 and -ELE795 are mutually exclusive"))
	case *f.ele400:
		return scoring.Preset(scoring.PresetELE400)
	case *f.ele795:
		return scoring.Preset(scoring.PresetELE795)
	}
	return scoring.NewScale(*f.minScale, *f.maxScale)
}
