package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/okian/epp/internal/adapters/report"
	service "github.com/okian/epp/internal/app"
	"github.com/okian/epp/pkg/logger"
)

const outputPermission = 0o644

func (e *env) convertCommand() *ffcli.Command {
	fs := e.flagSet("epp convert")
	scale, scaleErr := e.scaleFlags(fs)
	verbose := fs.Bool("v", false, "print the parameters and the scored hierarchy")

	return &ffcli.Command{
		Name:       "convert",
		ShortUsage: "epp convert [-ELE400|-ELE795] [-min N] [-max N] [-v] export.csv [out.xlsx]",
		ShortHelp:  "Convert an evaluation export into the summary workbook.",
		LongHelp: strings.TrimSpace(`
The export must come from "export des évaluations (sans multiligne)".
When out.xlsx is omitted the workbook takes the export's name with an .xlsx
suffix. -ELE400 and -ELE795 are mutually exclusive and override -min/-max.`),
		FlagSet: fs,
		Exec: func(ctx context.Context, args []string) error {
			if scaleErr != nil {
				return scaleErr
			}
			return e.convert(ctx, scale, *verbose, args)
		},
	}
}

func (e *env) convert(ctx context.Context, flags *scaleFlags, verbose bool, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: convert takes an export file and an optional output file", ErrUsage)
	}
	scale, err := flags.resolve()
	if err != nil {
		return err
	}

	input := args[0]
	output := strings.TrimSuffix(input, filepath.Ext(input)) + ".xlsx"
	if len(args) == 2 {
		output = args[1]
	}

	if verbose {
		logger.SetLevel(slog.LevelDebug)
		fmt.Fprintln(e.stdout, "Parameters")
		fmt.Fprintf(e.stdout, "  export : %s\n", input)
		fmt.Fprintf(e.stdout, "  output : %s\n", output)
		fmt.Fprintf(e.stdout, "  ELE400 : %t\n", *flags.ele400)
		fmt.Fprintf(e.stdout, "  ELE795 : %t\n", *flags.ele795)
		fmt.Fprintf(e.stdout, "  min    : %d\n", scale.Min)
		fmt.Fprintf(e.stdout, "  max    : %d\n", scale.Max)
		fmt.Fprintln(e.stdout)
	}

	fmt.Fprintln(e.stdout, capitalize(scale.Describe()))
	fmt.Fprintf(e.stdout, "Input file: %s\n", input)

	src, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer src.Close()

	svc := service.New(
		service.WithLogger(e.log),
		service.WithScale(scale),
		service.WithColumns(e.cfg.Columns),
		service.WithSheetName(e.cfg.SheetName),
	)
	cohort, err := svc.Evaluate(ctx, src, scale)
	if err != nil {
		return err
	}

	if verbose {
		if err := report.WriteText(e.stdout, cohort); err != nil {
			return err
		}
	}

	fmt.Fprintf(e.stdout, "Output file: %s\n", output)
	if err := writeFileAtomic(output, func(f *os.File) error {
		return svc.WriteXLSX(ctx, f, cohort)
	}); err != nil {
		return err
	}

	fmt.Fprintln(e.stdout, "Conversion completed successfully")
	return nil
}

// writeFileAtomic writes through a temporary file in the target directory and
// renames it over path on success.
func writeFileAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(outputPermission); err != nil {
		tmp.Close()
		return fmt.Errorf("create output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
