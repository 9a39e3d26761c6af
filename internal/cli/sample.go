package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/okian/epp/internal/sample"
)

const submitTimeout = 30 * time.Second

func (e *env) sampleCommand() *ffcli.Command {
	fs := e.flagSet("epp sample")
	scale, scaleErr := e.scaleFlags(fs)
	var (
		teams    = fs.Int("teams", sample.DefaultTeams, "number of teams")
		size     = fs.Int("size", sample.DefaultTeamSize, "students per team")
		aspects  = fs.Int("aspects", sample.DefaultAspects, "aspects rated by each evaluator")
		override = fs.Float64("override", 0, "probability that a student carries a manual note")
		seed     = fs.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
		out      = fs.String("out", "", "write the export to this file instead of stdout")
		target   = fs.String("url", "", "post the export to a running server, e.g. http://localhost:9080")
	)

	return &ffcli.Command{
		Name:       "sample",
		ShortUsage: "epp sample [-teams N] [-size N] [-aspects N] [-override P] [-seed S] [-out f.csv | -url U]",
		ShortHelp:  "Generate a synthetic evaluation export.",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if scaleErr != nil {
				return scaleErr
			}
			if len(args) > 0 {
				return fmt.Errorf("%w: sample takes no arguments", ErrUsage)
			}
			s, err := scale.resolve()
			if err != nil {
				return err
			}

			g := sample.New(
				sample.WithTeams(*teams),
				sample.WithTeamSize(*size),
				sample.WithAspects(*aspects),
				sample.WithOverrideProbability(*override),
				sample.WithScale(s),
				sample.WithSeed(*seed),
				sample.WithLogger(e.log),
			)

			var buf bytes.Buffer
			if err := g.Write(ctx, &buf, e.cfg.Columns); err != nil {
				return err
			}

			if *target != "" {
				q := url.Values{"min": {strconv.Itoa(s.Min)}, "max": {strconv.Itoa(s.Max)}}
				res, err := sample.NewClient(*target, submitTimeout).Submit(ctx, &buf, q)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.stdout, "report %s: %d students in %d teams, scale %s\n", res.ID, res.NEvaluated, res.Teams, res.Scale)
				return nil
			}

			if *out != "" {
				return writeFileAtomic(*out, func(f *os.File) error {
					_, err := buf.WriteTo(f)
					return err
				})
			}
			_, err = buf.WriteTo(e.stdout)
			return err
		},
	}
}
