package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/epp/internal/adapters/export"
	"github.com/okian/epp/internal/adapters/report"
	"github.com/okian/epp/internal/adapters/repository"
	service "github.com/okian/epp/internal/app"
	"github.com/okian/epp/internal/domain/hierarchy"
	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/internal/domain/scoring"
	"github.com/okian/epp/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const header = "Groupe;Nom_évalué;Prenom_évalué;Courriel_évalué;Note_aspect;Note_modif;Nom_évaluateur;Prenom_évaluateur\n"

// exportOf builds an export where each student is rated by one peer.
func exportOf(rows ...string) *strings.Reader {
	return strings.NewReader(header + strings.Join(rows, "\n") + "\n")
}

func row(team, evaluated string, rating int, override string) string {
	return fmt.Sprintf("%s;%s;%s;%s@etsmtl.ca;%d;%s;peer;peer", team, evaluated, evaluated, evaluated, rating, override)
}

func TestService_Evaluate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with default options", t, func() {
		svc := service.New()

		Convey("Then the default scale is 1..5", func() {
			So(svc.Scale(), ShouldResemble, scoring.DefaultScale)
		})

		Convey("When evaluating two teams", func() {
			src := exportOf(
				row("T1", "a", 5, "0"), row("T1", "a", 5, "0"),
				row("T1", "b", 3, "0"), row("T1", "b", 3, "0"),
				row("T2", "c", 4, ""),
			)
			c, err := svc.Evaluate(ctx, src, scoring.DefaultScale)

			Convey("Then the cohort is scored", func() {
				So(err, ShouldBeNil)
				So(c.Scored(), ShouldBeTrue)
				So(c.NEvaluated, ShouldEqual, 3)
				So(c.Groupings, ShouldResemble, []bool{true, true, false})
				So(c.Teams()[0].Average, ShouldEqual, 80.0)
				So(c.Teams()[1].Students()[0].Factor, ShouldEqual, 1.0)
			})
		})

		Convey("When a student carries a manual note with a decimal comma", func() {
			src := exportOf(
				row("T1", "a", 5, "70,5"),
				row("T1", "b", 3, "0"),
			)
			c, err := svc.Evaluate(ctx, src, scoring.DefaultScale)

			Convey("Then the override wins", func() {
				So(err, ShouldBeNil)
				a := c.Teams()[0].Students()[0]
				So(a.Modified, ShouldBeTrue)
				So(a.Note, ShouldEqual, 70.5)
			})
		})
	})
}

func TestService_EvaluateErrors(t *testing.T) {
	ctx := context.Background()
	svc := service.New()

	Convey("Given an export with only a header", t, func() {
		_, err := svc.Evaluate(ctx, exportOf(), scoring.DefaultScale)

		Convey("Then the input is reported empty", func() {
			So(errors.Is(err, hierarchy.ErrEmptyInput), ShouldBeTrue)
		})
	})

	Convey("Given a non-numeric rating", t, func() {
		src := strings.NewReader(header + "T1;a;a;a@x;abc;0;peer;peer\n")
		_, err := svc.Evaluate(ctx, src, scoring.DefaultScale)

		Convey("Then the record is reported with its line", func() {
			var mre *hierarchy.MalformedRecordError
			So(errors.As(err, &mre), ShouldBeTrue)
			So(mre.Line, ShouldEqual, 2)
			So(mre.Field, ShouldEqual, hierarchy.FieldRating)
		})
	})

	Convey("Given an export missing a column", t, func() {
		_, err := svc.Evaluate(ctx, strings.NewReader("Groupe\nT1\n"), scoring.DefaultScale)

		Convey("Then the header is rejected", func() {
			So(errors.Is(err, export.ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given an invalid scale", t, func() {
		_, err := svc.Evaluate(ctx, exportOf(row("T1", "a", 3, "0")), scoring.Scale{Min: 1, Max: 9})

		Convey("Then nothing is read", func() {
			So(errors.Is(err, scoring.ErrInvalidScale), ShouldBeTrue)
		})
	})

	Convey("Given a team whose notes are all zero", t, func() {
		_, err := svc.Evaluate(ctx, exportOf(row("T1", "a", 1, "0")), scoring.Scale{Min: 0, Max: 3})

		Convey("Then the division by zero surfaces", func() {
			So(errors.Is(err, model.ErrDivisionByZero), ShouldBeTrue)
		})
	})
}

func TestService_Reports(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a small store", t, func() {
		svc := service.New(
			service.WithStore(repository.NewMemoryStore(repository.WithCapacity(1))),
			service.WithSheetName("EPP"),
		)

		Convey("When submitting an export", func() {
			ele795 := scoring.Scale{Min: 0, Max: 3}
			r, err := svc.Submit(ctx, exportOf(row("T1", "a", 3, "0")), ele795)
			So(err, ShouldBeNil)

			Convey("Then it can be fetched back", func() {
				got, err := svc.Report(ctx, r.ID)
				So(err, ShouldBeNil)
				So(got.Scale, ShouldResemble, ele795)
				So(got.Cohort.Teams()[0].Students()[0].Note, ShouldAlmostEqual, 200.0/3, 1e-9)
				So(got.Cohort.NEvaluated, ShouldEqual, 1)
				So(svc.Reports(ctx), ShouldEqual, 1)
			})

			Convey("Then it renders to a workbook with the configured sheet", func() {
				var buf bytes.Buffer
				So(svc.WriteXLSX(ctx, &buf, r.Cohort), ShouldBeNil)

				f, err := excelize.OpenReader(&buf)
				So(err, ShouldBeNil)
				defer f.Close()
				So(f.GetSheetList(), ShouldResemble, []string{"EPP"})
			})

			Convey("Then a failed submission stores nothing", func() {
				_, err := svc.Submit(ctx, exportOf(), scoring.DefaultScale)
				So(err, ShouldNotBeNil)
				So(svc.Reports(ctx), ShouldEqual, 1)
			})
		})

		Convey("When asking for an unknown report", func() {
			_, err := svc.Report(ctx, "nope")

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When rendering an unscored cohort", func() {
			err := svc.WriteXLSX(ctx, &bytes.Buffer{}, model.NewCohort())

			Convey("Then it is refused", func() {
				So(errors.Is(err, report.ErrNotScored), ShouldBeTrue)
			})
		})
	})
}
