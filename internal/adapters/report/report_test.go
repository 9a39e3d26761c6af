package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/epp/internal/adapters/report"
	"github.com/okian/epp/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func student(last string, ratings ...int) *model.Evaluated {
	s := model.NewEvaluated(last, last, last+"@etsmtl.ca")
	e := model.NewEvaluator("peer", "peer")
	for _, r := range ratings {
		e.AddRating(r)
	}
	s.AddEvaluator(e)
	return s
}

// scoredCohort holds T1 {a: 100, b: 60} and T2 {c: 80} on the 1..5 scale.
func scoredCohort() *model.Cohort {
	c := model.NewCohort()
	t1 := model.NewTeam("T1")
	t1.AddStudent(student("a", 5, 5))
	t1.AddStudent(student("b", 3, 3))
	t2 := model.NewTeam("T2")
	t2.AddStudent(student("c", 4))
	c.AddTeam(t1)
	c.AddTeam(t2)
	So(c.Compute(1, 5), ShouldBeNil)
	return c
}

func TestSpans(t *testing.T) {
	Convey("Given a cohort of a pair and a single", t, func() {
		c := scoredCohort()

		Convey("Then spans follow student counts from row 2", func() {
			So(report.Spans(c), ShouldResemble, []report.Span{
				{Team: "T1", First: 2, Last: 3},
				{Team: "T2", First: 4, Last: 4},
			})
			So(report.Spans(c)[0].Rows(), ShouldEqual, 2)
		})
	})

	Convey("Given an empty cohort", t, func() {
		Convey("Then there are no spans", func() {
			So(report.Spans(model.NewCohort()), ShouldBeEmpty)
		})
	})
}

func TestXLSXWriter(t *testing.T) {
	ctx := context.Background()

	Convey("Given a scored cohort", t, func() {
		c := scoredCohort()
		var buf bytes.Buffer
		err := report.NewXLSXWriter().Write(ctx, &buf, c)
		So(err, ShouldBeNil)

		f, err := excelize.OpenReader(&buf)
		So(err, ShouldBeNil)
		defer f.Close()

		Convey("Then the summary sheet carries the header and one row per student", func() {
			So(f.GetSheetList(), ShouldResemble, []string{report.DefaultSheetName})

			rows, err := f.GetRows(report.DefaultSheetName)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 4)
			So(rows[0], ShouldResemble, report.Header)
			So(rows[1][:4], ShouldResemble, []string{"T1", "a", "a", "a@etsmtl.ca"})
			So(rows[3][0], ShouldEqual, "T2")
		})

		Convey("Then numeric cells are stored raw and shown with two decimals", func() {
			raw, err := f.GetCellValue(report.DefaultSheetName, "E2", excelize.Options{RawCellValue: true})
			So(err, ShouldBeNil)
			So(raw, ShouldEqual, "100")

			shown, err := f.GetCellValue(report.DefaultSheetName, "G3")
			So(err, ShouldBeNil)
			So(shown, ShouldEqual, "0.75")
		})

		Convey("Then the student grade formula points at the team's first row", func() {
			formula, err := f.GetCellFormula(report.DefaultSheetName, "I3")
			So(err, ShouldBeNil)
			So(strings.TrimPrefix(formula, "="), ShouldEqual, "G3*H2")

			formula, err = f.GetCellFormula(report.DefaultSheetName, "I4")
			So(err, ShouldBeNil)
			So(strings.TrimPrefix(formula, "="), ShouldEqual, "G4*H4")
		})

		Convey("Then the team grade column is merged over multi-student teams only", func() {
			merged, err := f.GetMergeCells(report.DefaultSheetName)
			So(err, ShouldBeNil)
			So(len(merged), ShouldEqual, 1)
			So(merged[0].GetStartAxis(), ShouldEqual, "H2")
			So(merged[0].GetEndAxis(), ShouldEqual, "H3")
		})
	})

	Convey("Given a custom sheet name", t, func() {
		var buf bytes.Buffer
		err := report.NewXLSXWriter(report.WithSheetName("Summary"), report.WithBanding(false)).
			Write(ctx, &buf, scoredCohort())
		So(err, ShouldBeNil)

		f, err := excelize.OpenReader(&buf)
		So(err, ShouldBeNil)
		defer f.Close()

		Convey("Then the sheet uses it", func() {
			So(f.GetSheetList(), ShouldResemble, []string{"Summary"})
		})
	})

	Convey("Given a cohort that was never scored", t, func() {
		c := model.NewCohort()
		c.AddTeam(model.NewTeam("T1"))
		err := report.NewXLSXWriter().Write(ctx, &bytes.Buffer{}, c)

		Convey("Then nothing is rendered", func() {
			So(errors.Is(err, report.ErrNotScored), ShouldBeTrue)
		})
	})
}

func TestWriteText(t *testing.T) {
	Convey("Given a scored cohort", t, func() {
		var buf bytes.Buffer
		So(report.WriteText(&buf, scoredCohort()), ShouldBeNil)
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

		Convey("Then the dump lists every level", func() {
			So(lines[0], ShouldEqual, "Number of students evaluated: 3")
			So(lines[1], ShouldEqual, "Groupings: [true true false]")
			So(lines[2], ShouldEqual, "Team: T1, average score=80.00")
			So(lines[3], ShouldEqual, "  Evaluated: a, a, a@etsmtl.ca, note=100.0, factor=1.25, mod=false")
			So(lines[4], ShouldEqual, "    Evaluator: peer, peer, score=100.00, [5 5]")
			So(len(lines), ShouldEqual, 10)
		})
	})
}

func TestNewView(t *testing.T) {
	Convey("Given a scored cohort", t, func() {
		v, err := report.NewView(scoredCohort())
		So(err, ShouldBeNil)

		Convey("Then the view mirrors the hierarchy with row spans", func() {
			So(v.NEvaluated, ShouldEqual, 3)
			So(len(v.Teams), ShouldEqual, 2)
			So(v.Teams[0].First, ShouldEqual, 2)
			So(v.Teams[0].Last, ShouldEqual, 3)
			So(v.Teams[1].Students[0].Evaluators[0].Ratings, ShouldResemble, []int{4})
		})

		Convey("Then it encodes with snake_case keys", func() {
			raw, err := json.Marshal(v)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"n_evaluated":3`)
			So(string(raw), ShouldContainSubstring, `"groupings":[true,true,false]`)
		})
	})

	Convey("Given an unscored cohort", t, func() {
		_, err := report.NewView(model.NewCohort())

		Convey("Then the view is refused", func() {
			So(err, ShouldEqual, report.ErrNotScored)
		})
	})
}
