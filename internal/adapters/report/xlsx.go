package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/pkg/logger"
)

// DefaultSheetName is the title of the summary worksheet.
const DefaultSheetName = "Sommaire de l'EPP"

// Header is the first row of the summary sheet.
var Header = []string{
	"Groupe", "Nom", "Prenom", "Courriel",
	"Note_EPP", "MNG", "Facteur", "Note_equipe", "Note_etudiant",
}

const (
	colTeamNote    = "H"
	colFactor      = "G"
	lastColumn     = "I"
	numberFormat   = 2 // built-in "0.00"
	bandFill       = "#DDEBF7"
	defaultSheetID = "Sheet1"
)

// numericColumns hold values formatted with two decimals.
var numericColumns = map[int]bool{5: true, 6: true, 7: true, 9: true}

// XLSXWriter renders the summary workbook.
type XLSXWriter struct {
	sheet  string
	band   bool
	logger logger.Logger
}

// XLSXOption configures an XLSXWriter.
type XLSXOption func(*XLSXWriter)

// WithSheetName sets the worksheet title.
func WithSheetName(name string) XLSXOption {
	return func(w *XLSXWriter) {
		if name != "" {
			w.sheet = name
		}
	}
}

// WithBanding toggles the alternating team fill.
func WithBanding(on bool) XLSXOption {
	return func(w *XLSXWriter) {
		w.band = on
	}
}

// WithLogger sets the writer logger.
func WithLogger(l logger.Logger) XLSXOption {
	return func(w *XLSXWriter) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewXLSXWriter creates a writer with the default sheet name and banding on.
func NewXLSXWriter(opts ...XLSXOption) *XLSXWriter {
	w := &XLSXWriter{sheet: DefaultSheetName, band: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// styles indexes cell styles by [banded][numeric].
type styles [2][2]int

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Write renders c to dst. The cohort must be scored.
func (w *XLSXWriter) Write(ctx context.Context, dst io.Writer, c *model.Cohort) error {
	if c == nil || !c.Scored() {
		return ErrNotScored
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil && w.logger != nil {
			w.logger.Warn(ctx, "close workbook", logger.Error(err))
		}
	}()

	if err := w.fill(f, c); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := f.Write(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	if w.logger != nil {
		w.logger.Debug(ctx, "workbook written",
			logger.String("sheet", w.sheet),
			logger.Int("rows", c.NEvaluated+1))
	}
	return nil
}

func (w *XLSXWriter) fill(f *excelize.File, c *model.Cohort) error {
	if err := f.SetSheetName(defaultSheetID, w.sheet); err != nil {
		return err
	}
	st, err := w.newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(w.sheet, "A1", &Header); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(w.sheet, "A1", lastColumn+"1", header); err != nil {
		return err
	}

	spans := Spans(c)
	i := 0
	for si, t := range teamsWithStudents(c) {
		span := spans[si]
		for _, s := range t.Students() {
			row := firstDataRow + i
			banded := w.band && i < len(c.Groupings) && c.Groupings[i]
			if err := w.writeStudent(f, st, row, span.First, banded, t, s); err != nil {
				return err
			}
			i++
		}
		if span.Rows() > 1 {
			top := fmt.Sprintf("%s%d", colTeamNote, span.First)
			bottom := fmt.Sprintf("%s%d", colTeamNote, span.Last)
			if err := f.MergeCell(w.sheet, top, bottom); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(w.sheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(w.sheet, "B", "C", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(w.sheet, "D", "D", 28); err != nil {
		return err
	}
	return f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *XLSXWriter) writeStudent(f *excelize.File, st styles, row, first int, banded bool, t *model.Team, s *model.Evaluated) error {
	cell := func(col int) string {
		name, _ := excelize.CoordinatesToCellName(col, row)
		return name
	}

	values := []any{t.Name, s.LastName, s.Surname, s.Email, s.Note, t.Average, s.Factor, ""}
	if err := f.SetSheetRow(w.sheet, cell(1), &values); err != nil {
		return err
	}
	formula := fmt.Sprintf("=%s%d*%s%d", colFactor, row, colTeamNote, first)
	if err := f.SetCellFormula(w.sheet, cell(9), formula); err != nil {
		return err
	}

	for col := 1; col <= len(Header); col++ {
		id := st[b2i(banded)][b2i(numericColumns[col])]
		if err := f.SetCellStyle(w.sheet, cell(col), cell(col), id); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) newStyles(f *excelize.File) (styles, error) {
	var st styles
	for banded := 0; banded < 2; banded++ {
		for numeric := 0; numeric < 2; numeric++ {
			s := &excelize.Style{}
			if numeric == 1 {
				s.NumFmt = numberFormat
			}
			if banded == 1 {
				s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{bandFill}}
			}
			id, err := f.NewStyle(s)
			if err != nil {
				return st, err
			}
			st[banded][numeric] = id
		}
	}
	return st, nil
}

func teamsWithStudents(c *model.Cohort) []*model.Team {
	teams := make([]*model.Team, 0, c.Len())
	for _, t := range c.Teams() {
		if t.Len() > 0 {
			teams = append(teams, t)
		}
	}
	return teams
}
