// Package export writes projected grids to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"strings"

	"echoplan/internal/money"
	"echoplan/internal/services"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the grid is written to.
const SheetName = "Plan"

// percentFormat is the built-in "0.00%" number format.
const percentFormat = 10

// WriteXLSX writes grid to w as an xlsx workbook: a header row of months, a
// label column, and amounts in major units of currency. SUM formulas over
// row IDs become spreadsheet formulas over the matching cells; any other
// formula is written as its cached value.
func WriteXLSX(grid *services.Grid, w io.Writer, currency string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyles(f, currency)
	if err != nil {
		return err
	}

	// Spreadsheet row of each grid row, for resolving formula references.
	rowNumbers := make(map[string]int, len(grid.Rows))
	for i, r := range grid.Rows {
		rowNumbers[r.RowID] = i + 2
	}

	if err := f.SetCellValue(SheetName, "A1", "Item"); err != nil {
		return err
	}
	for i, month := range grid.Months {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, month); err != nil {
			return err
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(grid.Months)+1, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, styles.header); err != nil {
		return err
	}

	for i, row := range grid.Rows {
		rowNum := i + 2
		label, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, label, strings.Repeat("  ", row.Depth)+row.Label); err != nil {
			return err
		}
		if row.Kind != services.RowKindItem {
			if err := f.SetCellStyle(SheetName, label, label, styles.header); err != nil {
				return err
			}
		}

		for _, c := range row.Cells {
			if c.Column == "" {
				continue
			}
			col := monthColumn(grid.Months, c.Column)
			if col < 0 {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(col+2, rowNum)
			if err != nil {
				return err
			}
			if err := writeCell(f, ref, col+2, c, rowNumbers, styles, currency); err != nil {
				return fmt.Errorf("failed to write %s/%s: %w", c.RowID, c.Column, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type styleSet struct {
	header  int
	amount  int
	total   int
	percent int
}

func newStyles(f *excelize.File, currency string) (styleSet, error) {
	numFmt := "#,##0"
	if exp := money.Exponent(currency); exp > 0 {
		numFmt += "." + strings.Repeat("0", int(exp))
	}

	var s styleSet
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt}); err != nil {
		return s, err
	}
	if s.percent, err = f.NewStyle(&excelize.Style{NumFmt: percentFormat}); err != nil {
		return s, err
	}
	return s, nil
}

func writeCell(f *excelize.File, ref string, col int, c services.GridCell, rowNumbers map[string]int, styles styleSet, currency string) error {
	if c.Kind == services.CellKindPercentage {
		if err := f.SetCellValue(SheetName, ref, c.Percentage/100); err != nil {
			return err
		}
		return f.SetCellStyle(SheetName, ref, ref, styles.percent)
	}

	amount, _ := money.ToMajor(c.Value, currency).Float64()
	if err := f.SetCellValue(SheetName, ref, amount); err != nil {
		return err
	}
	style := styles.amount
	if c.Kind == services.CellKindTotal || !c.Editable && c.IsFormula {
		style = styles.total
	}
	if err := f.SetCellStyle(SheetName, ref, ref, style); err != nil {
		return err
	}

	if !c.IsFormula {
		return nil
	}
	formula, ok := sheetFormula(c.Formula, col, rowNumbers)
	if !ok {
		return nil
	}
	return f.SetCellFormula(SheetName, ref, formula)
}

// sheetFormula translates SUM(rowA,rowB) into SUM(B3,B7) for column col. It
// reports false when the expression is not a SUM, references an unknown row,
// or sums nothing.
func sheetFormula(expr string, col int, rowNumbers map[string]int) (string, bool) {
	ids, ok := services.ParseSumFormula(expr)
	if !ok || len(ids) == 0 {
		return "", false
	}
	refs := make([]string, 0, len(ids))
	for _, id := range ids {
		rowNum, ok := rowNumbers[id]
		if !ok {
			return "", false
		}
		ref, err := excelize.CoordinatesToCellName(col, rowNum)
		if err != nil {
			return "", false
		}
		refs = append(refs, ref)
	}
	return "SUM(" + strings.Join(refs, ",") + ")", true
}

func monthColumn(months []string, month string) int {
	for i, m := range months {
		if m == month {
			return i
		}
	}
	return -1
}
