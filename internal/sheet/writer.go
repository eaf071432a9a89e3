package sheet

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/inventario/internal/tablesort"
)

// WriteGrid saves a table as a single-sheet XLSX workbook named sheetName.
// Cells that parse as numbers are written as numbers so the workbook can
// sum and sort them; everything else is written as text.
func WriteGrid(path, sheetName string, g *tablesort.Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for c, h := range g.Header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	if len(g.Header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(g.Header), 1)
		if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
			return err
		}
	}

	for r := 0; r < g.Len(); r++ {
		for c := range g.Rows[r] {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			text := g.Cell(r, c)
			var value any = text
			if n, err := strconv.ParseFloat(text, 64); err == nil {
				value = n
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
