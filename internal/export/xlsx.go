package export

import (
	"fmt"
	"io"

	"github.com/hyperjump/meishi/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported contacts.
const SheetName = "Contacts"

var colWidths = []float64{24, 24, 18, 28, 24, 40, 20, 48, 14}

// WriteXLSX writes a workbook with a single Contacts sheet and a bold header.
func WriteXLSX(w io.Writer, contacts []*models.Contact, dateLayout string) error {
	f := excelize.NewFile()
	defer f.Close()

	// A new file starts with Sheet1; rename it instead of adding a second sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	for r, c := range contacts {
		for i, v := range row(c, dateLayout) {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", r+2, err)
			}
		}
	}

	for i, width := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, width)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
