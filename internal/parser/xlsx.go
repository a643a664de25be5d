package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the first worksheet of a spreadsheet. Cells are read raw,
// so date cells arrive as serial numbers and the Table is marked accordingly.
type XLSXReader struct{}

func NewXLSXReader() *XLSXReader {
	return &XLSXReader{}
}

func (r *XLSXReader) Name() string {
	return "xlsx"
}

func (r *XLSXReader) CanRead(filePath string) bool {
	return hasExt(filePath, ".xlsx", ".xlsm")
}

func (r *XLSXReader) Read(filePath string) (*Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", filePath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &SchemaError{Source: filePath, Missing: []string{"worksheet"}}
	}

	all, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s of %s: %w", sheet, filePath, err)
	}
	if len(all) == 0 {
		return nil, &SchemaError{Source: filePath, Missing: []string{"header row"}}
	}

	rows := make([][]string, 0, len(all)-1)
	lines := make([]int, 0, len(all)-1)
	for i, row := range all[1:] {
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
		lines = append(lines, i+2)
	}

	t := NewTable(filePath, all[0], rows)
	t.Lines = lines
	t.SerialDates = true
	return t, nil
}
