package estimate

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook returns the raw cell values of the first sheet.
func ReadWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("estimate: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("estimate: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("estimate: read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// Parse reads the first sheet of an uploaded workbook and extracts the estimate.
func Parse(data []byte) (Estimate, error) {
	rows, err := ReadWorkbook(data)
	if err != nil {
		return Estimate{}, err
	}
	return ParseRows(rows), nil
}
