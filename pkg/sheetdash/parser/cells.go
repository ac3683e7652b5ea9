package parser

import (
	"fmt"
	"io"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one sheet of a workbook export into a grid. An empty sheet
// name selects the first sheet. Rows without any value are skipped, matching
// the CSV reader's handling of blank lines.
func ReadXLSX(r io.Reader, sheetName string) (models.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	return ExtractCells(f, sheetName)
}

// ExtractCells extracts the formatted cell text of a sheet as a grid.
func ExtractCells(f *excelize.File, sheetName string) (models.Grid, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	grid := models.Grid{}
	for _, row := range rows {
		// GetRows trims trailing empty cells, so a row without values is empty.
		if len(row) == 0 {
			continue
		}
		grid = append(grid, models.RawRow(row))
	}
	return grid, nil
}
