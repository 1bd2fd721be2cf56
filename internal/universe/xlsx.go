package universe

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readXLSXRows parses sheet 0 of the listed-issues spreadsheet, skipping
// the header row. Same column layout as the TSV export.
func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "universe: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("universe: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	var rows [][]string
	for i, row := range sheet.Rows {
		if i == 0 {
			continue // header row
		}
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		rows = append(rows, cells)
	}

	return rows, nil
}
