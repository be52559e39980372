// Package ingest decodes uploaded spreadsheet files into normalizer rows.
package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finrealize/internal/normalize"
)

// ErrNoSheet reports a workbook that decoded fine but has no sheets.
var ErrNoSheet = errors.New("workbook has no sheets")

// DecodeFirstSheet reads an xlsx workbook and returns one row per data line
// of the first sheet. The first sheet row is taken as the header; rows
// shorter than the header are padded with empty cells. A workbook that
// cannot be opened fails as a whole, per-row problems never do.
func DecodeFirstSheet(r io.Reader) ([]normalize.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	header := raw[0]
	rows := make([]normalize.Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(normalize.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
