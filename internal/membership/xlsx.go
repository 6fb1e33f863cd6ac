package membership

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

const xlsxSheetName = "Members"

// ReadXLSX reads the first sheet of a workbook. The first non-blank row is
// the header. Blank rows are skipped, as blank CSV lines are.
func ReadXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "membership: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("membership: xlsx %s has no sheets", path)
	}
	sheet := f.Sheets[0]

	var t *Table
	for i, row := range sheet.Rows {
		cells := rowToStrings(row)
		if isBlank(cells) {
			continue
		}
		if t == nil {
			t = &Table{Columns: trimTrailingEmpty(cells)}
			continue
		}

		// Workbooks drop trailing empty cells; treat them as present and
		// empty, which is what the same row exported as CSV would hold.
		cells = trimTrailingEmpty(cells)
		if len(cells) > len(t.Columns) {
			return nil, eris.Errorf("membership: xlsx row %d has %d cells, header has %d", i+1, len(cells), len(t.Columns))
		}
		padded := make([]string, len(t.Columns))
		copy(padded, cells)
		t.Rows = append(t.Rows, NewRow(t.Columns, padded))
	}
	if t == nil {
		return nil, eris.Errorf("membership: xlsx %s has no header", path)
	}

	return t, nil
}

// WriteXLSX writes the table to a single-sheet workbook.
func WriteXLSX(path string, t *Table) error {
	cols := t.OutputColumns()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(xlsxSheetName)
	if err != nil {
		return eris.Wrap(err, "membership: add xlsx sheet")
	}

	addRow(sheet, cols)
	for _, row := range t.Rows {
		addRow(sheet, row.Values(cols))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "membership: save xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func trimTrailingEmpty(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
