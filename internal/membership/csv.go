package membership

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV parses a CSV with a header line. A leading UTF-8 byte order mark
// is dropped and stray quotes inside unquoted fields are kept as text. Rows
// shorter than the header hold "" for the missing trailing fields; longer
// rows are an error.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("membership: csv has no header")
	}
	if err != nil {
		return nil, eris.Wrap(err, "membership: read csv header")
	}

	t := &Table{Columns: header}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "membership: read csv row")
		}
		if len(record) > len(header) {
			return nil, eris.Errorf("membership: csv record %d has %d fields, header has %d", line, len(record), len(header))
		}
		padded := make([]string, len(header))
		copy(padded, record)
		t.Rows = append(t.Rows, NewRow(header, padded))
	}

	return t, nil
}

// WriteCSV writes the table with OutputColumns as header.
func WriteCSV(w io.Writer, t *Table) error {
	cols := t.OutputColumns()

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return eris.Wrap(err, "membership: write csv header")
	}
	for _, row := range t.Rows {
		if err := cw.Write(row.Values(cols)); err != nil {
			return eris.Wrap(err, "membership: write csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "membership: flush csv")
	}
	return nil
}
