package membership

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Format is a membership file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the format from the file extension; anything that is not
// .xlsx is treated as CSV.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// ReadFile reads a membership list in the format implied by its extension.
func ReadFile(path string) (*Table, error) {
	if FormatFor(path) == FormatXLSX {
		return ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "membership: open input")
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f)
}

// WriteFile writes a membership list in the format implied by its extension.
func WriteFile(path string, t *Table) error {
	if FormatFor(path) == FormatXLSX {
		return WriteXLSX(path, t)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "membership: create output")
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "membership: close output")
	}
	return nil
}
