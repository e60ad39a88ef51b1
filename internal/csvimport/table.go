// Package csvimport turns uploaded CSV files into typed rows.
//
// It decodes the upload, sniffs the delimiter (comma first, semicolon as a
// fallback), normalises headers and checks the required columns. Converting a
// row never aborts the import: callers collect per-row errors and move on.
package csvimport

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"smartmart_service/internal/domain"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// A header row narrower than this is re-read with a semicolon delimiter.
const minColumns = 2

// Table is a parsed CSV file with normalised headers.
type Table struct {
	Headers []string
	Rows    [][]string
	index   map[string]int
}

func CheckExtension(filename string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return domain.Invalidf("Invalid file format. Please upload a CSV file.")
	}
	return nil
}

// Decode returns the upload as text. With stripBOM a leading byte order mark is
// dropped; otherwise the bytes are taken as plain UTF-8.
func Decode(content []byte, stripBOM bool) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("file is not valid UTF-8 text")
	}
	if !stripBOM {
		return string(content), nil
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
	if err != nil {
		return "", fmt.Errorf("decode file: %w", err)
	}
	return string(decoded), nil
}

// Parse reads text with a comma delimiter and falls back to a semicolon when the
// header has fewer than two columns. A genuine single-column comma file is
// therefore read as semicolon separated, which yields the same single column.
func Parse(text string) (*Table, error) {
	records, err := readRecords(text, ',')
	if err != nil || len(records) == 0 || len(records[0]) < minColumns {
		records, err = readRecords(text, ';')
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
	}
	if len(records) == 0 {
		return nil, domain.Invalidf("The CSV file is empty.")
	}

	t := &Table{
		Headers: make([]string, len(records[0])),
		Rows:    records[1:],
		index:   make(map[string]int, len(records[0])),
	}
	for i, h := range records[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		t.Headers[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t, nil
}

func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Missing lists the columns from want that are not in the header, in want order.
func (t *Table) Missing(want ...string) []string {
	var missing []string
	for _, c := range want {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Require fails when any of columns is absent. The error names every missing column.
func (t *Table) Require(columns ...string) error {
	if missing := t.Missing(columns...); len(missing) > 0 {
		return missingColumns(missing)
	}
	return nil
}

// Value returns the cell of row in column. Short rows yield an empty string.
func (t *Table) Value(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func missingColumns(missing []string) error {
	return domain.Invalidf("Missing required columns: %s", strings.Join(missing, ", "))
}
