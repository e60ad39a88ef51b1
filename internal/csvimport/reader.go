package csvimport

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// readRecords reads every record of text. Empty lines are skipped by encoding/csv;
// ragged rows are kept and surface later as missing values.
func readRecords(text string, delimiter rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
