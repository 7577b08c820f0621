package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrEmptyColumn indicates the selected column held no values.
	ErrEmptyColumn = errors.New("Selected column is empty.")
	// ErrNoHeader indicates the CSV had no header row.
	ErrNoHeader = errors.New("CSV has no header row")
)

// ColumnError reports a column missing from the CSV header.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// CSVHeader returns the column names of the first row.
func CSVHeader(r io.Reader) ([]string, error) {
	reader := newCSVReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	return trimAll(header), nil
}

// ColumnValues returns the non-empty values of column, skipping the header row
// and blank lines.
func ColumnValues(r io.Reader, column string) ([]string, error) {
	reader := newCSVReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	idx := -1
	for i, name := range trimAll(header) {
		if name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &ColumnError{Column: column}
	}

	var values []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if idx >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[idx]); v != "" {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		return nil, ErrEmptyColumn
	}
	return values, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	}
	return out
}
