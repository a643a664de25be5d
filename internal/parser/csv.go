package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVReader reads comma-separated tables with a header row.
type CSVReader struct{}

func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

func (r *CSVReader) Name() string {
	return "csv"
}

func (r *CSVReader) CanRead(filePath string) bool {
	return hasExt(filePath, ".csv", ".txt")
}

func (r *CSVReader) Read(filePath string) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Source: filePath, Missing: []string{"header row"}}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", filePath, err)
	}

	rows := make([][]string, 0, 1024)
	lines := make([]int, 0, 1024)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filePath, err)
		}
		if isBlank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}

	t := NewTable(filePath, header, rows)
	t.Lines = lines
	return t, nil
}

func isBlank(record []string) bool {
	for _, c := range record {
		if c != "" {
			return false
		}
	}
	return true
}
