package datapackage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"camtrap/internal/fileutil"
	"camtrap/internal/services"
	"camtrap/internal/textutil"
)

const utf8BOM = "\ufeff"

// Record is one CSV data row keyed by header name.
type Record map[string]string

// Get returns the trimmed value of column, or "" when absent.
func (r Record) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Blank reports whether every value in the row is empty after trimming.
func (r Record) Blank() bool {
	for _, value := range r {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// Table is a whole CSV file held in memory.
type Table struct {
	Header  []string
	Records []Record
}

// Has reports whether the header contains column exactly.
func (t *Table) Has(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}

// FindColumn returns the first header equal to name ignoring case and
// whitespace.
func (t *Table) FindColumn(name string) (string, bool) {
	key := textutil.HeaderKey(name)
	for _, h := range t.Header {
		if textutil.HeaderKey(h) == key {
			return h, true
		}
	}
	return "", false
}

// FindColumnContaining returns the first header whose folded, space-free form
// contains fragment.
func (t *Table) FindColumnContaining(fragment string) (string, bool) {
	key := textutil.HeaderKey(fragment)
	for _, h := range t.Header {
		if strings.Contains(textutil.HeaderKey(h), key) {
			return h, true
		}
	}
	return "", false
}

// ReadTable loads a CSV file with a header row. A UTF-8 byte order mark is
// dropped. A missing file is reported as services.ErrInputMissing; a file with
// no header row as services.ErrFormat.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrInputMissing, "", "read table", path, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	table, err := DecodeTable(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// DecodeTable parses CSV content with a header row.
func DecodeTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, services.Wrap(services.ErrFormat, "", "read table", "no header row", nil)
		}
		return nil, services.Wrap(services.ErrFormat, "", "read table", "header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &Table{Header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrFormat, "", "read table", "row", err)
		}
		record := make(Record, len(header))
		for i, column := range header {
			if i < len(row) {
				record[column] = row[i]
			} else {
				record[column] = ""
			}
		}
		table.Records = append(table.Records, record)
	}
	return table, nil
}

// WriteTable writes header and rows to path atomically.
func WriteTable(path string, header []string, rows [][]string) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return EncodeTable(w, header, rows)
	})
}

// EncodeTable writes header and rows as CSV.
func EncodeTable(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return writer.Error()
}

// ExtendHeader returns base followed by every required column base lacks.
// A nil base yields required.
func ExtendHeader(base, required []string) []string {
	out := append([]string(nil), base...)
	present := make(map[string]struct{}, len(out))
	for _, column := range out {
		present[column] = struct{}{}
	}
	for _, column := range required {
		if _, ok := present[column]; !ok {
			out = append(out, column)
		}
	}
	return out
}
