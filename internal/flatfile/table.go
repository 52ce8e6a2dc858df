// Package flatfile reads ground-motion flatfiles, resolves their Fourier
// amplitude columns, coerces rows into records and writes augmented tables.
package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/residuals.report/internal/fsutil"
)

// Table is a flatfile held as raw cells. Cells are kept verbatim so the
// original columns can be written back unchanged.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a Table, checking that every row matches the header width.
func NewTable(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, configErrorf("flatfile has no header")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, configErrorf("duplicate column %q", name)
		}
		index[name] = i
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrData, i, len(row), len(header))
		}
	}
	return &Table{Header: header, Rows: rows, index: index}, nil
}

// ReadTable parses a CSV flatfile with a header row.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, configErrorf("flatfile is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flatfile header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read flatfile row %d: %v", ErrData, len(rows), err)
		}
		rows = append(rows, rec)
	}
	return NewTable(header, rows)
}

// LoadTable reads the flatfile at path from fsys.
func LoadTable(fsys fsutil.FileSystem, path string) (*Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flatfile: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the raw value at row, column.
func (t *Table) Cell(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	return t.Rows[row][i], true
}

// AppendColumns returns a new Table with extra columns appended by row
// position. The receiver is not modified.
func (t *Table) AppendColumns(names []string, cells [][]string) (*Table, error) {
	if len(cells) != len(t.Rows) {
		return nil, fmt.Errorf("appended columns have %d rows, table has %d", len(cells), len(t.Rows))
	}
	header := make([]string, 0, len(t.Header)+len(names))
	header = append(header, t.Header...)
	header = append(header, names...)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		if len(cells[i]) != len(names) {
			return nil, fmt.Errorf("row %d has %d appended cells, want %d", i, len(cells[i]), len(names))
		}
		out := make([]string, 0, len(header))
		out = append(out, row...)
		out = append(out, cells[i]...)
		rows[i] = out
	}
	return NewTable(header, rows)
}
