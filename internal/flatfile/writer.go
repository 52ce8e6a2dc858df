package flatfile

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/banshee-data/residuals.report/internal/fsutil"
)

// IndexColumn is the (empty) header of the leading row-index column.
const IndexColumn = ""

// WriteIndexed writes t as CSV with a leading row-index column numbered
// from zero in table order.
func WriteIndexed(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Header)+1)
	header = append(header, IndexColumn)
	header = append(header, t.Header...)
	if err := cw.Write(header); err != nil {
		return err
	}

	out := make([]string, len(header))
	for i, row := range t.Rows {
		out[0] = strconv.Itoa(i)
		copy(out[1:], row)
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveIndexed writes t to path on fsys, creating the parent directory.
func SaveIndexed(fsys fsutil.FileSystem, path string, t *Table) error {
	return fsutil.WriteFile(fsys, path, func(w io.Writer) error {
		return WriteIndexed(w, t)
	})
}
