package residual

import (
	"fmt"

	"github.com/banshee-data/residuals.report/internal/flatfile"
)

// ColumnName formats the residual column name for frequency f.
func ColumnName(f float64) string {
	return fmt.Sprintf("%s%0.6f", ColumnPrefix, f)
}

// ColumnNames returns residual column names in ascending frequency order.
func (r *Result) ColumnNames() []string {
	names := make([]string, r.Columns.Len())
	for i, f := range r.Columns.Freqs {
		names[i] = ColumnName(f)
	}
	return names
}

// Augmented returns the input table with the residual columns appended by
// row position.
func (r *Result) Augmented() (*flatfile.Table, error) {
	cells := make([][]string, len(r.Matrix))
	for i, row := range r.Matrix {
		out := make([]string, len(row))
		for j, v := range row {
			out[j] = v.String()
		}
		cells[i] = out
	}
	t, err := r.Input.AppendColumns(r.ColumnNames(), cells)
	if err != nil {
		return nil, fmt.Errorf("assemble residual table: %w", err)
	}
	return t, nil
}
