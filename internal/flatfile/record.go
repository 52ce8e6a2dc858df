package flatfile

import (
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/residuals.report/internal/numeric"
)

// Required scalar columns.
const (
	ColMag  = "mag"
	ColRrup = "Rrup"
	ColVs30 = "Vs30"
	ColZ1   = "Z1.0"
	ColZtor = "Ztor"
	ColSOF  = "SOF"
)

// RequiredColumns lists the scalar covariates every record must carry.
var RequiredColumns = []string{ColMag, ColRrup, ColVs30, ColZ1, ColZtor, ColSOF}

// Record is one event-station measurement with its covariates coerced to
// float64 and its amplitudes aligned to a FrequencyColumns ordering.
type Record struct {
	Index      int
	Mag        float64
	Rrup       float64 // km
	Vs30       float64 // m/s
	Z1         float64 // as stored in the flatfile
	Ztor       float64 // km
	SOF        float64 // NaN when the cell is missing
	Amplitudes []numeric.Value
}

// Record coerces row i. Every required column must exist. The scalar
// covariates must be numeric; SOF and amplitude cells may be missing
// markers but not arbitrary text.
func (t *Table) Record(i int, cols FrequencyColumns) (Record, error) {
	rec := Record{Index: i}
	targets := []*float64{&rec.Mag, &rec.Rrup, &rec.Vs30, &rec.Z1, &rec.Ztor}
	for k, col := range RequiredColumns[:len(targets)] {
		v, err := t.requiredFloat(i, col)
		if err != nil {
			return Record{}, err
		}
		*targets[k] = v
	}

	sof, ok := t.Cell(i, ColSOF)
	if !ok {
		return Record{}, &DataError{Row: i, Column: ColSOF, Err: errMissingColumn}
	}
	v, err := numeric.Parse(sof)
	if err != nil {
		return Record{}, &DataError{Row: i, Column: ColSOF, Value: sof, Err: err}
	}
	rec.SOF = v.Float()

	row := t.Rows[i]
	rec.Amplitudes = make([]numeric.Value, cols.Len())
	for k, pos := range cols.Positions {
		v, err := numeric.Parse(row[pos])
		if err != nil {
			return Record{}, &DataError{Row: i, Column: cols.Names[k], Value: row[pos], Err: err}
		}
		rec.Amplitudes[k] = v
	}
	return rec, nil
}

func (t *Table) requiredFloat(row int, col string) (float64, error) {
	cell, ok := t.Cell(row, col)
	if !ok {
		return 0, &DataError{Row: row, Column: col, Err: errMissingColumn}
	}
	if numeric.IsMissingMarker(cell) {
		return 0, &DataError{Row: row, Column: col, Value: cell, Err: errMissingValue}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, &DataError{Row: row, Column: col, Value: cell, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &DataError{Row: row, Column: col, Value: cell, Err: errNonFinite}
	}
	return v, nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

const (
	errMissingColumn = fieldError("column missing from flatfile")
	errMissingValue  = fieldError("value missing")
	errNonFinite     = fieldError("value is not finite")
)
