package residual

import (
	"encoding/csv"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/residuals.report/internal/monitoring"
	"github.com/banshee-data/residuals.report/internal/numeric"
)

// FrequencySummary aggregates the defined residuals at one frequency.
type FrequencySummary struct {
	Freq   float64
	Column string
	N      int
	Mean   numeric.Value
	StdDev numeric.Value // sample standard deviation; 0 when N == 1
	Min    numeric.Value
	Max    numeric.Value
}

// Summarize computes per-frequency statistics over the defined cells of
// the residual matrix.
func (r *Result) Summarize() []FrequencySummary {
	names := r.ColumnNames()
	out := make([]FrequencySummary, r.Columns.Len())
	vals := make([]float64, 0, len(r.Matrix))
	for j, f := range r.Columns.Freqs {
		vals = vals[:0]
		for _, row := range r.Matrix {
			if row[j].Defined {
				vals = append(vals, row[j].V)
			}
		}
		out[j] = summarize(f, names[j], vals)
	}
	return out
}

func summarize(freq float64, column string, xs []float64) FrequencySummary {
	s := FrequencySummary{Freq: freq, Column: column, N: len(xs)}
	if len(xs) == 0 {
		return s
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	s.Mean = numeric.Some(mean)
	s.StdDev = numeric.Some(std)
	s.Min = numeric.Some(floats.Min(xs))
	s.Max = numeric.Some(floats.Max(xs))
	return s
}

// SummaryHeader is the header row written by SummaryWriter.
var SummaryHeader = []string{"freq_hz", "column", "n", "mean", "stddev", "min", "max"}

// SummaryWriter writes FrequencySummary rows as CSV.
type SummaryWriter struct {
	w *csv.Writer
}

// NewSummaryWriter wraps w.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{w: csv.NewWriter(w)}
}

// Write writes the header followed by one row per summary and flushes.
func (sw *SummaryWriter) Write(summaries []FrequencySummary) error {
	if len(summaries) == 0 {
		monitoring.Logf("WARNING: no frequencies to summarise")
	}
	if err := sw.w.Write(SummaryHeader); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			fmt.Sprintf("%.6f", s.Freq),
			s.Column,
			fmt.Sprintf("%d", s.N),
			s.Mean.String(),
			s.StdDev.String(),
			s.Min.String(),
			s.Max.String(),
		}
		if err := sw.w.Write(row); err != nil {
			return err
		}
	}
	sw.w.Flush()
	return sw.w.Error()
}
