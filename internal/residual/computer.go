package residual

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/residuals.report/internal/flatfile"
	"github.com/banshee-data/residuals.report/internal/gmm"
	"github.com/banshee-data/residuals.report/internal/monitoring"
	"github.com/banshee-data/residuals.report/internal/numeric"
	"github.com/banshee-data/residuals.report/internal/units"
)

// ColumnPrefix is prepended to the formatted frequency of each residual
// column.
const ColumnPrefix = "resid_freq"

// ErrOptions is returned by Options.Validate.
var ErrOptions = errors.New("invalid residual options")

// Options controls how scenarios are built and residuals computed.
type Options struct {
	Region           string
	VsSource         string
	MechanismFromSOF bool
	MinAmp           float64
	Z1Units          string
	// Workers > 1 evaluates rows concurrently; output is unchanged.
	Workers int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Region:           gmm.RegionCalifornia,
		VsSource:         gmm.VsInferred,
		MechanismFromSOF: true,
		MinAmp:           DefaultMinAmp,
		Z1Units:          units.KM,
		Workers:          1,
	}
}

// Validate checks option values.
func (o Options) Validate() error {
	if !(o.MinAmp > 0) || math.IsInf(o.MinAmp, 0) {
		return fmt.Errorf("%w: min_amp must be positive and finite, got %v", ErrOptions, o.MinAmp)
	}
	if strings.TrimSpace(o.Region) == "" {
		return fmt.Errorf("%w: region must not be empty", ErrOptions)
	}
	if !units.IsValidDepthUnit(o.Z1Units) {
		return fmt.Errorf("%w: z1 units %q (valid: %s)", ErrOptions, o.Z1Units, units.GetValidDepthUnitsString())
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrOptions, o.Workers)
	}
	return nil
}

// Matrix holds one residual vector per record, in table order.
type Matrix [][]numeric.Value

// Result is the outcome of a residual run.
type Result struct {
	Input   *flatfile.Table
	Columns flatfile.FrequencyColumns
	Matrix  Matrix
}

// Computer evaluates a model against every record of a flatfile.
type Computer struct {
	model gmm.Model
	opts  Options
	calc  Calculator
}

// NewComputer returns a Computer for model. Options are validated.
func NewComputer(model gmm.Model, opts Options) (*Computer, error) {
	if model == nil {
		return nil, errors.New("residual: nil model")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Computer{model: model, opts: opts, calc: Calculator{MinAmp: opts.MinAmp}}, nil
}

// Compute resolves the frequency columns of t and computes the residual
// matrix. Any failing row aborts the run.
func (c *Computer) Compute(ctx context.Context, t *flatfile.Table) (*Result, error) {
	cols, err := flatfile.ResolveFrequencyColumns(t.Header)
	if err != nil {
		return nil, err
	}

	matrix := make(Matrix, t.Len())
	if c.opts.Workers <= 1 {
		for i := range matrix {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if matrix[i], err = c.computeRow(t, cols, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.opts.Workers)
		for i := range matrix {
			if gctx.Err() != nil {
				break
			}
			i := i
			g.Go(func() error {
				row, err := c.computeRow(t, cols, i)
				if err != nil {
					return err
				}
				matrix[i] = row
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	res := &Result{Input: t, Columns: cols, Matrix: matrix}
	monitoring.Logf("computed residuals for %d records at %d frequencies (%d undefined cells)",
		t.Len(), cols.Len(), res.UndefinedCells())
	return res, nil
}

func (c *Computer) computeRow(t *flatfile.Table, cols flatfile.FrequencyColumns, i int) ([]numeric.Value, error) {
	rec, err := t.Record(i, cols)
	if err != nil {
		return nil, err
	}
	mech := gmm.ClassifyMechanism(rec.SOF, c.opts.MechanismFromSOF)
	s, err := BuildScenario(rec, mech, c.opts)
	if err != nil {
		return nil, err
	}
	pred, err := c.model.Evaluate(s)
	if err != nil {
		return nil, fmt.Errorf("row %d: evaluate model: %w", i, err)
	}
	row, err := c.calc.Row(cols.Freqs, rec.Amplitudes, pred)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", i, err)
	}
	return row, nil
}

// UndefinedCells counts residual cells with no value.
func (r *Result) UndefinedCells() int {
	n := 0
	for _, row := range r.Matrix {
		for _, v := range row {
			if !v.Defined {
				n++
			}
		}
	}
	return n
}
