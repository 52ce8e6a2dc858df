// Package residual computes natural-log residuals between observed Fourier
// amplitude spectra and ground-motion model predictions.
package residual

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/banshee-data/residuals.report/internal/gmm"
	"github.com/banshee-data/residuals.report/internal/numeric"
)

// DefaultMinAmp is the floor applied to observed amplitudes before the log.
const DefaultMinAmp = 1e-20

// InterpolateLn evaluates pred at freqs by linear interpolation of ln(EAS)
// against ln(frequency). Queries outside the model grid take the nearest
// boundary value.
func InterpolateLn(pred gmm.Prediction, freqs []float64) ([]float64, error) {
	if err := pred.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, len(freqs))
	if len(pred.Freqs) == 1 {
		for i := range out {
			out[i] = pred.LnEAS[0]
		}
		return out, nil
	}

	xs := make([]float64, len(pred.Freqs))
	for i, f := range pred.Freqs {
		xs[i] = math.Log(f)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, pred.LnEAS); err != nil {
		return nil, fmt.Errorf("fit prediction: %w", err)
	}
	for i, f := range freqs {
		out[i] = pl.Predict(math.Log(f))
	}
	return out, nil
}

// LnObserved returns ln(max(a, floor)), or an undefined value when a is
// undefined, infinite or not positive.
func LnObserved(a numeric.Value, floor float64) numeric.Value {
	if !a.IsFinite() || a.V <= 0 {
		return numeric.None()
	}
	return numeric.Some(math.Log(math.Max(a.V, floor)))
}

// Calculator turns one record's observations and prediction into residuals.
type Calculator struct {
	MinAmp float64
}

// Row returns ln(observed) - ln(predicted) at each of freqs. obs must be
// aligned with freqs. Undefined observations give undefined residuals.
func (c Calculator) Row(freqs []float64, obs []numeric.Value, pred gmm.Prediction) ([]numeric.Value, error) {
	if len(obs) != len(freqs) {
		return nil, fmt.Errorf("have %d observations for %d frequencies", len(obs), len(freqs))
	}
	lnPred, err := InterpolateLn(pred, freqs)
	if err != nil {
		return nil, err
	}
	out := make([]numeric.Value, len(freqs))
	for i, a := range obs {
		out[i] = LnObserved(a, c.MinAmp).Sub(numeric.Some(lnPred[i]))
	}
	return out, nil
}
