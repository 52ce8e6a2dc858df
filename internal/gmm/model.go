package gmm

import (
	"errors"
	"fmt"
	"math"
)

// Model evaluates a ground-motion model for a scenario.
type Model interface {
	Evaluate(s Scenario) (Prediction, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(s Scenario) (Prediction, error)

// Evaluate calls f(s).
func (f ModelFunc) Evaluate(s Scenario) (Prediction, error) { return f(s) }

// Prediction is a model's natural-log effective amplitude spectrum on its
// own frequency grid.
type Prediction struct {
	Freqs []float64 // Hz, strictly increasing
	LnEAS []float64 // ln(g-s)
}

// ErrInvalidPrediction is returned by Prediction.Validate.
var ErrInvalidPrediction = errors.New("invalid prediction")

// Validate checks the prediction contract: equal non-zero lengths and
// strictly increasing, positive, finite frequencies.
func (p Prediction) Validate() error {
	if len(p.Freqs) != len(p.LnEAS) {
		return fmt.Errorf("%w: %d frequencies but %d amplitudes", ErrInvalidPrediction, len(p.Freqs), len(p.LnEAS))
	}
	if len(p.Freqs) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPrediction)
	}
	for i, f := range p.Freqs {
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return fmt.Errorf("%w: frequency %d is %v", ErrInvalidPrediction, i, f)
		}
		if i > 0 && f <= p.Freqs[i-1] {
			return fmt.Errorf("%w: frequencies not strictly increasing at index %d", ErrInvalidPrediction, i)
		}
	}
	return nil
}

// Tabulated is a Model that returns the same prediction for every scenario.
// It stands in for a real model in tests and replays precomputed spectra.
type Tabulated struct {
	Prediction Prediction
}

// NewTabulated builds a Tabulated model from linear amplitudes.
func NewTabulated(freqs, eas []float64) (*Tabulated, error) {
	ln := make([]float64, len(eas))
	for i, a := range eas {
		ln[i] = math.Log(a)
	}
	p := Prediction{Freqs: append([]float64(nil), freqs...), LnEAS: ln}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Tabulated{Prediction: p}, nil
}

// Evaluate returns a copy of the stored prediction.
func (m *Tabulated) Evaluate(Scenario) (Prediction, error) {
	return Prediction{
		Freqs: append([]float64(nil), m.Prediction.Freqs...),
		LnEAS: append([]float64(nil), m.Prediction.LnEAS...),
	}, nil
}
