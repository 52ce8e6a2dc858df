// Package gmm describes earthquake scenarios and the ground-motion models
// that predict Fourier amplitude spectra for them.
package gmm

import "math"

// Mechanism is the style-of-faulting class passed to a model.
type Mechanism string

const (
	StrikeSlip Mechanism = "SS"
	Normal     Mechanism = "NS"
	Reverse    Mechanism = "RS"
	Unknown    Mechanism = "U"
)

// Mechanism thresholds on the signed style-of-faulting value.
const sofThreshold = 0.5

// ClassifyMechanism maps a style-of-faulting value onto a Mechanism. When
// fromSOF is false every record is Unknown.
//
// The checks run in order, so exactly -0.5 and 0.5 fail the strike-slip
// test and land on Normal and Reverse respectively.
func ClassifyMechanism(sof float64, fromSOF bool) Mechanism {
	if !fromSOF {
		return Unknown
	}
	switch {
	case math.Abs(sof) < sofThreshold:
		return StrikeSlip
	case sof <= -sofThreshold:
		return Normal
	case sof >= sofThreshold:
		return Reverse
	}
	// Only NaN gets here.
	return Unknown
}

// Vs30 source flags.
const (
	VsInferred = "inferred"
	VsMeasured = "measured"
)

// RegionCalifornia is the default and only region the BA18 evaluator supports.
const RegionCalifornia = "california"

// Scenario is the per-record model input.
type Scenario struct {
	Mag       float64
	DistRup   float64 // km
	Vs30      float64 // m/s
	Depth1_0  float64 // km; negative means unknown
	DepthTor  float64 // km
	Mechanism Mechanism
	Region    string
	VsSource  string
}
