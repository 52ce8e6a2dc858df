// Package numeric provides an explicit optional real value used for cells
// that may be undefined, such as missing flatfile amplitudes and the
// residuals derived from them.
package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a real number that may be undefined. The zero Value is undefined.
type Value struct {
	V       float64
	Defined bool
}

// Some returns a defined Value. NaN is normalised to an undefined Value so
// that the Defined flag is the only source of truth.
func Some(v float64) Value {
	if math.IsNaN(v) {
		return Value{}
	}
	return Value{V: v, Defined: true}
}

// None returns an undefined Value.
func None() Value { return Value{} }

// Float returns the value, or NaN when undefined.
func (v Value) Float() float64 {
	if !v.Defined {
		return math.NaN()
	}
	return v.V
}

// IsFinite reports whether v is defined and neither infinity.
func (v Value) IsFinite() bool {
	return v.Defined && !math.IsInf(v.V, 0)
}

// Sub returns v - w. The result is undefined when either operand is.
func (v Value) Sub(w Value) Value {
	if !v.Defined || !w.Defined {
		return None()
	}
	return Some(v.V - w.V)
}

// String formats the value with the shortest representation that round
// trips, or the empty string when undefined.
func (v Value) String() string {
	if !v.Defined {
		return ""
	}
	return strconv.FormatFloat(v.V, 'g', -1, 64)
}

// missingMarkers are the cell spellings treated as "no value", matching the
// markers common CSV tooling writes for missing data.
var missingMarkers = map[string]bool{
	"":        true,
	"na":      true,
	"n/a":     true,
	"#n/a":    true,
	"<na>":    true,
	"nan":     true,
	"-nan":    true,
	"null":    true,
	"none":    true,
	"-1.#ind": true,
	"1.#qnan": true,
}

// IsMissingMarker reports whether s spells a missing value.
func IsMissingMarker(s string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(s))]
}

// Parse converts a CSV cell into a Value. Missing markers yield an undefined
// Value; anything else must parse as a float.
func Parse(s string) (Value, error) {
	if IsMissingMarker(s) {
		return None(), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return None(), fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Some(f), nil
}
