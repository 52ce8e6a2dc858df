// Package testutil provides shared test helpers for residual computations.
package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/residuals.report/internal/numeric"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireValuesNearlyEqual compares optional values. Undefined entries in
// want must be undefined in got; defined entries must agree within eps.
func RequireValuesNearlyEqual(t testing.TB, got, want []numeric.Value, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].Defined != want[i].Defined {
			t.Fatalf("index %d: defined=%v, want defined=%v", i, got[i].Defined, want[i].Defined)
		}
		if !want[i].Defined {
			continue
		}
		if diff := math.Abs(got[i].V - want[i].V); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i].V, want[i].V, diff, eps)
		}
	}
}

// RequireUndefinedAt fails t unless values[idx] is undefined.
func RequireUndefinedAt(t testing.TB, values []numeric.Value, idx int) {
	t.Helper()
	if idx < 0 || idx >= len(values) {
		t.Fatalf("index %d out of range (len %d)", idx, len(values))
	}
	if values[idx].Defined {
		t.Fatalf("index %d: expected undefined, got %v", idx, values[idx].V)
	}
}

// Values builds a slice of defined values; NaN entries become undefined.
func Values(xs ...float64) []numeric.Value {
	out := make([]numeric.Value, len(xs))
	for i, x := range xs {
		out[i] = numeric.Some(x)
	}
	return out
}
