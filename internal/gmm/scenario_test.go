package gmm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMechanism(t *testing.T) {
	tests := []struct {
		name    string
		sof     float64
		fromSOF bool
		want    Mechanism
	}{
		{"zero is strike-slip", 0, true, StrikeSlip},
		{"just inside negative", -0.49, true, StrikeSlip},
		{"just inside positive", 0.49, true, StrikeSlip},
		// |±0.5| < 0.5 is false, so the boundaries fall through to NS/RS.
		{"boundary -0.5 is normal", -0.5, true, Normal},
		{"boundary 0.5 is reverse", 0.5, true, Reverse},
		{"large negative", -10, true, Normal},
		{"large positive", 10, true, Reverse},
		{"NaN falls back to unknown", math.NaN(), true, Unknown},
		{"disabled zero", 0, false, Unknown},
		{"disabled negative", -10, false, Unknown},
		{"disabled positive", 10, false, Unknown},
		{"disabled boundary", 0.5, false, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMechanism(tt.sof, tt.fromSOF))
		})
	}
}
