package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSome_NormalisesNaN(t *testing.T) {
	assert.False(t, Some(math.NaN()).Defined)
	assert.True(t, Some(0).Defined)
	assert.True(t, Some(math.Inf(1)).Defined)
}

func TestValue_Float(t *testing.T) {
	assert.Equal(t, 1.5, Some(1.5).Float())
	assert.True(t, math.IsNaN(None().Float()))
}

func TestValue_IsFinite(t *testing.T) {
	assert.True(t, Some(-3).IsFinite())
	assert.False(t, Some(math.Inf(-1)).IsFinite())
	assert.False(t, None().IsFinite())
}

func TestValue_Sub(t *testing.T) {
	assert.Equal(t, Some(1), Some(3).Sub(Some(2)))
	assert.False(t, None().Sub(Some(2)).Defined)
	assert.False(t, Some(2).Sub(None()).Defined)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", None().String())
	assert.Equal(t, "0", Some(0).String())
	assert.Equal(t, "0.25", Some(0.25).String())
	assert.Equal(t, "-1e-20", Some(-1e-20).String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Value
		wantErr bool
	}{
		{"empty", "", None(), false},
		{"spaces", "   ", None(), false},
		{"NaN", "NaN", None(), false},
		{"nan", "nan", None(), false},
		{"NA", "NA", None(), false},
		{"null", "NULL", None(), false},
		{"plain", "0.1", Some(0.1), false},
		{"padded", " 2.5 ", Some(2.5), false},
		{"scientific", "1e-3", Some(0.001), false},
		{"negative", "-4", Some(-4), false},
		{"inf", "inf", Some(math.Inf(1)), false},
		{"garbage", "abc", None(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
