package residual

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/residuals.report/internal/flatfile"
	"github.com/banshee-data/residuals.report/internal/numeric"
)

func summaryResult() *Result {
	return &Result{
		Columns: flatfile.FrequencyColumns{
			Names:     []string{"freq0.5", "freq2", "freq8"},
			Freqs:     []float64{0.5, 2, 8},
			Positions: []int{0, 1, 2},
		},
		Matrix: Matrix{
			{numeric.Some(1), numeric.Some(-1), numeric.None()},
			{numeric.Some(3), numeric.None(), numeric.None()},
			{numeric.Some(2), numeric.None(), numeric.None()},
		},
	}
}

func TestSummarize(t *testing.T) {
	got := summaryResult().Summarize()
	require.Len(t, got, 3)

	s := got[0]
	assert.Equal(t, 0.5, s.Freq)
	assert.Equal(t, "resid_freq0.500000", s.Column)
	assert.Equal(t, 3, s.N)
	assert.InDelta(t, 2, s.Mean.V, 1e-12)
	assert.InDelta(t, 1, s.StdDev.V, 1e-12)
	assert.Equal(t, numeric.Some(1), s.Min)
	assert.Equal(t, numeric.Some(3), s.Max)

	single := got[1]
	assert.Equal(t, 1, single.N)
	assert.Equal(t, numeric.Some(-1), single.Mean)
	assert.Equal(t, numeric.Some(0), single.StdDev)

	empty := got[2]
	assert.Equal(t, 0, empty.N)
	assert.False(t, empty.Mean.Defined)
	assert.False(t, empty.StdDev.Defined)
	assert.False(t, empty.Min.Defined)
	assert.False(t, empty.Max.Defined)
}

func TestSummaryWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryWriter(&buf).Write(summaryResult().Summarize()))

	want := "freq_hz,column,n,mean,stddev,min,max\n" +
		"0.500000,resid_freq0.500000,3,2,1,1,3\n" +
		"2.000000,resid_freq2.000000,1,-1,0,-1,-1\n" +
		"8.000000,resid_freq8.000000,0,,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestSummaryWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryWriter(&buf).Write(nil))
	assert.Equal(t, "freq_hz,column,n,mean,stddev,min,max\n", buf.String())
}

func TestSummarize_MatchesDirectStatistics(t *testing.T) {
	xs := []float64{0.3, -0.7, 1.1, 0.25}
	m := make(Matrix, len(xs))
	for i, x := range xs {
		m[i] = []numeric.Value{numeric.Some(x)}
	}
	res := &Result{
		Columns: flatfile.FrequencyColumns{Names: []string{"freq1"}, Freqs: []float64{1}, Positions: []int{0}},
		Matrix:  m,
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	std := math.Sqrt(ss / float64(len(xs)-1))

	s := res.Summarize()[0]
	assert.InDelta(t, mean, s.Mean.V, 1e-12)
	assert.InDelta(t, std, s.StdDev.V, 1e-12)
}
