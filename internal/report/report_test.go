package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/residuals.report/internal/fsutil"
	"github.com/banshee-data/residuals.report/internal/numeric"
	"github.com/banshee-data/residuals.report/internal/residual"
)

func sampleSummaries() []residual.FrequencySummary {
	return []residual.FrequencySummary{
		{Freq: 0.1, Column: "resid_freq0.100000", N: 4, Mean: numeric.Some(0.2), StdDev: numeric.Some(0.5), Min: numeric.Some(-0.4), Max: numeric.Some(0.9)},
		{Freq: 1, Column: "resid_freq1.000000", N: 0},
		{Freq: 10, Column: "resid_freq10.000000", N: 1, Mean: numeric.Some(-0.3), StdDev: numeric.Some(0), Min: numeric.Some(-0.3), Max: numeric.Some(-0.3)},
	}
}

func TestPlotFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out/resid.png", "png", false},
		{"resid.SVG", "svg", false},
		{"resid.pdf", "pdf", false},
		{"resid.gif", "", true},
		{"resid", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := PlotFormat(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectSkipsUndefinedMeans(t *testing.T) {
	b := collect(sampleSummaries())
	require.Len(t, b.mean, 2)
	assert.Equal(t, 0.1, b.minF)
	assert.Equal(t, 10.0, b.maxF)
	assert.InDelta(t, 0.7, b.upper[0].Y, 1e-12)
	assert.InDelta(t, -0.3, b.lower[0].Y, 1e-12)
	assert.Equal(t, b.mean[1], b.upper[1])
}

func TestWritePlot_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, "png", "residuals", sampleSummaries()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "expected PNG signature")
}

func TestWritePlot_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, "svg", "residuals", sampleSummaries()))
	assert.Contains(t, buf.String(), "<svg")
}

func TestNewPlot_SingleFrequency(t *testing.T) {
	p, err := NewPlot("residuals", []residual.FrequencySummary{
		{Freq: 0.5, N: 1, Mean: numeric.Some(0.1), StdDev: numeric.Some(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.25, p.X.Min)
	assert.Equal(t, 1.0, p.X.Max)

	var buf bytes.Buffer
	wt, err := p.WriterTo(plotWidth, plotHeight, "svg")
	require.NoError(t, err)
	_, err = wt.WriteTo(&buf)
	require.NoError(t, err)
}

func TestWritePlot_NoData(t *testing.T) {
	var buf bytes.Buffer
	err := WritePlot(&buf, "png", "residuals", []residual.FrequencySummary{{Freq: 1, N: 0}})
	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestSavePlot(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, SavePlot(fsys, "plots/resid.svg", "residuals", sampleSummaries()))

	data, err := fsys.ReadFile("plots/resid.svg")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	assert.Error(t, SavePlot(fsys, "plots/resid.bmp", "residuals", sampleSummaries()))
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, "FAS residuals", sampleSummaries()))

	html := buf.String()
	assert.True(t, strings.Contains(html, "<html"), "expected an HTML document")
	assert.Contains(t, html, "FAS residuals")
	assert.Contains(t, html, "mean+stddev")
	assert.Contains(t, html, "log10 frequency (Hz)")
}

func TestSaveHTML(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, SaveHTML(fsys, "resid.html", "FAS residuals", sampleSummaries()))
	assert.True(t, fsys.Exists("resid.html"))

	err := SaveHTML(fsys, "empty.html", "FAS residuals", nil)
	assert.ErrorIs(t, err, ErrNoData)
}
