// Package report renders per-frequency residual summaries as static plots
// and interactive HTML charts.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/residuals.report/internal/fsutil"
	"github.com/banshee-data/residuals.report/internal/residual"
)

// ErrNoData is returned when no frequency has a defined mean residual.
var ErrNoData = errors.New("report: no defined residuals to plot")

// Plot dimensions.
const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 5 * vg.Inch
)

var (
	meanColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	bandColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	zeroColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// PlotFormat returns the image format implied by path's extension.
func PlotFormat(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf":
		return ext, nil
	default:
		return "", fmt.Errorf("report: unsupported plot format %q (use .png, .svg or .pdf)", filepath.Ext(path))
	}
}

type bands struct {
	mean, upper, lower plotter.XYs
	minF, maxF         float64
}

func collect(summaries []residual.FrequencySummary) bands {
	var b bands
	for _, s := range summaries {
		if !s.Mean.Defined {
			continue
		}
		if len(b.mean) == 0 || s.Freq < b.minF {
			b.minF = s.Freq
		}
		if len(b.mean) == 0 || s.Freq > b.maxF {
			b.maxF = s.Freq
		}
		b.mean = append(b.mean, plotter.XY{X: s.Freq, Y: s.Mean.V})
		sd := 0.0
		if s.StdDev.Defined {
			sd = s.StdDev.V
		}
		b.upper = append(b.upper, plotter.XY{X: s.Freq, Y: s.Mean.V + sd})
		b.lower = append(b.lower, plotter.XY{X: s.Freq, Y: s.Mean.V - sd})
	}
	return b
}

// NewPlot builds the mean residual plot: the mean at each frequency with a
// one standard deviation band on a logarithmic frequency axis.
func NewPlot(title string, summaries []residual.FrequencySummary) (*plot.Plot, error) {
	b := collect(summaries)
	if len(b.mean) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "ln residual"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	zero, err := plotter.NewLine(plotter.XYs{{X: b.minF, Y: 0}, {X: b.maxF, Y: 0}})
	if err != nil {
		return nil, err
	}
	zero.Color = zeroColor
	zero.Width = vg.Points(0.5)
	p.Add(zero)

	meanLine, meanPoints, err := plotter.NewLinePoints(b.mean)
	if err != nil {
		return nil, err
	}
	meanLine.Color = meanColor
	meanLine.Width = vg.Points(1.5)
	meanPoints.Color = meanColor
	meanPoints.Shape = draw.CircleGlyph{}
	p.Add(meanLine, meanPoints)
	p.Legend.Add("mean", meanLine, meanPoints)

	for i, xys := range []plotter.XYs{b.upper, b.lower} {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = bandColor
		l.Width = vg.Points(1)
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
		if i == 0 {
			p.Legend.Add("±1 stddev", l)
		}
	}

	// A degenerate range would be widened linearly to f±1, which can go
	// non-positive on the log axis.
	if b.minF == b.maxF {
		p.X.Min = b.minF / 2
		p.X.Max = b.maxF * 2
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePlot renders the residual plot to w in the given format.
func WritePlot(w io.Writer, format, title string, summaries []residual.FrequencySummary) error {
	p, err := NewPlot(title, summaries)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, format)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePlot writes the residual plot to path, picking the format from its
// extension.
func SavePlot(fsys fsutil.FileSystem, path, title string, summaries []residual.FrequencySummary) error {
	format, err := PlotFormat(path)
	if err != nil {
		return err
	}
	return fsutil.WriteFile(fsys, path, func(w io.Writer) error {
		return WritePlot(w, format, title, summaries)
	})
}
