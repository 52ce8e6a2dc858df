package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/residuals.report/internal/fsutil"
	"github.com/banshee-data/residuals.report/internal/residual"
)

// NewScatter builds an interactive scatter chart of mean residual against
// log10 frequency, with the one standard deviation bounds as extra series.
func NewScatter(title string, summaries []residual.FrequencySummary) (*charts.Scatter, error) {
	b := collect(summaries)
	if len(b.mean) == 0 {
		return nil, ErrNoData
	}

	toData := func(xys plotter.XYs) []opts.ScatterData {
		data := make([]opts.ScatterData, 0, len(xys))
		for _, xy := range xys {
			data = append(data, opts.ScatterData{Value: []interface{}{math.Log10(xy.X), xy.Y}})
		}
		return data
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frequencies=%d", len(b.mean))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Min:          math.Floor(math.Log10(b.minF)),
			Max:          math.Ceil(math.Log10(b.maxF)),
			Name:         "log10 frequency (Hz)",
			NameLocation: "middle",
			NameGap:      25,
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ln residual", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("mean", toData(b.mean), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries("mean+stddev", toData(b.upper), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("mean-stddev", toData(b.lower), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter, nil
}

// RenderHTML writes the scatter chart as a standalone HTML page.
func RenderHTML(w io.Writer, title string, summaries []residual.FrequencySummary) error {
	scatter, err := NewScatter(title, summaries)
	if err != nil {
		return err
	}
	return scatter.Render(w)
}

// SaveHTML writes the HTML chart to path.
func SaveHTML(fsys fsutil.FileSystem, path, title string, summaries []residual.FrequencySummary) error {
	return fsutil.WriteFile(fsys, path, func(w io.Writer) error {
		return RenderHTML(w, title, summaries)
	})
}
