package chart

import (
	"RandomWalkService/internal/model"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Chart labels and styling
const (
	Title       = "Random Walk of Stock Price"
	XAxisLabel  = "Time"
	YAxisLabel  = "Price (₹)"
	SeriesName  = "Price"
	LineColor   = "blue"
	LineWidth   = 2
	MarkerSize  = 8
	MarkerColor = "red"
)

// Options controls the rendered page size
type Options struct {
	Width  string
	Height string
}

// DefaultOptions fills the embedding frame
func DefaultOptions() Options {
	return Options{Width: "100%", Height: "480px"}
}

// NewLine builds a line-with-markers chart of the series
func NewLine(series model.Series, o Options) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: Title}),
		// axis trigger shows every value at the hovered time, like a unified x hover
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: XAxisLabel, Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: YAxisLabel, Scale: opts.Bool(true)}),
	)

	xs := make([]string, len(series))
	items := make([]opts.LineData, len(series))
	for i, p := range series {
		xs[i] = fmt.Sprintf("%d", p.Time)
		items[i] = opts.LineData{Value: p.Price}
	}

	line.SetXAxis(xs).AddSeries(SeriesName, items,
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
			Symbol:     "circle",
			SymbolSize: MarkerSize,
		}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: LineColor, Width: LineWidth}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: MarkerColor}),
	)
	return line
}

// Render writes a standalone HTML page holding the chart
func Render(w io.Writer, series model.Series, o Options) error {
	if err := NewLine(series, o).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
