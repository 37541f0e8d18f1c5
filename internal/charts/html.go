package charts

import (
	"fmt"
	"io"

	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// AssetsHost overrides where the echarts javascript is loaded from. Empty
// keeps the go-echarts default.
var AssetsHost string

func initOpts(title, width, height string) opts.Initialization {
	return opts.Initialization{PageTitle: title, Theme: "dark", Width: width, Height: height, AssetsHost: AssetsHost}
}

// BearingChart is the interactive version of BearingPlot.
func BearingChart(title string, samples []rotation.Sample) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(title, "100%", "480px")),
		charts.WithTitleOpts(opts.Title{Title: "Angle to center", Subtitle: fmt.Sprintf("%s samples=%d", title, len(samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: -180, Max: 180, Name: "deg", NameLocation: "middle", NameGap: 30}),
	)
	for _, seg := range SplitSegments(samples) {
		data := make([]opts.LineData, 0, len(seg.Samples))
		for _, s := range seg.Samples {
			data = append(data, opts.LineData{Value: []interface{}{s.FrameIndex, s.BearingDegrees}})
		}
		line.AddSeries(seg.Label(), data, charts.WithItemStyleOpts(opts.ItemStyle{Color: seg.ColorHex()}))
	}
	return line
}

// TrajectoryChart is the interactive version of TrajectoryPlot.
func TrajectoryChart(title string, samples []rotation.Sample, pivot *rotation.Point2D) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(title, "900px", "900px")),
		charts.WithTitleOpts(opts.Title{Title: "Tracked point", Subtitle: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "x (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "y (px)", NameLocation: "middle", NameGap: 30}),
	)
	for _, seg := range SplitSegments(samples) {
		data := make([]opts.ScatterData, 0, len(seg.Samples))
		for _, s := range seg.Samples {
			data = append(data, opts.ScatterData{Value: []interface{}{s.X, s.Y, s.FrameIndex}})
		}
		scatter.AddSeries(seg.Label(), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seg.ColorHex()}))
	}
	if pivot != nil {
		scatter.AddSeries("pivot", []opts.ScatterData{{Value: []interface{}{pivot.X, pivot.Y}}},
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ffffff"}))
	}
	return scatter
}

// RenderHTML writes a page holding both charts.
func RenderHTML(w io.Writer, title string, samples []rotation.Sample, pivot *rotation.Point2D) error {
	page := components.NewPage()
	if AssetsHost != "" {
		page.SetAssetsHost(AssetsHost)
	}
	page.AddCharts(
		BearingChart(title, samples),
		TrajectoryChart(title, samples, pivot),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}
