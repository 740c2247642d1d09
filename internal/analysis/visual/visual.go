// Package visual renders the scatter + trendline chart for a completed
// analysis run.
package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"crestline/internal/analysis"
	"crestline/internal/hydrograph"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorScatter       = "#3b82f6"
	colorTrend         = "#fbbf24"

	chartWidthPx  = 1000
	chartHeightPx = 620

	trendlineSamples = 100
)

// Input bundles everything the chart needs.
type Input struct {
	Station        string
	ReferenceStage float64
	Features       []hydrograph.Feature
	Fit            analysis.Regression
}

// RenderHTML builds the interactive chart page.
func RenderHTML(input Input) ([]byte, error) {
	if len(input.Features) == 0 {
		return nil, fmt.Errorf("no events to chart")
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
			PageTitle:       fmt.Sprintf("Station %s crest analysis", input.Station),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("Station %s: Crest Height vs Rate of Rise at %.1f ft", input.Station, input.ReferenceStage),
			Subtitle:      fmt.Sprintf("%d historic events", len(input.Features)),
			Left:          "left",
			Top:           "10",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "40", TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Name:      "Rate of Rise at reference stage (ft per hour)",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Name:      "Eventual Crest Height (ft)",
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)

	points := make([]opts.ScatterData, 0, len(input.Features))
	for _, f := range input.Features {
		points = append(points, opts.ScatterData{
			Value:      []any{f.Rate, f.CrestHeight},
			Symbol:     "circle",
			SymbolSize: 12,
		})
	}
	scatter.AddSeries("Historic Events", points,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorScatter}),
	)
	scatter.Overlap(buildTrendline(input))

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(scatter)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildTrendline samples the fitted line across the observed rate range.
func buildTrendline(input Input) *charts.Line {
	minX, maxX := input.Features[0].Rate, input.Features[0].Rate
	for _, f := range input.Features {
		if f.Rate < minX {
			minX = f.Rate
		}
		if f.Rate > maxX {
			maxX = f.Rate
		}
	}
	step := (maxX - minX) / float64(trendlineSamples-1)
	data := make([]opts.LineData, 0, trendlineSamples)
	for i := 0; i < trendlineSamples; i++ {
		x := minX + step*float64(i)
		data = append(data, opts.LineData{Value: []any{x, input.Fit.Slope*x + input.Fit.Intercept}})
	}

	line := charts.NewLine()
	line.AddSeries(
		fmt.Sprintf("Best-fit line (R² = %.2f)", input.Fit.RSquared),
		data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorTrend, Width: 2}),
	)
	return line
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable probes for a usable headless Chrome once per
// process so a missing browser fails the snapshot early with a clear error.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// RenderPNG screenshots the chart HTML through headless Chrome.
func RenderPNG(ctx context.Context, html []byte) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(chartWidthPx+80), int64(chartHeightPx+80)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
