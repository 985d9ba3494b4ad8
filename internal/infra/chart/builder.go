// Package chart turns aggregated views into rendered PNG artifacts:
// per-country time series lines, a top-countries bar chart, and a
// correlation heatmap. Rendering is a direct data-to-image mapping with
// no state; a Builder is safe for concurrent use.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/observability/metrics"
)

// Default artifact dimensions in pixels.
const (
	seriesWidth  = 900
	seriesHeight = 420
	barWidth     = 900
	barHeight    = 420
)

var (
	casesColor  = drawing.Color{R: 31, G: 78, B: 121, A: 255}
	deathsColor = drawing.Color{R: 244, G: 67, B: 54, A: 255}
)

// Builder renders chart artifacts.
type Builder struct {
	Logger *slog.Logger
}

// TimeSeries renders overlaid cases and deaths lines against the date
// axis. Deaths use the secondary Y axis so both lines stay readable.
// An empty series yields a "no data" placeholder image, not an error.
func (b *Builder) TimeSeries(series entity.CountrySeries) (*entity.ChartArtifact, error) {
	start := time.Now()
	art, err := b.renderTimeSeries(series)
	metrics.RecordChartRender("series", time.Since(start), err == nil)
	return art, err
}

func (b *Builder) renderTimeSeries(series entity.CountrySeries) (*entity.ChartArtifact, error) {
	name := fmt.Sprintf("series-%s", series.Country)
	if series.Empty() {
		return placeholder(name, seriesWidth, seriesHeight, "No data for selection")
	}

	dates, cases, deaths := seriesValues(series)

	graph := chart.Chart{
		Title:  fmt.Sprintf("COVID-19 Cases and Deaths - %s", series.Country),
		Width:  seriesWidth,
		Height: seriesHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Cases",
		},
		YAxisSecondary: chart.YAxis{
			Name: "Deaths",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Cases",
				XValues: dates,
				YValues: cases,
				Style:   chart.Style{StrokeColor: casesColor, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "Deaths",
				XValues: dates,
				YValues: deaths,
				YAxis:   chart.YAxisSecondary,
				Style:   chart.Style{StrokeColor: deathsColor, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render time series chart: %w", err)
	}
	return &entity.ChartArtifact{
		Name:   name,
		PNG:    buf.Bytes(),
		Width:  seriesWidth,
		Height: seriesHeight,
	}, nil
}

// seriesValues extracts parallel axis slices from a series. A single
// record is padded to two points because the chart library requires at
// least two X values per series.
func seriesValues(series entity.CountrySeries) ([]time.Time, []float64, []float64) {
	n := len(series.Records)
	dates := make([]time.Time, 0, n+1)
	cases := make([]float64, 0, n+1)
	deaths := make([]float64, 0, n+1)
	for _, r := range series.Records {
		dates = append(dates, r.Date)
		cases = append(cases, float64(r.Cases))
		deaths = append(deaths, float64(r.Deaths))
	}
	if n == 1 {
		dates = append(dates, dates[0].Add(24*time.Hour))
		cases = append(cases, cases[0])
		deaths = append(deaths, deaths[0])
	}
	return dates, cases, deaths
}

// TopCountriesBar renders a bar chart of countries ranked by total
// cases. labels and values must be parallel slices.
func (b *Builder) TopCountriesBar(labels []string, values []float64, title string) (*entity.ChartArtifact, error) {
	start := time.Now()
	art, err := b.renderTopCountriesBar(labels, values, title)
	metrics.RecordChartRender("top_countries", time.Since(start), err == nil)
	return art, err
}

func (b *Builder) renderTopCountriesBar(labels []string, values []float64, title string) (*entity.ChartArtifact, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("top countries chart: %d labels for %d values", len(labels), len(values))
	}
	if len(labels) == 0 {
		return placeholder("top-countries", barWidth, barHeight, "No data for selection")
	}

	bars := make([]chart.Value, 0, len(labels))
	for i, label := range labels {
		bars = append(bars, chart.Value{
			Label: label,
			Value: values[i],
			Style: chart.Style{FillColor: casesColor, StrokeColor: casesColor},
		})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    barWidth,
		Height:   barHeight,
		BarWidth: 40,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render top countries chart: %w", err)
	}
	return &entity.ChartArtifact{
		Name:   "top-countries",
		PNG:    buf.Bytes(),
		Width:  barWidth,
		Height: barHeight,
	}, nil
}

// placeholder renders an empty-state image carrying a short message.
// Used when a selection has no records so the page shows a blank chart
// region instead of an error.
func placeholder(name string, width, height int, message string) (*entity.ChartArtifact, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 248, G: 249, B: 250, A: 255}), image.Point{}, draw.Src)

	drawLabel(img, width/2-len(message)*basicfont.Face7x13.Advance/2, height/2, message, color.RGBA{R: 108, G: 117, B: 125, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return &entity.ChartArtifact{Name: name, PNG: buf.Bytes(), Width: width, Height: height}, nil
}

// drawLabel draws text at (x, y) using the fixed 7x13 face.
func drawLabel(img draw.Image, x, y int, text string, col color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
