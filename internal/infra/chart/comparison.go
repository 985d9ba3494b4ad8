package chart

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/observability/metrics"
)

// comparePalette cycles across the compared countries. The first two
// entries reuse the dashboard line colors so a single-country
// comparison looks like the main series chart.
var comparePalette = []drawing.Color{
	casesColor,
	deathsColor,
	{R: 56, G: 142, B: 60, A: 255},
	{R: 123, G: 31, B: 162, A: 255},
	{R: 255, G: 143, B: 0, A: 255},
	{R: 0, G: 131, B: 143, A: 255},
	{R: 93, G: 64, B: 55, A: 255},
	{R: 69, G: 90, B: 100, A: 255},
}

// ComparisonSeries renders one total-cases line per country on a
// shared date axis. Countries with no records in the selection are
// skipped; when nothing remains a placeholder is rendered instead.
func (b *Builder) ComparisonSeries(series []entity.CountrySeries) (*entity.ChartArtifact, error) {
	start := time.Now()
	art, err := b.renderComparisonSeries(series)
	metrics.RecordChartRender("comparison", time.Since(start), err == nil)
	return art, err
}

func (b *Builder) renderComparisonSeries(series []entity.CountrySeries) (*entity.ChartArtifact, error) {
	var lines []chart.Series
	var names []string
	for _, s := range series {
		if s.Empty() {
			continue
		}
		dates, cases := caseValues(s)
		color := comparePalette[len(lines)%len(comparePalette)]
		lines = append(lines, chart.TimeSeries{
			Name:    s.Country,
			XValues: dates,
			YValues: cases,
			Style:   chart.Style{StrokeColor: color, StrokeWidth: 2},
		})
		names = append(names, s.Country)
	}

	if len(lines) == 0 {
		return placeholder("comparison", seriesWidth, seriesHeight, "No data for selection")
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Total Cases - %s", strings.Join(names, " vs ")),
		Width:  seriesWidth,
		Height: seriesHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Cases",
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render comparison chart: %w", err)
	}
	return &entity.ChartArtifact{
		Name:   "comparison",
		PNG:    buf.Bytes(),
		Width:  seriesWidth,
		Height: seriesHeight,
	}, nil
}

// caseValues extracts the date and total-cases axes from a series,
// padding a single record to two points like seriesValues.
func caseValues(series entity.CountrySeries) ([]time.Time, []float64) {
	n := len(series.Records)
	dates := make([]time.Time, 0, n+1)
	cases := make([]float64, 0, n+1)
	for _, r := range series.Records {
		dates = append(dates, r.Date)
		cases = append(cases, float64(r.Cases))
	}
	if n == 1 {
		dates = append(dates, dates[0].Add(24*time.Hour))
		cases = append(cases, cases[0])
	}
	return dates, cases
}
