// Package report provides the use case for building the PDF report:
// it renders the report charts, composes the summary text, and hands
// both to the document writer.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/observability/metrics"
	"covid-dashboard/internal/observability/tracing"
	"covid-dashboard/internal/usecase/analytics"
)

// ChartRenderer renders the chart artifacts embedded in the report.
type ChartRenderer interface {
	TimeSeries(series entity.CountrySeries) (*entity.ChartArtifact, error)
	Heatmap(m *entity.CorrelationMatrix) (*entity.ChartArtifact, error)
	TopCountriesBar(labels []string, values []float64, title string) (*entity.ChartArtifact, error)
}

// DocumentWriter composes charts and summary text into a document file.
type DocumentWriter interface {
	Write(path, title, summary string, charts []entity.ChartArtifact) (*entity.ReportArtifact, error)
}

// Options control one report build.
type Options struct {
	Path    string // output file, overwritten if present
	Country string // featured country for the time series page
	TopN    int    // countries in the ranking section
}

// Service builds report documents from the loaded dataset.
type Service struct {
	Analytics *analytics.Service
	Charts    ChartRenderer
	Writer    DocumentWriter
	Logger    *slog.Logger
}

// Build renders the report charts, composes the summary text, and
// writes the document to opts.Path. Chart renders run concurrently;
// the page order in the document is fixed regardless.
func (s *Service) Build(ctx context.Context, opts Options) (*entity.ReportArtifact, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "report.build")
	defer span.End()

	start := time.Now()
	art, err := s.build(ctx, opts)
	metrics.RecordReportBuild(time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("report built",
			slog.String("path", art.Path),
			slog.Int("pages", art.Pages),
			slog.Int64("size_bytes", art.Size),
			slog.Duration("duration", time.Since(start)))
	}
	return art, nil
}

func (s *Service) build(ctx context.Context, opts Options) (*entity.ReportArtifact, error) {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}

	top := s.Analytics.TopCountries(opts.TopN)
	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, t := range top {
		labels[i] = t.Country
		values[i] = float64(t.Cases)
	}

	var seriesChart, topChart, heatmapChart *entity.ChartArtifact

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seriesChart, err = s.Charts.TimeSeries(s.Analytics.SeriesFor(opts.Country))
		return err
	})
	g.Go(func() error {
		var err error
		topChart, err = s.Charts.TopCountriesBar(labels, values,
			fmt.Sprintf("Top %d Countries by Total Cases", len(labels)))
		return err
	})
	g.Go(func() error {
		matrix, err := s.Analytics.Correlation(nil)
		if err != nil {
			return err
		}
		heatmapChart, err = s.Charts.Heatmap(matrix)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render report charts: %w", err)
	}

	summary := s.summaryText(opts.Country, top)
	charts := []entity.ChartArtifact{*seriesChart, *topChart, *heatmapChart}

	art, err := s.Writer.Write(opts.Path, "COVID-19 Analysis Report", summary, charts)
	if err != nil {
		return nil, fmt.Errorf("compose report: %w", err)
	}
	return art, nil
}

// summaryText builds the text section of the report: global totals and
// the top-N country ranking.
func (s *Service) summaryText(country string, top []analytics.CountryTotal) string {
	global := s.Analytics.GlobalSummary()

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %s from %d records covering %d countries.\n\n",
		time.Now().UTC().Format("2006-01-02"), s.Analytics.Data.Len(), len(s.Analytics.Countries()))
	fmt.Fprintf(&b, "Global totals as of %s: %s cases, %s deaths (case fatality rate %.2f%%).\n",
		global.Date.Format("2006-01-02"), FormatCount(global.Cases), FormatCount(global.Deaths), global.CaseFatalityRate)
	if sum, ok := s.Analytics.SummaryFor(country); ok {
		fmt.Fprintf(&b, "Featured country %s: %s cases, %s deaths, %.1f cases per million.\n",
			country, FormatCount(sum.Cases), FormatCount(sum.Deaths), sum.CasesPerMillion)
		if avg := recentDailyAverage(s.Analytics.SeriesFor(country)); avg > 0 {
			fmt.Fprintf(&b, "Recent trend for %s: %.1f new cases per day (7-day average).\n", country, avg)
		}
	}
	b.WriteString("\nTop countries by total cases:\n")
	for i, t := range top {
		fmt.Fprintf(&b, "  %2d. %s - %s cases, %s deaths\n",
			i+1, t.Country, FormatCount(t.Cases), FormatCount(t.Deaths))
	}
	return b.String()
}

// recentDailyAverage returns the latest 7-day trailing average of new
// cases for a series, or 0 when the series is empty.
func recentDailyAverage(series entity.CountrySeries) float64 {
	daily := analytics.DailyNew(series)
	if len(daily) == 0 {
		return 0
	}
	values := make([]float64, len(daily))
	for i, p := range daily {
		values[i] = p.NewCases
	}
	smoothed := analytics.RollingMean(values, 7)
	return smoothed[len(smoothed)-1]
}

// FormatCount renders a count with K/M/B suffixes for readability.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
