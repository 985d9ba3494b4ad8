// Command report generates the analysis report PDF from the command
// line, without starting the dashboard server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"covid-dashboard/internal/infra/chart"
	"covid-dashboard/internal/infra/loader"
	"covid-dashboard/internal/infra/pdf"
	"covid-dashboard/internal/observability/logging"
	"covid-dashboard/internal/usecase/analytics"
	"covid-dashboard/internal/usecase/report"
)

func main() {
	var (
		source  = flag.String("source", "data/covid.csv", "path to the dataset CSV")
		out     = flag.String("out", "covid_report.pdf", "path to write the report PDF")
		country = flag.String("country", "Kenya", "featured country for the time series page")
		topN    = flag.Int("top", 15, "number of countries on the ranking page")
	)
	flag.Parse()

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	csvLoader := &loader.CSVLoader{Logger: logger}
	dataset, stats, err := csvLoader.Load(*source)
	if err != nil {
		logger.Error("failed to load dataset",
			slog.String("path", *source),
			slog.Any("error", err))
		os.Exit(1)
	}

	svc := &report.Service{
		Analytics: &analytics.Service{Data: dataset},
		Charts:    &chart.Builder{Logger: logger},
		Writer:    &pdf.Writer{},
		Logger:    logger,
	}

	artifact, err := svc.Build(context.Background(), report.Options{
		Path:    *out,
		Country: *country,
		TopN:    *topN,
	})
	if err != nil {
		logger.Error("report build failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("report written",
		slog.String("path", artifact.Path),
		slog.Int("pages", artifact.Pages),
		slog.Int64("bytes", artifact.Size),
		slog.Int("records", stats.Loaded))
}
