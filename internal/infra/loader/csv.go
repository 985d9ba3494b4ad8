// Package loader reads the COVID-19 dataset from a CSV source into the
// in-memory Dataset. Loading happens once at process start; a failed
// load is fatal because the dashboard must not serve with no data.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/observability/metrics"
)

// DateLayout is the expected date format in the source file.
const DateLayout = entity.DateLayout

// Required and optional column headers. Header matching is
// case-insensitive and tolerant of column order.
const (
	colDate       = "date"
	colCountry    = "location"
	colCases      = "total_cases"
	colDeaths     = "total_deaths"
	colPopulation = "population"
)

// ErrMissingHeader indicates that the source is missing a required column.
var ErrMissingHeader = errors.New("missing required column header")

// Stats summarizes what happened during a load. Skipped and duplicate
// rows are counted rather than failing the load.
type Stats struct {
	Rows       int // data rows read, excluding the header
	Loaded     int // rows converted into records
	Skipped    int // rows dropped for unparseable date or empty country
	Duplicates int // rows dropped for a repeated (date, country) key
}

// CSVLoader reads a dataset from a CSV file.
type CSVLoader struct {
	Logger *slog.Logger
}

// Load reads and cleans the CSV file at path.
//
// Cleaning rules:
//   - numeric columns go through the CoerceCount policy,
//   - rows with an unparseable date or empty country are skipped
//     (interpolation is deliberately not attempted),
//   - for duplicate (date, country) keys the first occurrence wins.
//
// Returns entity.ErrEmptyDataset (wrapped) if no parseable rows remain.
func (l *CSVLoader) Load(path string) (*entity.Dataset, Stats, error) {
	var stats Stats

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, fmt.Errorf("open dataset: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && l.Logger != nil {
			l.Logger.Warn("failed to close dataset file",
				slog.String("path", path),
				slog.Any("error", cerr))
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read dataset header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, stats, err
	}

	type key struct {
		date    string
		country string
	}
	seen := make(map[key]bool)
	var records []entity.Record

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are skipped, not fatal.
			stats.Rows++
			stats.Skipped++
			continue
		}
		stats.Rows++

		date, country, ok := parseKey(row, cols)
		if !ok {
			stats.Skipped++
			continue
		}

		k := key{date: date.Format(DateLayout), country: country}
		if seen[k] {
			stats.Duplicates++
			continue
		}
		seen[k] = true

		records = append(records, entity.Record{
			Date:       date,
			Country:    country,
			Cases:      CoerceCount(field(row, cols.cases)),
			Deaths:     CoerceCount(field(row, cols.deaths)),
			Population: CoerceCount(field(row, cols.population)),
		})
		stats.Loaded++
	}

	if len(records) == 0 {
		return nil, stats, fmt.Errorf("load %s: %w", path, entity.ErrEmptyDataset)
	}

	if l.Logger != nil {
		l.Logger.Info("dataset loaded",
			slog.String("path", path),
			slog.Int("rows", stats.Rows),
			slog.Int("loaded", stats.Loaded),
			slog.Int("skipped", stats.Skipped),
			slog.Int("duplicates", stats.Duplicates))
	}
	metrics.UpdateDatasetRecords(stats.Loaded)

	return entity.NewDataset(records), stats, nil
}

// columnIndexes holds the resolved position of each known column.
// A value of -1 means the column is absent from the source.
type columnIndexes struct {
	date       int
	country    int
	cases      int
	deaths     int
	population int
}

// mapHeader resolves header names to column positions. Date and country
// are required; the numeric columns default to zero when absent.
func mapHeader(header []string) (columnIndexes, error) {
	cols := columnIndexes{date: -1, country: -1, cases: -1, deaths: -1, population: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case colDate:
			cols.date = i
		case colCountry:
			cols.country = i
		case colCases:
			cols.cases = i
		case colDeaths:
			cols.deaths = i
		case colPopulation:
			cols.population = i
		}
	}
	if cols.date == -1 {
		return cols, fmt.Errorf("%w: %s", ErrMissingHeader, colDate)
	}
	if cols.country == -1 {
		return cols, fmt.Errorf("%w: %s", ErrMissingHeader, colCountry)
	}
	return cols, nil
}

// parseKey extracts the (date, country) key of a row. ok is false when
// the date does not parse or the country is empty.
func parseKey(row []string, cols columnIndexes) (time.Time, string, bool) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(field(row, cols.date)))
	if err != nil {
		return time.Time{}, "", false
	}
	country := strings.TrimSpace(field(row, cols.country))
	if country == "" {
		return time.Time{}, "", false
	}
	return date, country, true
}

// field returns the value at index i, or "" when the row is short or
// the column is absent.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
