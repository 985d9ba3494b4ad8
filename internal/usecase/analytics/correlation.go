package analytics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"covid-dashboard/internal/domain/entity"
)

// DefaultColumns is the column set used for the dashboard heatmap.
var DefaultColumns = []string{
	"total_cases",
	"total_deaths",
	"population",
	"cases_per_million",
	"deaths_per_million",
	"case_fatality_rate",
}

// columnExtractors maps a numeric column name to the function that
// reads it from a record. Derived ratios use the same zero-denominator
// policy as summarize.
var columnExtractors = map[string]func(entity.Record) float64{
	"total_cases":  func(r entity.Record) float64 { return float64(r.Cases) },
	"total_deaths": func(r entity.Record) float64 { return float64(r.Deaths) },
	"population":   func(r entity.Record) float64 { return float64(r.Population) },
	"cases_per_million": func(r entity.Record) float64 {
		if r.Population == 0 {
			return 0
		}
		return float64(r.Cases) / float64(r.Population) * 1_000_000
	},
	"deaths_per_million": func(r entity.Record) float64 {
		if r.Population == 0 {
			return 0
		}
		return float64(r.Deaths) / float64(r.Population) * 1_000_000
	},
	"case_fatality_rate": func(r entity.Record) float64 {
		if r.Cases == 0 {
			return 0
		}
		return float64(r.Deaths) / float64(r.Cases) * 100
	},
}

// Correlation computes the pairwise Pearson correlation matrix for the
// named numeric columns over the full dataset. An empty column list
// selects DefaultColumns.
//
// Zero-variance columns yield NaN cells (including on the diagonal);
// callers must render those explicitly instead of treating them as an
// error. The result is symmetric.
func (s *Service) Correlation(columns []string) (*entity.CorrelationMatrix, error) {
	return correlationOver(s.Data.Records(), columns)
}

// CorrelationFor computes the same matrix restricted to one country's
// records. An unknown country yields a matrix of NaN cells (empty
// column samples have no variance), mirroring SeriesFor's empty-series
// behavior.
func (s *Service) CorrelationFor(country string, columns []string) (*entity.CorrelationMatrix, error) {
	return correlationOver(s.SeriesFor(country).Records, columns)
}

func correlationOver(records []entity.Record, columns []string) (*entity.CorrelationMatrix, error) {
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	samples := make([][]float64, len(columns))
	for i, col := range columns {
		extract, ok := columnExtractors[col]
		if !ok {
			return nil, fmt.Errorf("correlation column %q: %w", col, entity.ErrUnknownColumn)
		}
		values := make([]float64, len(records))
		for j, r := range records {
			values[j] = extract(r)
		}
		samples[i] = values
	}

	cells := make([][]float64, len(columns))
	for i := range cells {
		cells[i] = make([]float64, len(columns))
	}
	for i := 0; i < len(columns); i++ {
		for j := i; j < len(columns); j++ {
			// stat.Correlation returns NaN for zero-variance input,
			// which is exactly the representation callers expect.
			c := stat.Correlation(samples[i], samples[j], nil)
			cells[i][j] = c
			cells[j][i] = c
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &entity.CorrelationMatrix{Columns: cols, Cells: cells}, nil
}
