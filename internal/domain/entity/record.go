// Package entity defines the core domain types for the dashboard: the
// immutable COVID-19 dataset loaded at startup and the derived views and
// artifacts computed from it.
package entity

import (
	"sort"
	"time"
)

// DateLayout is the canonical date format of the dataset, used by the
// loader and by date query parameters.
const DateLayout = "2006-01-02"

// Record is a single observation for one country on one date.
// Deaths exceeding Cases is tolerated; the loader never rejects a row
// for it.
type Record struct {
	Date       time.Time
	Country    string
	Cases      int64
	Deaths     int64
	Population int64
}

// Dataset is the full in-memory table of records. It is built once at
// process start and is read-only afterwards, so concurrent readers need
// no locking.
type Dataset struct {
	records   []Record
	countries []string
}

// NewDataset builds a Dataset from the given records. Records are sorted
// by (country, date) and the distinct country list is precomputed for
// dropdown population. The input slice is not retained.
func NewDataset(records []Record) *Dataset {
	recs := make([]Record, len(records))
	copy(recs, records)
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Country != recs[j].Country {
			return recs[i].Country < recs[j].Country
		}
		return recs[i].Date.Before(recs[j].Date)
	})

	seen := make(map[string]bool)
	var countries []string
	for _, r := range recs {
		if !seen[r.Country] {
			seen[r.Country] = true
			countries = append(countries, r.Country)
		}
	}
	sort.Strings(countries)

	return &Dataset{records: recs, countries: countries}
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns the underlying records sorted by (country, date).
// Callers must treat the returned slice as read-only.
func (d *Dataset) Records() []Record {
	return d.records
}

// Countries returns the sorted distinct country names in the dataset.
// Callers must treat the returned slice as read-only.
func (d *Dataset) Countries() []string {
	return d.countries
}

// HasCountry reports whether the dataset contains any record for the
// given country.
func (d *Dataset) HasCountry(name string) bool {
	i := sort.SearchStrings(d.countries, name)
	return i < len(d.countries) && d.countries[i] == name
}

// DefaultCountry returns preferred when the dataset contains it,
// otherwise the first country in sorted order. Every consumer of the
// configured default must resolve it through here so the dashboard and
// the report feature the same country.
func (d *Dataset) DefaultCountry(preferred string) string {
	if d.HasCountry(preferred) || len(d.countries) == 0 {
		return preferred
	}
	return d.countries[0]
}

// CountrySeries is the date-ordered subsequence of the dataset for one
// country. It is recomputed on demand and never persisted.
type CountrySeries struct {
	Country string
	Records []Record
}

// Empty reports whether the series has no records.
func (s CountrySeries) Empty() bool {
	return len(s.Records) == 0
}

// Latest returns the most recent record in the series, or false if the
// series is empty.
func (s CountrySeries) Latest() (Record, bool) {
	if len(s.Records) == 0 {
		return Record{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// CorrelationMatrix holds pairwise Pearson correlation coefficients for
// a set of numeric columns. Cells may be NaN when a column has zero
// variance; callers must render those explicitly instead of crashing.
type CorrelationMatrix struct {
	Columns []string
	Cells   [][]float64
}

// At returns the coefficient for columns i and j.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.Cells[i][j]
}

// Size returns the number of columns in the matrix.
func (m *CorrelationMatrix) Size() int {
	return len(m.Columns)
}

// ChartArtifact is a rendered chart image, consumed by the dashboard
// page (served as PNG) or embedded into the report, then discarded.
type ChartArtifact struct {
	Name   string
	PNG    []byte
	Width  int
	Height int
}

// ReportArtifact describes a generated report document. The file at
// Path is written once and never mutated.
type ReportArtifact struct {
	Path      string
	Pages     int
	Size      int64
	CreatedAt time.Time
}
