// Package analytics provides use cases for deriving views from the
// loaded dataset: per-country time series, KPI summaries, country
// rankings, and correlation matrices. All views are recomputed on
// demand; the dataset never changes, so nothing is cached or invalidated.
package analytics

import (
	"sort"
	"time"

	"covid-dashboard/internal/domain/entity"
)

// Service provides read-only analytics over the loaded dataset.
// Dataset is immutable after load, so the service is safe for
// concurrent use without locking.
type Service struct {
	Data *entity.Dataset
}

// Summary is a KPI snapshot for one country (or the whole dataset) as
// of its latest record.
type Summary struct {
	Country          string    `json:"country"`
	Date             time.Time `json:"date"`
	Cases            int64     `json:"cases"`
	Deaths           int64     `json:"deaths"`
	CaseFatalityRate float64   `json:"case_fatality_rate"`
	CasesPerMillion  float64   `json:"cases_per_million"`
	DeathsPerMillion float64   `json:"deaths_per_million"`
}

// CountryTotal is one entry in a country ranking.
type CountryTotal struct {
	Country string `json:"country"`
	Cases   int64  `json:"cases"`
	Deaths  int64  `json:"deaths"`
}

// DailyPoint is one day of derived first-difference metrics for a
// country series.
type DailyPoint struct {
	Date      time.Time
	NewCases  float64
	NewDeaths float64
}

// Countries returns the sorted distinct country names, for dropdown
// population.
func (s *Service) Countries() []string {
	return s.Data.Countries()
}

// SeriesFor filters the dataset to the given country, sorted ascending
// by date. An unknown country yields an empty series, not an error.
func (s *Service) SeriesFor(country string) entity.CountrySeries {
	series := entity.CountrySeries{Country: country}
	for _, r := range s.Data.Records() {
		if r.Country == country {
			series.Records = append(series.Records, r)
		}
	}
	// Dataset records are sorted by (country, date), so the filtered
	// subsequence is already date-ordered.
	return series
}

// SeriesRange restricts a country's series to records within the
// inclusive [from, to] window. A zero bound leaves that end open, so
// SeriesRange(c, time.Time{}, time.Time{}) equals SeriesFor(c).
func (s *Service) SeriesRange(country string, from, to time.Time) entity.CountrySeries {
	full := s.SeriesFor(country)
	if from.IsZero() && to.IsZero() {
		return full
	}
	series := entity.CountrySeries{Country: country}
	for _, r := range full.Records {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		series.Records = append(series.Records, r)
	}
	return series
}

// SummaryFor returns the KPI snapshot for a country as of its latest
// record. ok is false when the country has no records.
func (s *Service) SummaryFor(country string) (Summary, bool) {
	series := s.SeriesFor(country)
	latest, ok := series.Latest()
	if !ok {
		return Summary{}, false
	}
	return summarize(country, latest.Date, latest.Cases, latest.Deaths, latest.Population), true
}

// GlobalSummary sums the latest record of every country into one
// dataset-wide snapshot.
func (s *Service) GlobalSummary() Summary {
	var cases, deaths, population int64
	var latest time.Time
	for _, country := range s.Data.Countries() {
		rec, ok := s.SeriesFor(country).Latest()
		if !ok {
			continue
		}
		cases += rec.Cases
		deaths += rec.Deaths
		population += rec.Population
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}
	return summarize("Global", latest, cases, deaths, population)
}

// TopCountries ranks countries by latest total cases, descending, and
// returns at most n entries. n <= 0 returns all countries.
func (s *Service) TopCountries(n int) []CountryTotal {
	var totals []CountryTotal
	for _, country := range s.Data.Countries() {
		rec, ok := s.SeriesFor(country).Latest()
		if !ok {
			continue
		}
		totals = append(totals, CountryTotal{Country: country, Cases: rec.Cases, Deaths: rec.Deaths})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Cases != totals[j].Cases {
			return totals[i].Cases > totals[j].Cases
		}
		return totals[i].Country < totals[j].Country
	})
	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// DailyNew derives day-over-day new cases and deaths from a cumulative
// series. The first point has no predecessor and reports zero. Negative
// differences (reporting corrections in the source data) are preserved.
func DailyNew(series entity.CountrySeries) []DailyPoint {
	points := make([]DailyPoint, 0, len(series.Records))
	for i, r := range series.Records {
		p := DailyPoint{Date: r.Date}
		if i > 0 {
			prev := series.Records[i-1]
			p.NewCases = float64(r.Cases - prev.Cases)
			p.NewDeaths = float64(r.Deaths - prev.Deaths)
		}
		points = append(points, p)
	}
	return points
}

// RollingMean computes a trailing mean over the given window. Early
// positions with fewer than window values average what is available,
// so the output has the same length as the input.
func RollingMean(values []float64, window int) []float64 {
	if window <= 0 {
		window = 1
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// summarize derives the KPI ratios from raw totals. Ratios with a zero
// denominator report zero rather than NaN so JSON encoding stays valid.
func summarize(country string, date time.Time, cases, deaths, population int64) Summary {
	sum := Summary{
		Country: country,
		Date:    date,
		Cases:   cases,
		Deaths:  deaths,
	}
	if cases > 0 {
		sum.CaseFatalityRate = float64(deaths) / float64(cases) * 100
	}
	if population > 0 {
		sum.CasesPerMillion = float64(cases) / float64(population) * 1_000_000
		sum.DeathsPerMillion = float64(deaths) / float64(population) * 1_000_000
	}
	return sum
}
