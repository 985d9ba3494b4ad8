// Package dashboard provides the HTTP handlers for the dashboard page,
// its JSON endpoints, the chart PNG endpoints, and the report download.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/handler/http/respond"
	"covid-dashboard/internal/usecase/analytics"
	"covid-dashboard/internal/usecase/report"
)

// ChartRenderer renders the chart artifacts served by the PNG endpoints.
type ChartRenderer interface {
	TimeSeries(series entity.CountrySeries) (*entity.ChartArtifact, error)
	ComparisonSeries(series []entity.CountrySeries) (*entity.ChartArtifact, error)
	Heatmap(m *entity.CorrelationMatrix) (*entity.ChartArtifact, error)
	TopCountriesBar(labels []string, values []float64, title string) (*entity.ChartArtifact, error)
}

// maxCompareCountries caps one comparison render; beyond this the
// palette cycles and the legend stops being readable.
const maxCompareCountries = 8

// Handler serves the dashboard. All state it reads is the immutable
// dataset behind the analytics service, so one instance handles
// concurrent requests without locking; only on-demand report rebuilds
// are serialized.
type Handler struct {
	Analytics      *analytics.Service
	Charts         ChartRenderer
	Reports        *report.Service // nil disables on-demand report rebuilds
	Logger         *slog.Logger
	DefaultCountry string
	ReportPath     string
	TopN           int

	buildMu sync.Mutex
}

// Register registers the dashboard routes on mux. limit wraps the
// CPU-heavy chart endpoints; pass nil to serve them unwrapped.
func Register(mux *http.ServeMux, h *Handler, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("GET /{$}", http.HandlerFunc(h.page))
	mux.Handle("GET /api/countries", http.HandlerFunc(h.countries))
	mux.Handle("GET /api/summary", http.HandlerFunc(h.summary))
	mux.Handle("GET /charts/series.png", limit(http.HandlerFunc(h.seriesChart)))
	mux.Handle("GET /charts/compare.png", limit(http.HandlerFunc(h.compareChart)))
	mux.Handle("GET /charts/heatmap.png", limit(http.HandlerFunc(h.heatmapChart)))
	mux.Handle("GET /charts/top.png", limit(http.HandlerFunc(h.topChart)))
	mux.Handle("GET /report.pdf", http.HandlerFunc(h.reportFile))
}

// country returns the requested country, falling back to the default.
// Unknown countries pass through unchanged: they yield an empty series
// and an empty-state chart rather than an error.
func (h *Handler) country(r *http.Request) string {
	if c := r.URL.Query().Get("country"); c != "" {
		return c
	}
	return h.DefaultCountry
}

// countries returns the dropdown values: distinct country names.
func (h *Handler) countries(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"countries": h.Analytics.Countries(),
		"default":   h.DefaultCountry,
	})
}

// summary returns the KPI snapshot for the selected country, or the
// global snapshot when country=global is requested. A selection with no
// records returns a no-data marker with HTTP 200, never an error page.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	country := h.country(r)
	if country == "global" {
		respond.JSON(w, http.StatusOK, h.Analytics.GlobalSummary())
		return
	}
	sum, ok := h.Analytics.SummaryFor(country)
	if !ok {
		respond.JSON(w, http.StatusOK, map[string]any{
			"country": country,
			"no_data": true,
		})
		return
	}
	respond.JSON(w, http.StatusOK, sum)
}

// dateRange parses the optional from/to query parameters. A missing
// parameter leaves that bound open.
func dateRange(r *http.Request) (from, to time.Time, err error) {
	for name, dst := range map[string]*time.Time{"from": &from, "to": &to} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		parsed, perr := time.Parse(entity.DateLayout, raw)
		if perr != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid %s date %q, want YYYY-MM-DD", name, raw)
		}
		*dst = parsed
	}
	return from, to, nil
}

// seriesChart renders the time series PNG for the selected country,
// optionally restricted to a from/to date window.
func (h *Handler) seriesChart(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	series := h.Analytics.SeriesRange(h.country(r), from, to)
	art, err := h.Charts.TimeSeries(series)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	writePNG(w, art)
}

// compareChart renders one total-cases line per requested country
// (?countries=a,b,c). Without an explicit selection it compares the
// top countries by latest total cases. The from/to window applies.
func (h *Handler) compareChart(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var countries []string
	if raw := r.URL.Query().Get("countries"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				countries = append(countries, c)
			}
		}
	} else {
		for _, t := range h.Analytics.TopCountries(5) {
			countries = append(countries, t.Country)
		}
	}
	if len(countries) > maxCompareCountries {
		countries = countries[:maxCompareCountries]
	}

	series := make([]entity.CountrySeries, 0, len(countries))
	for _, c := range countries {
		series = append(series, h.Analytics.SeriesRange(c, from, to))
	}

	art, err := h.Charts.ComparisonSeries(series)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	writePNG(w, art)
}

// heatmapChart renders the correlation heatmap PNG. By default the
// matrix covers the full dataset; ?country= restricts it to one
// country's records.
func (h *Handler) heatmapChart(w http.ResponseWriter, r *http.Request) {
	var (
		matrix *entity.CorrelationMatrix
		err    error
	)
	if country := r.URL.Query().Get("country"); country != "" {
		matrix, err = h.Analytics.CorrelationFor(country, nil)
	} else {
		matrix, err = h.Analytics.Correlation(nil)
	}
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	art, err := h.Charts.Heatmap(matrix)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	writePNG(w, art)
}

// topChart renders the top-countries bar chart PNG.
func (h *Handler) topChart(w http.ResponseWriter, r *http.Request) {
	n := h.TopN
	if n <= 0 {
		n = 15
	}
	top := h.Analytics.TopCountries(n)
	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, t := range top {
		labels[i] = t.Country
		values[i] = float64(t.Cases)
	}
	art, err := h.Charts.TopCountriesBar(labels, values,
		fmt.Sprintf("Top %d Countries by Total Cases", len(top)))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	writePNG(w, art)
}

// reportFile serves the generated report, rebuilding it on demand when
// the file does not exist yet. A failed rebuild returns 503; it is
// never fatal to the running server.
func (h *Handler) reportFile(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.ReportPath); errors.Is(err, os.ErrNotExist) {
		if h.Reports == nil {
			respond.SafeError(w, http.StatusNotFound, fmt.Errorf("report not found"))
			return
		}
		h.buildMu.Lock()
		_, buildErr := h.Reports.Build(r.Context(), report.Options{
			Path:    h.ReportPath,
			Country: h.DefaultCountry,
			TopN:    h.TopN,
		})
		h.buildMu.Unlock()
		if buildErr != nil {
			respond.SafeError(w, http.StatusServiceUnavailable, buildErr)
			return
		}
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="covid_report.pdf"`)
	http.ServeFile(w, r, h.ReportPath)
}

func writePNG(w http.ResponseWriter, art *entity.ChartArtifact) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(art.PNG); err != nil {
		slog.Default().Warn("failed to write chart response",
			slog.String("chart", art.Name),
			slog.Any("error", err))
	}
}
