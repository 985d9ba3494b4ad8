package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/handler/http/dashboard"
	"covid-dashboard/internal/infra/chart"
	"covid-dashboard/internal/infra/pdf"
	"covid-dashboard/internal/usecase/analytics"
	"covid-dashboard/internal/usecase/report"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testMux(t *testing.T) *http.ServeMux {
	t.Helper()

	analyticsSvc := &analytics.Service{Data: entity.NewDataset([]entity.Record{
		{Date: day("2021-01-01"), Country: "Kenya", Cases: 100, Deaths: 2, Population: 50_000_000},
		{Date: day("2021-01-02"), Country: "Kenya", Cases: 120, Deaths: 3, Population: 50_000_000},
		{Date: day("2021-01-01"), Country: "Uganda", Cases: 50, Deaths: 1, Population: 45_000_000},
	})}
	charts := &chart.Builder{}
	reportPath := filepath.Join(t.TempDir(), "report.pdf")

	mux := http.NewServeMux()
	dashboard.Register(mux, &dashboard.Handler{
		Analytics: analyticsSvc,
		Charts:    charts,
		Reports: &report.Service{
			Analytics: analyticsSvc,
			Charts:    charts,
			Writer:    &pdf.Writer{},
		},
		DefaultCountry: "Kenya",
		ReportPath:     reportPath,
		TopN:           10,
	}, nil)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestPage(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	body := rr.Body.String()
	require.Contains(t, body, "COVID-19 Analysis Dashboard")
	require.Contains(t, body, `<option value="Kenya" selected>`)
	require.Contains(t, body, `<option value="Uganda">`)
	require.Contains(t, body, "/charts/compare.png")
	require.Contains(t, body, "/report.pdf")
}

func TestCountries(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/api/countries")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Countries []string `json:"countries"`
		Default   string   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, []string{"Kenya", "Uganda"}, resp.Countries)
	require.Equal(t, "Kenya", resp.Default)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/api/summary?country=Kenya")
	require.Equal(t, http.StatusOK, rr.Code)

	var sum analytics.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	require.Equal(t, "Kenya", sum.Country)
	require.Equal(t, int64(120), sum.Cases)
	require.InDelta(t, 2.5, sum.CaseFatalityRate, 1e-9)
}

func TestSummary_DefaultsToConfiguredCountry(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/api/summary")
	require.Equal(t, http.StatusOK, rr.Code)

	var sum analytics.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	require.Equal(t, "Kenya", sum.Country)
}

func TestSummary_UnknownCountryNoData(t *testing.T) {
	t.Parallel()

	// A dataset with no records for the selection must still answer 200.
	rr := get(t, testMux(t), "/api/summary?country=Atlantis")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Country string `json:"country"`
		NoData  bool   `json:"no_data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "Atlantis", resp.Country)
	require.True(t, resp.NoData)
}

func TestSummary_Global(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/api/summary?country=global")
	require.Equal(t, http.StatusOK, rr.Code)

	var sum analytics.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	require.Equal(t, "Global", sum.Country)
	require.Equal(t, int64(170), sum.Cases)
}

func TestSeriesChart(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/series.png?country=Kenya")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"), "response is not a PNG")
}

func TestSeriesChart_UnknownCountryPlaceholder(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/series.png?country=Atlantis")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"))
}

func TestSeriesChart_DateWindow(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/series.png?country=Kenya&from=2021-01-02&to=2021-01-02")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"))
}

func TestSeriesChart_InvalidDate(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/series.png?country=Kenya&from=yesterday")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "invalid")
}

func TestCompareChart(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/compare.png?countries=Kenya,Uganda")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"))
}

func TestCompareChart_DefaultsToTopCountries(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/compare.png")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"))
}

func TestCompareChart_UnknownCountriesPlaceholder(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/compare.png?countries=Atlantis,Lemuria")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"))
}

func TestCompareChart_InvalidDate(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/compare.png?countries=Kenya&to=soon")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHeatmapChart(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/heatmap.png")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"))
}

func TestTopChart(t *testing.T) {
	t.Parallel()

	rr := get(t, testMux(t), "/charts/top.png")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "\x89PNG"))
}

func TestReportFile_BuildsOnDemand(t *testing.T) {
	t.Parallel()

	mux := testMux(t)
	rr := get(t, mux, "/report.pdf")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	require.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"), "response is not a PDF")

	// Second request serves the already generated file.
	rr = get(t, mux, "/report.pdf")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestReportFile_NoBuilderConfigured(t *testing.T) {
	t.Parallel()

	analyticsSvc := &analytics.Service{Data: entity.NewDataset([]entity.Record{
		{Date: day("2021-01-01"), Country: "Kenya", Cases: 100},
	})}
	mux := http.NewServeMux()
	dashboard.Register(mux, &dashboard.Handler{
		Analytics:      analyticsSvc,
		Charts:         &chart.Builder{},
		DefaultCountry: "Kenya",
		ReportPath:     filepath.Join(t.TempDir(), "report.pdf"),
	}, nil)

	rr := get(t, mux, "/report.pdf")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/summary", nil)
	rr := httptest.NewRecorder()
	testMux(t).ServeHTTP(rr, req)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
