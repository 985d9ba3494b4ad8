package dashboard

import (
	"html/template"
	"net/http"

	"covid-dashboard/internal/handler/http/respond"
)

// pageData feeds the dashboard template.
type pageData struct {
	Countries []string
	Default   string
}

// page serves the single dashboard page. Selection changes are handled
// client-side by re-pointing the chart images and re-fetching the
// summary; each request is a fresh independent computation, so a
// superseded selection simply loses the race (last-write-wins).
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Countries: h.Analytics.Countries(),
		Default:   h.DefaultCountry,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>COVID-19 Analysis Dashboard</title>
<style>
  body { font-family: "Inter", sans-serif; background: #f8f9fa; margin: 0; color: #333; }
  header { background: #1f4e79; color: #fff; padding: 20px; }
  header h1 { margin: 0; font-size: 1.8rem; }
  header p { margin: 4px 0 0; opacity: .9; }
  main { max-width: 1000px; margin: 0 auto; padding: 20px; }
  .card { background: #fff; border: 1px solid #e9ecef; border-radius: 12px; padding: 20px; margin-bottom: 24px; }
  .kpis { display: flex; gap: 16px; flex-wrap: wrap; }
  .kpi { flex: 1 1 180px; }
  .kpi .value { font-size: 1.6rem; font-weight: 700; }
  .kpi .label { color: #6c757d; font-size: .85rem; text-transform: uppercase; }
  img.chart { width: 100%; border-radius: 8px; }
  select { padding: 8px; font-size: 1rem; min-width: 240px; }
  a.report { display: inline-block; background: #1f4e79; color: #fff; padding: 10px 18px; border-radius: 8px; text-decoration: none; }
</style>
</head>
<body>
<header>
  <h1>COVID-19 Analysis Dashboard</h1>
  <p>Cases, deaths, and correlations by country</p>
</header>
<main>
  <div class="card">
    <label for="country"><strong>Select Country:</strong></label>
    <select id="country">
      {{- range .Countries}}
      <option value="{{.}}"{{if eq . $.Default}} selected{{end}}>{{.}}</option>
      {{- end}}
    </select>
    <label for="from"><strong>From:</strong></label>
    <input type="date" id="from">
    <label for="to"><strong>To:</strong></label>
    <input type="date" id="to">
  </div>
  <div class="card kpis" id="kpis">
    <div class="kpi"><div class="value" id="kpi-cases">–</div><div class="label">Total Cases</div></div>
    <div class="kpi"><div class="value" id="kpi-deaths">–</div><div class="label">Total Deaths</div></div>
    <div class="kpi"><div class="value" id="kpi-cfr">–</div><div class="label">Case Fatality Rate</div></div>
    <div class="kpi"><div class="value" id="kpi-cpm">–</div><div class="label">Cases per Million</div></div>
  </div>
  <div class="card">
    <h3>Cases and Deaths Over Time</h3>
    <img class="chart" id="series-chart" alt="time series chart">
  </div>
  <div class="card">
    <h3>Country Comparison</h3>
    <p>Hold Ctrl (or Cmd) to select multiple countries. Leave empty for the top countries.</p>
    <select id="compare-countries" multiple size="6">
      {{- range .Countries}}
      <option value="{{.}}">{{.}}</option>
      {{- end}}
    </select>
    <img class="chart" id="compare-chart" src="/charts/compare.png" alt="country comparison chart">
  </div>
  <div class="card">
    <h3>Top Countries by Total Cases</h3>
    <img class="chart" id="top-chart" src="/charts/top.png" alt="top countries chart">
  </div>
  <div class="card">
    <h3>Correlation Analysis</h3>
    <img class="chart" id="heatmap-chart" src="/charts/heatmap.png" alt="correlation heatmap">
  </div>
  <div class="card">
    <h3>Report</h3>
    <p>Download the full analysis report with charts and summary text.</p>
    <a class="report" href="/report.pdf">Download Report (PDF)</a>
  </div>
</main>
<script>
const select = document.getElementById("country");
const fromInput = document.getElementById("from");
const toInput = document.getElementById("to");
const compareSelect = document.getElementById("compare-countries");
function fmt(n) {
  if (n >= 1e9) return (n / 1e9).toFixed(1) + "B";
  if (n >= 1e6) return (n / 1e6).toFixed(1) + "M";
  if (n >= 1e3) return (n / 1e3).toFixed(1) + "K";
  return String(Math.round(n));
}
function rangeParams() {
  let params = "";
  if (fromInput.value) params += "&from=" + fromInput.value;
  if (toInput.value) params += "&to=" + toInput.value;
  return params;
}
function updateCompare() {
  const picked = Array.from(compareSelect.selectedOptions).map(o => o.value);
  let src = "/charts/compare.png?countries=" + encodeURIComponent(picked.join(","));
  document.getElementById("compare-chart").src = src + rangeParams();
}
async function update() {
  const country = select.value;
  document.getElementById("series-chart").src =
    "/charts/series.png?country=" + encodeURIComponent(country) + rangeParams();
  updateCompare();
  const res = await fetch("/api/summary?country=" + encodeURIComponent(country));
  const sum = await res.json();
  const noData = !!sum.no_data;
  document.getElementById("kpi-cases").textContent = noData ? "no data" : fmt(sum.cases);
  document.getElementById("kpi-deaths").textContent = noData ? "no data" : fmt(sum.deaths);
  document.getElementById("kpi-cfr").textContent = noData ? "no data" : sum.case_fatality_rate.toFixed(2) + "%";
  document.getElementById("kpi-cpm").textContent = noData ? "no data" : fmt(sum.cases_per_million);
}
select.addEventListener("change", update);
fromInput.addEventListener("change", update);
toInput.addEventListener("change", update);
compareSelect.addEventListener("change", updateCompare);
update();
</script>
</body>
</html>
`))
