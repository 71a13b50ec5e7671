// Package report renders the static dashboard. It consumes the final
// scored-and-tagged records plus two chart-ready projections and has no
// logic of its own beyond formatting.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"time"

	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/domain"
)

// TableRow is one creative formatted for the ranked tables.
type TableRow struct {
	AdName string
	Score  float64
	Spend  float64
	ROAS   float64
	CPA    float64
	CTRPct float64
	CVRPct float64
}

// Chart is one scatter projection: points sized by spend, colored by
// composite score.
type Chart struct {
	DivID      string    `json:"div_id"`
	Title      string    `json:"title"`
	XTitle     string    `json:"x_title"`
	YTitle     string    `json:"y_title"`
	ColorScale string    `json:"color_scale"`
	X          []float64 `json:"x"`
	Y          []float64 `json:"y"`
	Size       []float64 `json:"size"`
	SizeRef    float64   `json:"size_ref"`
	Color      []float64 `json:"color"`
	Labels     []string  `json:"labels"`
}

// Data is everything the dashboard template needs.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Top         []TableRow
	Bottom      []TableRow
	Efficiency  Chart
	Acquisition Chart
	Hypotheses  []string
}

// Build projects the ranked records into dashboard data. Records must
// already be sorted by score descending.
func Build(records []domain.CreativeRecord, hypotheses []string, cfg config.ReportConfig) Data {
	data := Data{
		Title:       cfg.Title,
		GeneratedAt: time.Now().UTC(),
		Hypotheses:  hypotheses,
	}

	for i := range records {
		row := TableRow{
			AdName: records[i].AdName,
			Score:  round2(records[i].Score),
			Spend:  round2(records[i].Spend),
			ROAS:   round2(records[i].ROAS),
			CPA:    round2(records[i].CPA),
			CTRPct: round2(records[i].CTR * 100),
			CVRPct: round2(records[i].CVR * 100),
		}
		if i < cfg.TopTable {
			data.Top = append(data.Top, row)
		}
		if i >= len(records)-cfg.BottomTable {
			data.Bottom = append(data.Bottom, row)
		}
	}

	data.Efficiency = buildChart(records, "efficiency_chart", "Creative Efficiency: ROAS vs. CPA (bubble size = spend)",
		"Cost Per Acquisition", "Return On Ad Spend (ROAS)", "Inferno",
		func(r *domain.CreativeRecord) (float64, float64) { return round2(r.CPA), round2(r.ROAS) })
	data.Acquisition = buildChart(records, "acquisition_chart", "Creative Acquisition: CTR vs. CVR (bubble size = spend)",
		"Click-Through Rate (%)", "Conversion Rate (%)", "Viridis",
		func(r *domain.CreativeRecord) (float64, float64) { return round2(r.CTR * 100), round2(r.CVR * 100) })

	return data
}

func buildChart(records []domain.CreativeRecord, divID, title, xTitle, yTitle, scale string, project func(*domain.CreativeRecord) (float64, float64)) Chart {
	chart := Chart{DivID: divID, Title: title, XTitle: xTitle, YTitle: yTitle, ColorScale: scale}

	maxSpend := 0.0
	for i := range records {
		x, y := project(&records[i])
		chart.X = append(chart.X, x)
		chart.Y = append(chart.Y, y)
		chart.Size = append(chart.Size, records[i].Spend)
		chart.Color = append(chart.Color, round2(records[i].Score))
		chart.Labels = append(chart.Labels, records[i].AdName)
		if records[i].Spend > maxSpend {
			maxSpend = records[i].Spend
		}
	}
	// Plotly area sizing: scale the largest bubble to ~40px diameter.
	if maxSpend > 0 {
		chart.SizeRef = 2 * maxSpend / (40 * 40)
	} else {
		chart.SizeRef = 1
	}
	return chart
}

// Render writes the dashboard HTML for the given data.
func Render(w io.Writer, data Data) error {
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"tojson": func(v interface{}) (template.JS, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(b), nil //nolint:gosec // marshaled from typed data
		},
	}).Parse(dashboardTemplate)
	if err != nil {
		return fmt.Errorf("parse dashboard template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// RenderFile renders the dashboard to a file.
func RenderFile(path string, data Data) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}
	defer file.Close()
	return Render(file, data)
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

const dashboardTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
    <script src="https://cdn.plot.ly/plotly-latest.min.js"></script>
    <style>
        .container-fluid { max-width: 1400px; }
        .chart { height: 500px; }
        table th:first-child { text-align: left; }
        table th:nth-child(n+2), table td:nth-child(n+2) { text-align: center; }
    </style>
</head>
<body>
    <div class="container-fluid py-5">
        <h1 class="text-center mb-5 display-4 text-primary">{{.Title}}</h1>

        <div class="row mb-5">
            <div class="col-12">
                <h2>Top Creatives (Ranked by Composite Score)</h2>
                <p class="text-muted">The composite score is a batch-relative index (0-100) combining efficiency (ROAS) and acquisition (CTR, CVR) metrics. Use spend to assess risk.</p>
                {{template "table" .Top}}
            </div>
        </div>

        <div class="row mb-5">
            <div class="col-12">
                <h2 class="text-danger">Bottom Creatives (Identify What to Pause)</h2>
                <p class="text-muted">These creatives have the lowest composite scores in the batch.</p>
                {{template "table" .Bottom}}
            </div>
        </div>

        {{if .Hypotheses}}
        <div class="row mb-5">
            <div class="col-12">
                <h2>Tag Hypotheses</h2>
                <ul class="list-group">
                    {{range .Hypotheses}}<li class="list-group-item">{{.}}</li>
                    {{end}}
                </ul>
            </div>
        </div>
        {{end}}

        <div class="row">
            <div class="col-lg-6"><div id="{{.Efficiency.DivID}}" class="chart"></div></div>
            <div class="col-lg-6"><div id="{{.Acquisition.DivID}}" class="chart"></div></div>
        </div>

        <footer class="mt-5 text-center text-muted border-top pt-3">
            Generated by creativerank at {{.GeneratedAt.Format "2006-01-02 15:04:05 UTC"}}
        </footer>
    </div>

    <script>
    function drawScatter(chart) {
        Plotly.newPlot(chart.div_id, [{
            x: chart.x,
            y: chart.y,
            text: chart.labels,
            mode: 'markers',
            marker: {
                size: chart.size,
                sizemode: 'area',
                sizeref: chart.size_ref,
                color: chart.color,
                colorscale: chart.color_scale,
                showscale: true,
                colorbar: { title: 'Score' }
            },
            hovertemplate: '%{text}<br>%{xaxis.title.text}: %{x}<br>%{yaxis.title.text}: %{y}<extra></extra>'
        }], {
            title: chart.title,
            xaxis: { title: chart.x_title },
            yaxis: { title: chart.y_title }
        });
    }
    drawScatter({{tojson .Efficiency}});
    drawScatter({{tojson .Acquisition}});
    </script>
</body>
</html>
{{define "table"}}
<table class="table table-striped table-hover">
    <thead>
        <tr><th>Ad Name</th><th>Score (0-100)</th><th>Spend</th><th>ROAS</th><th>CPA</th><th>CTR (%)</th><th>CVR (%)</th></tr>
    </thead>
    <tbody>
        {{range .}}<tr><td>{{.AdName}}</td><td>{{printf "%.2f" .Score}}</td><td>{{printf "%.2f" .Spend}}</td><td>{{printf "%.2f" .ROAS}}</td><td>{{printf "%.2f" .CPA}}</td><td>{{printf "%.2f" .CTRPct}}</td><td>{{printf "%.2f" .CVRPct}}</td></tr>
        {{end}}
    </tbody>
</table>
{{end}}`
