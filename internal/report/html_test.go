package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/domain"
)

func rankedRecords() []domain.CreativeRecord {
	return []domain.CreativeRecord{
		{AdName: "Top Ad", Score: 100, Spend: 500, ROAS: 4.2, CPA: 12.5, CTR: 0.031, CVR: 0.08},
		{AdName: "Mid Ad", Score: 61.7, Spend: 300, ROAS: 2.0, CPA: 30, CTR: 0.02, CVR: 0.04},
		{AdName: "Low Ad", Score: 5.2, Spend: 100, ROAS: 0.4, CPA: 95, CTR: 0.008, CVR: 0.01},
	}
}

func TestBuild_TablesAndCharts(t *testing.T) {
	cfg := config.ReportConfig{Title: "Test Dashboard", TopTable: 2, BottomTable: 2}

	data := Build(rankedRecords(), []string{"WINNING (format): ..."}, cfg)

	require.Len(t, data.Top, 2)
	require.Len(t, data.Bottom, 2)
	assert.Equal(t, "Top Ad", data.Top[0].AdName)
	assert.Equal(t, "Low Ad", data.Bottom[1].AdName)
	assert.Equal(t, 3.1, data.Top[0].CTRPct, "CTR is shown as a rounded percentage")

	require.Len(t, data.Efficiency.X, 3)
	assert.Equal(t, 12.5, data.Efficiency.X[0], "efficiency chart plots CPA on x")
	assert.Equal(t, 4.2, data.Efficiency.Y[0], "efficiency chart plots ROAS on y")
	assert.Equal(t, 3.1, data.Acquisition.X[0], "acquisition chart plots CTR% on x")
	assert.Equal(t, 8.0, data.Acquisition.Y[0], "acquisition chart plots CVR% on y")
	assert.Equal(t, []float64{500, 300, 100}, data.Efficiency.Size, "points sized by spend")
	assert.Greater(t, data.Efficiency.SizeRef, 0.0)
}

func TestRender_ContainsSections(t *testing.T) {
	cfg := config.ReportConfig{Title: "Creative Performance Dashboard", TopTable: 10, BottomTable: 10}
	data := Build(rankedRecords(), []string{"WINNING (hook): fast edits outperform"}, cfg)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, data))
	html := buf.String()

	assert.Contains(t, html, "<title>Creative Performance Dashboard</title>")
	assert.Contains(t, html, "Top Ad")
	assert.Contains(t, html, "Low Ad")
	assert.Contains(t, html, "efficiency_chart")
	assert.Contains(t, html, "acquisition_chart")
	assert.Contains(t, html, "cdn.plot.ly")
	assert.Contains(t, html, "fast edits outperform")
	assert.Equal(t, 2, strings.Count(html, "drawScatter({"), "both charts are drawn")
}

func TestRender_NoHypothesesSectionWhenEmpty(t *testing.T) {
	cfg := config.ReportConfig{Title: "T", TopTable: 1, BottomTable: 1}
	data := Build(rankedRecords(), nil, cfg)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, data))
	assert.NotContains(t, buf.String(), "Tag Hypotheses")
}
