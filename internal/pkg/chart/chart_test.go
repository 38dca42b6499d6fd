package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"

	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dashboard"
	"bankdash/internal/pkg/dataset"
	"bankdash/internal/pkg/model"
)

// TestSmokeRenderFromTestdata is an end-to-end smoke test that loads the
// application testdata, computes the dashboard and renders the full page.
func TestSmokeRenderFromTestdata(t *testing.T) {
	cfg, dash := mustBuildDashboard(t, nil)

	builder := New(cfg, dash)
	page := builder.BuildPage()
	require.Len(t, page.Charts, 12)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()
	require.NotEmpty(t, html)

	// Verify basic HTML structure
	assert.True(t,
		strings.Contains(html, "<html>") || strings.Contains(html, "<!DOCTYPE html>") || strings.Contains(html, "<script"),
		"output doesn't look like HTML",
	)

	// Verify echarts is referenced
	assert.Contains(t, html, "echarts")

	// Verify the header fragment made it into the page
	assert.Contains(t, html, "Synthetic Bank Dashboard")
	assert.Contains(t, html, "dash-kpis")
	assert.Contains(t, html, "12 applications selected")

	// Write output for manual inspection
	outFile := filepath.Join(t.TempDir(), "smoke_test_output.html")
	require.NoError(t, os.WriteFile(outFile, buf.Bytes(), 0o600))
	t.Logf("HTML output written to: %s (%d bytes)", outFile, buf.Len())
}

func TestRenderFilteredPage(t *testing.T) {
	cfg, dash := mustBuildDashboard(t, dataset.Selection{"region": "North"})

	page := New(cfg, dash).BuildPage()
	page.Header.FormAction = "/"

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()

	// the filter form submits back to the serving route
	assert.Contains(t, html, `action="/"`)
	assert.Contains(t, html, `selected>North</option>`)
	// options come from the full dataset even under the filter
	assert.Contains(t, html, `>South</option>`)
	assert.Contains(t, html, "3 applications selected")
}

func TestBuildChartKinds(t *testing.T) {
	cfg, dash := mustBuildDashboard(t, nil)

	showLegend := cfg.Render.Legend != config.LegendPositionNone

	tests := []struct {
		id   string
		kind config.ChartKind
	}{
		{"target-by-risk-grade", config.ChartHist},
		{"fraud-rate-by-device", config.ChartBar},
		{"utilization-vs-payment-history", config.ChartScatter},
		{"income-by-employment-type", config.ChartBox},
		{"correlation", config.ChartHeatmap},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			spec, ok := dash.ChartByID(tt.id)
			require.True(t, ok)
			require.Equal(t, tt.kind, spec.Kind)

			c := NewChart(spec,
				WithTheme(cfg.Render.Theme),
				WithLegend(showLegend),
			)

			charter := c.Build()
			require.NotNil(t, charter)
		})
	}
}

func TestBuildHeatmapWithoutMatrix(t *testing.T) {
	// a heatmap spec without data renders an empty chart, no panic
	c := NewChart(model.ChartSpec{
		ID:   "correlation",
		Kind: config.ChartHeatmap,
	})

	require.NotNil(t, c.Build())
}

func TestPageWithoutHeader(t *testing.T) {
	page := NewPage("bare")

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	assert.NotContains(t, buf.String(), "dash-header")
}

// helpers

func mustBuildDashboard(t *testing.T, sel dataset.Selection) (*config.Config, *model.Dashboard) {
	t.Helper()

	cfg, err := config.LoadDefaults()
	require.NoError(t, err)

	ds, err := dataset.NewLoader(cfg).LoadFile(
		filepath.Join("..", "dataset", "testdata", "applications.csv"))
	require.NoError(t, err)

	return cfg, dashboard.New(cfg, ds).Build(sel)
}
