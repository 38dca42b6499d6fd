package dashboard

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"

	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dataset"
)

func TestBuildUnfiltered(t *testing.T) {
	builder := mustNewBuilder(t)

	dash := builder.Build(nil)
	require.NotNil(t, dash)
	t.Log(spew.Sdump(dash.KPIs))

	assert.Equal(t, "Synthetic Bank Dashboard", dash.Title)
	assert.Equal(t, 12, dash.Rows)
	assert.Len(t, dash.KPIs, 4)
	assert.Len(t, dash.Filters, 3)

	// charts come out in configuration order
	require.Len(t, dash.Charts, 12)
	assert.Equal(t, "target-by-risk-grade", dash.Charts[0].ID)
	assert.Equal(t, config.ChartHeatmap, dash.Charts[len(dash.Charts)-1].Kind)
}

func TestBuildFiltered(t *testing.T) {
	builder := mustNewBuilder(t)

	dash := builder.Build(dataset.Selection{"region": "North"})

	assert.Equal(t, 3, dash.Rows)

	// KPIs cover only the filtered records: no North application defaults
	for _, kpi := range dash.KPIs {
		if kpi.ID == "approval-rate" {
			assert.InDelta(t, 1.0, kpi.Value, 1e-9)
		}
	}

	// the full dataset is left untouched
	assert.Equal(t, 12, builder.Dataset().Len())
}

func TestBuildEmptySelection(t *testing.T) {
	builder := mustNewBuilder(t)

	dash := builder.Build(dataset.Selection{"region": "Nowhere"})

	assert.Equal(t, 0, dash.Rows)

	for _, kpi := range dash.KPIs {
		assert.True(t, math.IsNaN(kpi.Value))
		assert.Equal(t, "n/a", kpi.Display)
	}

	// chart specs are still produced, with empty data
	assert.Len(t, dash.Charts, 12)
}

func TestFilterControls(t *testing.T) {
	builder := mustNewBuilder(t)

	t.Run("unconstrained", func(t *testing.T) {
		controls := builder.FilterControls(nil)
		require.Len(t, controls, 3)

		assert.Equal(t, "region", controls[0].Field)
		assert.Equal(t, "Region", controls[0].Title)
		assert.Equal(t, []string{"East", "North", "South", "West"}, controls[0].Options)
		assert.Equal(t, dataset.AllValues, controls[0].Selected)
	})

	t.Run("options never shrink under a selection", func(t *testing.T) {
		controls := builder.FilterControls(dataset.Selection{"region": "North"})

		assert.Equal(t, []string{"East", "North", "South", "West"}, controls[0].Options)
		assert.Equal(t, "North", controls[0].Selected)
	})
}

func TestBuildChartSpecKinds(t *testing.T) {
	builder := mustNewBuilder(t)
	dash := builder.Build(nil)

	t.Run("hist", func(t *testing.T) {
		spec, ok := dash.ChartByID("target-by-risk-grade")
		require.True(t, ok)

		assert.Equal(t, "count", spec.Aggregation)
		assert.Equal(t, []string{"A", "B", "C"}, spec.XLabels)
		// split by the target label
		assert.Equal(t, []string{"Approved", "Rejected/Default"}, spec.SeriesNames())
	})

	t.Run("bar", func(t *testing.T) {
		spec, ok := dash.ChartByID("fraud-rate-by-device")
		require.True(t, ok)

		assert.Equal(t, "mean", spec.Aggregation)
		assert.Equal(t, []string{"Desktop", "Mobile"}, spec.XLabels)
		require.Len(t, spec.Series, 1)
		assert.Equal(t, []float64{0, 0.5}, spec.Series[0].Values)
	})

	t.Run("scatter", func(t *testing.T) {
		spec, ok := dash.ChartByID("utilization-vs-payment-history")
		require.True(t, ok)

		require.NotEmpty(t, spec.Series)
		points := 0
		for _, series := range spec.Series {
			points += len(series.Points)
			for _, p := range series.Points {
				assert.NotEmpty(t, p.Key, "points carry the row key for tooltips")
			}
		}
		assert.Equal(t, 12, points)
	})

	t.Run("box", func(t *testing.T) {
		spec, ok := dash.ChartByID("income-by-employment-type")
		require.True(t, ok)

		assert.Equal(t, []string{"Contract", "Salaried", "Self-Employed"}, spec.XLabels)
		for _, series := range spec.Series {
			assert.Len(t, series.Boxes, len(spec.XLabels), "boxes align to the group labels")
			for _, box := range series.Boxes {
				if box == nil {
					continue // no data for this group and color
				}
				assert.LessOrEqual(t, box.Min, box.Median)
				assert.LessOrEqual(t, box.Median, box.Max)
			}
		}
	})

	t.Run("heatmap", func(t *testing.T) {
		spec, ok := dash.ChartByID("correlation")
		require.True(t, ok)

		require.NotNil(t, spec.Matrix)
		assert.Equal(t, builder.Dataset().Config().NumericFields(), spec.Matrix.Fields)
		assert.Equal(t, spec.Matrix.Fields, spec.XLabels)
	})
}

func TestBuildChartSpecsOnLabelGroups(t *testing.T) {
	builder := mustNewBuilder(t)
	dash := builder.Build(nil)

	// histogram over a derived label field
	spec, ok := dash.ChartByID("defaults-vs-delinquency")
	require.True(t, ok)

	assert.Equal(t, []string{"No", "Yes"}, spec.XLabels)

	var total float64
	for _, series := range spec.Series {
		require.Len(t, series.Values, 2)
		total += series.Values[0] + series.Values[1]
	}
	assert.InDelta(t, 12.0, total, 1e-9)
}

// helpers

func mustNewBuilder(t *testing.T) *Builder {
	t.Helper()

	cfg, err := config.LoadDefaults()
	require.NoError(t, err)

	ds, err := dataset.NewLoader(cfg).LoadFile(
		filepath.Join("..", "dataset", "testdata", "applications.csv"))
	require.NoError(t, err)

	return New(cfg, ds)
}
