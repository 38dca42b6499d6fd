// Package dashboard assembles the render-ready dashboard: it applies a
// filter selection to the dataset, computes the KPI metrics and builds the
// ordered chart specs the configuration asks for.
package dashboard

import (
	"log/slog"

	"bankdash/internal/pkg/analytics"
	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dataset"
	"bankdash/internal/pkg/model"
)

// Builder constructs dashboards from the full dataset and a filter
// selection.
//
// The builder holds the dataset loaded once per process; every call to
// [Builder.Build] is an independent, pure recomputation pass.
type Builder struct {
	cfg *config.Config
	ds  *dataset.Dataset
	l   *slog.Logger
}

// New creates a dashboard [Builder], given a [config.Config] and the loaded
// full dataset.
func New(cfg *config.Config, ds *dataset.Dataset) *Builder {
	return &Builder{
		cfg: cfg,
		ds:  ds,
		l:   slog.Default().With(slog.String("module", "dashboard")),
	}
}

// Dataset returns the full dataset the builder was created with.
func (b *Builder) Dataset() *dataset.Dataset {
	return b.ds
}

// Build runs one full recomputation pass for the given filter selection:
// filter, KPI metrics, grouped aggregates, correlation and chart specs.
//
// An empty filter result is a legitimate state: KPIs come back NaN and the
// chart specs are still produced, with empty series.
func (b *Builder) Build(sel dataset.Selection) *model.Dashboard {
	filtered := b.ds.Filter(sel)

	dash := &model.Dashboard{
		Title:       b.cfg.Name,
		Description: b.cfg.Description,
		Environment: b.cfg.Environment,
		Rows:        filtered.Len(),
		Filters:     b.FilterControls(sel),
		KPIs:        analytics.Summary(filtered, b.cfg.Metrics),
		Charts:      b.BuildChartSpecs(filtered),
	}

	b.l.Info("built dashboard",
		slog.Int("rows", dash.Rows),
		slog.Int("kpis", len(dash.KPIs)),
		slog.Int("charts", len(dash.Charts)),
	)

	return dash
}

// FilterControls describes the selection controls: one per configured filter
// dimension, with options drawn from the full (unfiltered) dataset so the
// option lists do not shrink as filters are applied.
func (b *Builder) FilterControls(sel dataset.Selection) []model.FilterControl {
	controls := make([]model.FilterControl, 0, len(b.cfg.Filters))

	for _, field := range b.cfg.Filters {
		selected := dataset.AllValues
		if value, constrained := sel.Wants(field); constrained {
			selected = value
		}

		controls = append(controls, model.FilterControl{
			Field:    field,
			Title:    config.Titleize(field),
			Options:  b.ds.DistinctValues(field),
			Selected: selected,
		})
	}

	return controls
}

// BuildChartSpecs assembles the fixed, ordered list of chart specs from the
// configured chart list. It performs no rendering: each spec only describes
// what should be rendered, together with the aggregated data it covers.
func (b *Builder) BuildChartSpecs(filtered *dataset.Dataset) []model.ChartSpec {
	specs := make([]model.ChartSpec, 0, len(b.cfg.Charts))

	for _, cc := range b.cfg.Charts {
		spec := model.ChartSpec{
			ID:          cc.ID,
			Kind:        cc.Kind,
			Title:       cc.Title,
			X:           cc.X,
			Y:           cc.Y,
			Color:       cc.Color,
			Aggregation: cc.Kind.Aggregation(),
		}

		switch cc.Kind {
		case config.ChartHist:
			spec.XLabels, spec.Series = analytics.CountByGroup(filtered, cc.X, cc.Color)
		case config.ChartBar:
			spec.XLabels, spec.Series = rateSeries(filtered, cc)
		case config.ChartScatter:
			spec.Series = scatterSeries(filtered, cc)
		case config.ChartBox:
			spec.XLabels, spec.Series = boxSeries(filtered, cc)
		case config.ChartHeatmap:
			matrix := analytics.Correlation(filtered)
			spec.Matrix = &matrix
			spec.XLabels = matrix.Fields
		}

		if len(spec.Series) == 0 && spec.Matrix == nil {
			b.l.Warn("chart has no data", slog.String("chart_id", cc.ID))
		}

		specs = append(specs, spec)
		b.l.Info("added chart spec",
			slog.String("chart_id", cc.ID),
			slog.String("kind", cc.Kind.String()),
		)
	}

	return specs
}

// rateSeries turns the grouped rate aggregate into a single aligned series.
func rateSeries(filtered *dataset.Dataset, cc config.Chart) (groups []string, series []model.Series) {
	rates := analytics.RateByGroup(filtered, cc.X, cc.Rate)
	if len(rates) == 0 {
		return nil, nil
	}

	groups = make([]string, 0, len(rates))
	values := make([]float64, 0, len(rates))
	for _, rate := range rates {
		groups = append(groups, rate.Group)
		values = append(values, rate.Rate)
	}

	return groups, []model.Series{{Name: "Rate", Values: values}}
}

// scatterSeries builds one point series per color value (a single series
// when no color field is set). Point keys carry the row identifier for
// tooltips.
func scatterSeries(filtered *dataset.Dataset, cc config.Chart) []model.Series {
	colors := []string{""}
	if cc.Color != "" {
		colors = filtered.DistinctValues(cc.Color)
	}

	series := make([]model.Series, 0, len(colors))
	for _, color := range colors {
		name := color
		if name == "" {
			name = "All"
		}
		points := make([]model.Point, 0)

		for _, rec := range filtered.Records() {
			if cc.Color != "" && filtered.Category(rec, cc.Color) != color {
				continue
			}
			x, okX := filtered.Value(rec, cc.X)
			y, okY := filtered.Value(rec, cc.Y)
			if !okX || !okY {
				continue
			}
			points = append(points, model.Point{X: x, Y: y, Key: rec.Key})
		}

		if len(points) == 0 {
			continue
		}
		series = append(series, model.Series{Name: name, Points: points})
	}

	return series
}

// boxSeries computes a five-number summary per group (and per color value
// when a color field is set), aligned to the sorted group labels. Groups
// without data for a color hold a nil box.
func boxSeries(filtered *dataset.Dataset, cc config.Chart) (groups []string, series []model.Series) {
	groups = filtered.DistinctValues(cc.X)
	if len(groups) == 0 {
		return nil, nil
	}

	colors := []string{""}
	if cc.Color != "" {
		colors = filtered.DistinctValues(cc.Color)
	}

	series = make([]model.Series, 0, len(colors))
	for _, color := range colors {
		name := color
		if name == "" {
			name = config.Titleize(cc.Y)
		}

		boxes := make([]*model.Box, len(groups))
		for i, group := range groups {
			values := make([]float64, 0)
			for _, rec := range filtered.Records() {
				if filtered.Category(rec, cc.X) != group {
					continue
				}
				if cc.Color != "" && filtered.Category(rec, cc.Color) != color {
					continue
				}
				if v, ok := filtered.Value(rec, cc.Y); ok {
					values = append(values, v)
				}
			}

			if box, ok := analytics.BoxSummary(values); ok {
				boxes[i] = &box
			}
		}

		series = append(series, model.Series{Name: name, Boxes: boxes})
	}

	return groups, series
}
