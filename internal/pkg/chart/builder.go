package chart

import (
	"log/slog"

	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dataset"
	"bankdash/internal/pkg/model"
)

// Builder constructs the chart page from a computed dashboard.
type Builder struct {
	cfg  *config.Config
	dash *model.Dashboard
	l    *slog.Logger
}

// New creates a new chart [Builder], given a [config.Config] and a pre-computed [model.Dashboard].
//
// The builder embeds a [slog.Logger] to croak about warnings and issues.
func New(cfg *config.Config, dash *model.Dashboard) *Builder {
	return &Builder{
		cfg:  cfg,
		dash: dash,
		l:    slog.Default().With(slog.String("module", "chart")),
	}
}

// BuildPage creates a page with the dashboard header and one chart per spec.
//
// Static renditions leave the page header's FormAction empty; a serving
// surface may set it so the filter controls submit back to the server.
func (b *Builder) BuildPage() *Page {
	page := NewPage(b.dash.Title)
	page.Header = &Header{
		Title:       b.dash.Title,
		Description: b.dash.Description,
		Rows:        b.dash.Rows,
		KPIs:        b.dash.KPIs,
		Filters:     b.dash.Filters,
		AllValue:    dataset.AllValues,
	}

	showLegend := b.cfg.Render.Legend != config.LegendPositionNone

	for _, spec := range b.dash.Charts {
		page.AddChart(NewChart(spec,
			WithTheme(b.cfg.Render.Theme),
			WithSubtitle(b.dash.Environment),
			WithLegend(showLegend),
		))

		b.l.Info("added chart",
			slog.String("chart_id", spec.ID),
			slog.String("kind", spec.Kind.String()),
		)
	}

	b.l.Info("added charts", slog.Int("charts", len(page.Charts)))

	return page
}
