package chart

// Theme constants from go-echarts.
//
// TODO: add more supported themes.
const (
	ThemeRoma = "roma"
)

// Option configures a [Chart].
type Option func(*options)

type options struct {
	Subtitle   string
	Theme      string
	ShowLegend bool
}

// WithSubtitle sets the chart subtitle (typically environment info).
func WithSubtitle(subtitle string) Option {
	return func(c *options) {
		c.Subtitle = subtitle
	}
}

// WithTheme sets the color theme.
func WithTheme(theme string) Option {
	return func(c *options) {
		c.Theme = theme
	}
}

// WithLegend enables or disables the legend.
func WithLegend(show bool) Option {
	return func(c *options) {
		c.ShowLegend = show
	}
}

func optionsWithDefaults(opts []Option) options {
	o := options{
		Theme:      ThemeRoma,
		ShowLegend: true,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}
