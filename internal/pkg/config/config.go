package config

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed default_config.yaml
var efs embed.FS

// Config holds the configuration for bankdash.
//
// It declares the dataset schema, the derived label fields, the KPI metrics,
// the filter dimensions exposed to the user and the ordered list of charts.
// Chart selection and ordering are configuration data, not code.
type Config struct {
	Name        string
	Description string
	Environment string
	Dataset     Dataset
	Render      Rendering
	Outputs     Output `mapstructure:"-"`
	Filters     []string
	Labels      []Label
	Metrics     []Metric
	Charts      []Chart

	fieldIndex  map[string]FieldKind
	labelIndex  map[string]Label
	metricIndex map[string]Metric
	chartIndex  map[string]Chart
}

// Dataset declares the input file and the typed schema of its columns.
//
// Every column referenced anywhere in the configuration must be declared
// here (or be a derived label). Columns present in the file but not declared
// are ignored.
type Dataset struct {
	File       string
	Key        string   // row identifier column, used in tooltips only
	Dimensions []string // categorical string columns
	Flags      []string // 0/1 numeric columns
	Measures   []string // continuous numeric columns
}

// Label defines a derived categorical field mapped from a flag column.
//
// Labels are resolved on read and never stored, so the full and filtered
// views cannot diverge.
type Label struct {
	ID      string
	Title   string
	Source  string            // flag column the label derives from
	Mapping map[string]string // formatted flag value -> display string
}

// Display maps a formatted flag value through the label mapping.
// Unmapped values pass through unchanged.
func (l Label) Display(value string) string {
	if mapped, ok := l.Mapping[value]; ok {
		return mapped
	}

	return value
}

// Metric defines a KPI computed over the filtered dataset.
type Metric struct {
	ID     string
	Title  string
	Kind   MetricKind
	Field  string
	Format Format
	Unit   string // prefix for the currency format
}

// Chart defines one chart of the dashboard.
//
// Field usage depends on the kind:
//
//   - hist: X (category), Color (optional category)
//   - scatter: X, Y (measures), Color (optional category)
//   - box: X (category), Y (measure), Color (optional category)
//   - bar: X (category), Rate (flag)
//   - heatmap: no fields, always covers all numeric columns
type Chart struct {
	ID    string
	Kind  ChartKind
	Title string
	X     string
	Y     string
	Color string
	Rate  string
}

// Rendering holds chart rendering settings (theme, legend, screenshot).
type Rendering struct {
	Theme      string
	Legend     LegendPosition
	Screenshot Screenshot
}

// Screenshot configures the headless Chrome screenshot used for PNG rendering.
type Screenshot struct {
	Height int64
	Width  int64
	Sleep  string
}

// SleepDuration parses the Sleep field as a [time.Duration].
func (s Screenshot) SleepDuration() time.Duration {
	d, err := time.ParseDuration(s.Sleep)
	if d == 0 || err != nil {
		return 0
	}

	return d
}

// LegendPosition controls where the chart legend is displayed.
type LegendPosition string

// Supported legend positions.
const (
	LegendPositionNone   LegendPosition = "none"
	LegendPositionBottom LegendPosition = "bottom"
	LegendPositionTop    LegendPosition = "top"
	LegendPositionLeft   LegendPosition = "left"
	LegendPositionRight  LegendPosition = "right"
)

// Output holds the resolved output file paths for HTML and PNG rendering.
type Output struct {
	HTMLFile string
	PngFile  string
	IsTemp   bool
}

// FieldKind returns the declared kind of a field, including derived labels.
func (c Config) FieldKind(name string) (FieldKind, bool) {
	kind, ok := c.fieldIndex[name]

	return kind, ok
}

// GetLabel retrieves a label rule by its ID.
func (c Config) GetLabel(id string) (Label, bool) {
	v, ok := c.labelIndex[id]

	return v, ok
}

// GetMetric retrieves a KPI metric definition by its ID.
func (c Config) GetMetric(id string) (Metric, bool) {
	v, ok := c.metricIndex[id]

	return v, ok
}

// GetChart retrieves a chart definition by its ID.
func (c Config) GetChart(id string) (Chart, bool) {
	v, ok := c.chartIndex[id]

	return v, ok
}

// NumericFields returns the numeric columns (flags then measures) in schema
// order. This is the stable column order of the correlation matrix.
func (c Config) NumericFields() []string {
	fields := make([]string, 0, len(c.Dataset.Flags)+len(c.Dataset.Measures))
	fields = append(fields, c.Dataset.Flags...)
	fields = append(fields, c.Dataset.Measures...)

	return fields
}

// Columns returns all physical columns the loader must find in the input
// file header: dimensions, flags, measures and the key column.
func (c Config) Columns() []string {
	columns := make([]string, 0,
		len(c.Dataset.Dimensions)+len(c.Dataset.Flags)+len(c.Dataset.Measures)+1)
	columns = append(columns, c.Dataset.Dimensions...)
	columns = append(columns, c.Dataset.Flags...)
	columns = append(columns, c.Dataset.Measures...)
	if c.Dataset.Key != "" {
		columns = append(columns, c.Dataset.Key)
	}

	return columns
}

// EncodeYAML serializes a [Config] to YAML into the provided writer.
//
// Runtime-only fields (Outputs) are excluded from the output.
func (c *Config) EncodeYAML(w io.Writer) error {
	var raw map[string]any

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Squash: true,
		Deep:   true,
		Result: &raw,
	})
	if err != nil {
		return fmt.Errorf("creating mapstructure decoder: %w", err)
	}

	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decoding config to map: %w", err)
	}

	normalizeEmptySections(raw)

	return yaml.NewEncoder(w).Encode(raw)
}

// normalizeEmptySections turns nil slice values into empty lists.
//
// The deep map decoding yields nil slices for empty sections, which YAML
// encodes as null. [Load] overlays the file onto the embedded defaults and a
// null key leaves the default section in place, so an encoded config must
// spell its empty sections out as [] to round-trip.
func normalizeEmptySections(raw map[string]any) {
	for k, v := range raw {
		if m, ok := v.(map[string]any); ok {
			normalizeEmptySections(m)

			continue
		}

		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
			raw[k] = []any{}
		}
	}
}

// Load a configuration file from the local file system.
func Load(file string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}

	fsys := os.DirFS(filepath.Dir(file))
	pth := filepath.Join(".", filepath.Base(file))

	return load(fsys, pth, cfg)
}

// LoadDefaults loads the default configuration from the embedded default_config.yaml.
func LoadDefaults() (*Config, error) {
	return loadDefaults()
}

// loadDefaults loads the default configuration from embedded FS.
func loadDefaults() (*Config, error) {
	return load(efs, "default_config.yaml", &Config{})
}

func load(fsys fs.FS, file string, cfg *Config) (*Config, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, err
	}

	var raw any
	err = yaml.Unmarshal(content, &raw)
	if err != nil {
		return nil, err
	}

	err = mapstructure.Decode(raw, cfg)
	if err != nil {
		return nil, err
	}

	// build indices and validate references
	cfg.fieldIndex = make(map[string]FieldKind)
	cfg.labelIndex = make(map[string]Label, len(cfg.Labels))
	cfg.metricIndex = make(map[string]Metric, len(cfg.Metrics))
	cfg.chartIndex = make(map[string]Chart, len(cfg.Charts))

	if err = cfg.validateDataset(); err != nil {
		return nil, err
	}

	if err = cfg.validateLabels(); err != nil {
		return nil, err
	}

	if err = cfg.validateFilters(); err != nil {
		return nil, err
	}

	if err = cfg.validateMetrics(); err != nil {
		return nil, err
	}

	if err = cfg.validateCharts(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateDataset() error {
	index := func(names []string, kind FieldKind) error {
		for i, name := range names {
			if name == "" {
				return fmt.Errorf("invalid dataset: empty %s name at index %d", kind, i)
			}
			if _, ok := c.fieldIndex[name]; ok {
				return fmt.Errorf("invalid dataset: duplicate column declared: %s", name)
			}
			c.fieldIndex[name] = kind
		}

		return nil
	}

	if err := index(c.Dataset.Dimensions, FieldDimension); err != nil {
		return err
	}
	if err := index(c.Dataset.Flags, FieldFlag); err != nil {
		return err
	}
	if err := index(c.Dataset.Measures, FieldMeasure); err != nil {
		return err
	}

	if key := c.Dataset.Key; key != "" {
		if _, ok := c.fieldIndex[key]; ok {
			return fmt.Errorf("invalid dataset: key column %s also declared in the schema", key)
		}
	}

	return nil
}

func (c *Config) validateLabels() error {
	for i, v := range c.Labels {
		if v.ID == "" {
			return fmt.Errorf("invalid labels: empty ID found: labels[%d]", i)
		}
		if _, ok := c.fieldIndex[v.ID]; ok {
			return fmt.Errorf("invalid labels: duplicate ID key found: %s", v.ID)
		}
		kind, ok := c.fieldIndex[v.Source]
		if !ok || kind != FieldFlag {
			return fmt.Errorf("invalid label %s: source %q is not a declared flag", v.ID, v.Source)
		}
		if len(v.Mapping) == 0 {
			return fmt.Errorf("invalid label %s: empty mapping", v.ID)
		}
		if v.Title == "" {
			v.Title = titleize(v.ID)
		}
		c.Labels[i] = v
		c.fieldIndex[v.ID] = FieldLabel
		c.labelIndex[v.ID] = v
	}

	return nil
}

func (c *Config) validateFilters() error {
	seen := make(map[string]struct{}, len(c.Filters))
	for i, name := range c.Filters {
		kind, ok := c.fieldIndex[name]
		if !ok {
			return fmt.Errorf("invalid filters: unknown column: filters[%d]=%s", i, name)
		}
		if kind != FieldDimension {
			return fmt.Errorf("invalid filters: %s is a %s, filters must be dimensions", name, kind)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("invalid filters: duplicate dimension: %s", name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

func (c *Config) validateMetrics() error {
	for i, v := range c.Metrics {
		if v.ID == "" {
			return fmt.Errorf("invalid metrics: empty ID found: metrics[%d]", i)
		}
		if _, ok := c.metricIndex[v.ID]; ok {
			return fmt.Errorf("invalid metrics: duplicate ID key found: %s", v.ID)
		}
		if !v.Kind.IsValid() {
			return fmt.Errorf("invalid metric %s: unknown kind %q (should be one of %v)", v.ID, v.Kind, AllMetricKinds())
		}
		if !v.Format.IsValid() {
			return fmt.Errorf("invalid metric %s: unknown format %q", v.ID, v.Format)
		}

		kind, ok := c.fieldIndex[v.Field]
		if !ok {
			return fmt.Errorf("invalid metric %s: unknown field %q", v.ID, v.Field)
		}
		switch v.Kind {
		case MetricRate, MetricRateComplement:
			if kind != FieldFlag {
				return fmt.Errorf("invalid metric %s: kind %s requires a flag field, %s is a %s", v.ID, v.Kind, v.Field, kind)
			}
		case MetricMean:
			if !kind.IsNumeric() {
				return fmt.Errorf("invalid metric %s: kind mean requires a numeric field, %s is a %s", v.ID, v.Field, kind)
			}
		}

		if v.Title == "" {
			v.Title = titleize(v.ID)
		}
		c.Metrics[i] = v
		c.metricIndex[v.ID] = v
	}

	return nil
}

func (c *Config) validateCharts() (err error) {
	for i, v := range c.Charts {
		v, err = c.validateChart(v, i)
		if err != nil {
			return err
		}

		c.Charts[i] = v
		c.chartIndex[v.ID] = v
	}

	return nil
}

func (c *Config) validateChart(v Chart, i int) (vv Chart, err error) {
	if v.ID == "" {
		return vv, fmt.Errorf("invalid charts: empty ID found: charts[%d]", i)
	}
	if _, ok := c.chartIndex[v.ID]; ok {
		return vv, fmt.Errorf("invalid charts: duplicate ID key found: %s", v.ID)
	}
	if !v.Kind.IsValid() {
		return vv, fmt.Errorf("invalid chart %s: unknown kind %q (should be one of %v)", v.ID, v.Kind, AllChartKinds())
	}
	if v.Title == "" {
		v.Title = titleize(v.ID)
	}

	requireKind := func(field string, want func(FieldKind) bool, desc string) error {
		kind, ok := c.fieldIndex[field]
		if !ok {
			return fmt.Errorf("invalid chart %s: unknown field %q", v.ID, field)
		}
		if !want(kind) {
			return fmt.Errorf("invalid chart %s: field %s is a %s, expected a %s", v.ID, field, kind, desc)
		}

		return nil
	}
	category := func(k FieldKind) bool { return k.IsCategorical() }
	measure := func(k FieldKind) bool { return k == FieldMeasure }
	flag := func(k FieldKind) bool { return k == FieldFlag }

	switch v.Kind {
	case ChartHist:
		if err := requireKind(v.X, category, "category"); err != nil {
			return vv, err
		}
	case ChartScatter:
		if err := requireKind(v.X, measure, "measure"); err != nil {
			return vv, err
		}
		if err := requireKind(v.Y, measure, "measure"); err != nil {
			return vv, err
		}
	case ChartBox:
		if err := requireKind(v.X, category, "category"); err != nil {
			return vv, err
		}
		if err := requireKind(v.Y, measure, "measure"); err != nil {
			return vv, err
		}
	case ChartBar:
		if err := requireKind(v.X, category, "category"); err != nil {
			return vv, err
		}
		if err := requireKind(v.Rate, flag, "flag"); err != nil {
			return vv, err
		}
	case ChartHeatmap:
		// always covers all numeric columns, nothing to check
	}

	if v.Color != "" {
		if err := requireKind(v.Color, category, "category"); err != nil {
			return vv, err
		}
	}

	return v, nil
}

// Titleize converts a column or ID name into a display title
// (e.g. "employment_type" -> "Employment Type").
func Titleize(in string) string {
	return titleize(in)
}

type str interface {
	~string
}

func titleize[T str](in T) string {
	caser := cases.Title(language.English, cases.NoLower) // the case is stateful: cannot declare it globally

	return caser.String(strings.Map(func(r rune) rune {
		switch r {
		case '_', '-':
			return ' '
		default:
			return r
		}
	}, string(in),
	))
}

// GenerateInput holds the data needed by [Generate] to build a configuration
// from a discovered dataset schema.
//
// This avoids importing the dataset package (which imports [config]).
type GenerateInput struct {
	File       string
	Key        string
	Dimensions []string
	Flags      []string
	Measures   []string
}

// Generate builds a [Config] from a discovered dataset schema.
//
// It declares every discovered column, exposes all dimensions as filters,
// creates one mean metric per measure, one histogram per dimension and a
// closing correlation heatmap.
//
// Every section is populated with a non-nil value, even when empty: [Load]
// overlays the user file onto the embedded defaults and skips absent keys,
// so an omitted section would silently keep the default bank schema rules.
func Generate(input GenerateInput) *Config {
	defaults, err := loadDefaults()
	if err != nil {
		// embedded config must always parse
		panic(fmt.Sprintf("loading embedded defaults: %v", err))
	}

	cfg := &Config{
		Name:   "Generated Dashboard",
		Render: defaults.Render,
		Dataset: Dataset{
			File:       input.File,
			Key:        input.Key,
			Dimensions: append([]string{}, input.Dimensions...),
			Flags:      append([]string{}, input.Flags...),
			Measures:   append([]string{}, input.Measures...),
		},
		Filters: append([]string{}, input.Dimensions...),
		Labels:  []Label{},
		Metrics: []Metric{},
		Charts:  []Chart{},
	}

	for _, m := range input.Measures {
		cfg.Metrics = append(cfg.Metrics, Metric{
			ID:     "avg-" + strings.ReplaceAll(m, "_", "-"),
			Title:  "Avg. " + titleize(m),
			Kind:   MetricMean,
			Field:  m,
			Format: FormatNumber,
		})
	}

	for _, d := range input.Dimensions {
		cfg.Charts = append(cfg.Charts, Chart{
			ID:    "by-" + strings.ReplaceAll(d, "_", "-"),
			Title: "Records by " + titleize(d),
			Kind:  ChartHist,
			X:     d,
		})
	}

	if len(input.Flags)+len(input.Measures) >= 2 {
		cfg.Charts = append(cfg.Charts, Chart{
			ID:    "correlation",
			Title: "Correlation Heatmap",
			Kind:  ChartHeatmap,
		})
	}

	return cfg
}
