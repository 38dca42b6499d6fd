package config

// ChartKind identifies the kind of chart to render (e.g. "hist", "scatter").
type ChartKind string

// Supported chart kinds.
const (
	// ChartHist is a grouped bar chart of record counts per category.
	ChartHist ChartKind = "hist"
	// ChartScatter is an x/y scatter plot over two measures.
	ChartScatter ChartKind = "scatter"
	// ChartBox is a box plot of a measure grouped by a category.
	ChartBox ChartKind = "box"
	// ChartBar is a bar chart of a mean rate per category.
	ChartBar ChartKind = "bar"
	// ChartHeatmap is the correlation heatmap over all numeric fields.
	ChartHeatmap ChartKind = "heatmap"
)

// String returns the chart kind as a plain string.
func (k ChartKind) String() string {
	return string(k)
}

// IsValid reports whether the chart kind is one of the known kinds.
func (k ChartKind) IsValid() bool {
	switch k {
	case ChartHist, ChartScatter, ChartBox, ChartBar, ChartHeatmap:
		return true
	default:
		return false
	}
}

// AllChartKinds returns all known chart kinds.
func AllChartKinds() []ChartKind {
	return []ChartKind{
		ChartHist,
		ChartScatter,
		ChartBox,
		ChartBar,
		ChartHeatmap,
	}
}

// Aggregation returns the aggregation implied by the chart kind:
// "count" for histograms, "mean" for rate bars, "" otherwise.
func (k ChartKind) Aggregation() string {
	switch k {
	case ChartHist:
		return "count"
	case ChartBar:
		return "mean"
	default:
		return ""
	}
}

// MetricKind identifies how a KPI metric is computed from its field.
type MetricKind string

// Supported metric kinds.
const (
	// MetricMean is the mean of a numeric field.
	MetricMean MetricKind = "mean"
	// MetricRate is the mean of a 0/1 flag field.
	MetricRate MetricKind = "rate"
	// MetricRateComplement is 1 minus the mean of a 0/1 flag field.
	MetricRateComplement MetricKind = "rate-complement"
)

// String returns the metric kind as a plain string.
func (k MetricKind) String() string {
	return string(k)
}

// IsValid reports whether the metric kind is one of the known kinds.
func (k MetricKind) IsValid() bool {
	switch k {
	case MetricMean, MetricRate, MetricRateComplement:
		return true
	default:
		return false
	}
}

// AllMetricKinds returns all known metric kinds.
func AllMetricKinds() []MetricKind {
	return []MetricKind{
		MetricMean,
		MetricRate,
		MetricRateComplement,
	}
}

// Format identifies how a KPI value is displayed.
type Format string

// Supported KPI display formats.
const (
	FormatPercent  Format = "percent"
	FormatCurrency Format = "currency"
	FormatNumber   Format = "number"
)

// IsValid reports whether the format is one of the known formats.
func (f Format) IsValid() bool {
	switch f {
	case FormatPercent, FormatCurrency, FormatNumber, "":
		return true
	default:
		return false
	}
}

// FieldKind classifies a dataset field.
type FieldKind string

// Supported field kinds.
const (
	// FieldDimension is a categorical string field.
	FieldDimension FieldKind = "dimension"
	// FieldFlag is a 0/1 numeric field.
	FieldFlag FieldKind = "flag"
	// FieldMeasure is a continuous numeric field.
	FieldMeasure FieldKind = "measure"
	// FieldLabel is a derived categorical field mapped from a flag.
	FieldLabel FieldKind = "label"
)

// IsNumeric reports whether fields of this kind participate in numeric
// aggregates (means, correlation).
func (k FieldKind) IsNumeric() bool {
	return k == FieldFlag || k == FieldMeasure
}

// IsCategorical reports whether fields of this kind can be grouped or
// filtered on.
func (k FieldKind) IsCategorical() bool {
	return k == FieldDimension || k == FieldLabel
}
