package model

import (
	"encoding/json"
	"math"

	"bankdash/internal/pkg/config"
)

// Dashboard is the complete render-ready description of one dashboard pass:
// filter controls, KPI values and ordered chart specs, all computed from a
// single filtered view of the dataset.
type Dashboard struct {
	Title       string
	Description string
	Environment string
	Rows        int
	Filters     []FilterControl
	KPIs        []KPI
	Charts      []ChartSpec
}

// ChartByID retrieves a chart spec by its ID.
func (d Dashboard) ChartByID(id string) (ChartSpec, bool) {
	for _, c := range d.Charts {
		if c.ID == id {
			return c, true
		}
	}

	return ChartSpec{}, false
}

// FilterControl describes one selection control of the user-facing surface.
//
// Options always come from the full dataset, so the option list does not
// shrink as filters are applied. The sentinel "All" entry is prepended by
// the rendering surface, not stored here.
type FilterControl struct {
	Field    string   `json:"field"`
	Title    string   `json:"title"`
	Options  []string `json:"options"`
	Selected string   `json:"selected"`
}

// KPI is one computed summary metric.
//
// Value is NaN when the metric is undefined (empty filtered dataset);
// Display then reads "n/a". NaN marshals to JSON null.
type KPI struct {
	ID      string
	Title   string
	Value   float64
	Display string
}

// MarshalJSON encodes an undefined (NaN) value as null, since JSON has no
// NaN representation.
func (k KPI) MarshalJSON() ([]byte, error) {
	out := struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Value   *float64 `json:"value"`
		Display string   `json:"display"`
	}{
		ID:      k.ID,
		Title:   k.Title,
		Display: k.Display,
	}
	if !math.IsNaN(k.Value) {
		out.Value = &k.Value
	}

	return json.Marshal(out)
}

// ChartSpec is a declarative description of one chart, independent of any
// rendering engine: the kind, the fields it covers, its aggregation and
// title, plus the prepared data series.
type ChartSpec struct {
	ID          string
	Kind        config.ChartKind
	Title       string
	X           string
	Y           string
	Color       string
	Aggregation string // "count", "mean" or ""

	XLabels []string // category axis values (hist, bar, box)
	Series  []Series
	Matrix  *Matrix // heatmap only
}

// SeriesNames returns the names of the data series, in order.
func (s ChartSpec) SeriesNames() []string {
	names := make([]string, 0, len(s.Series))
	for _, series := range s.Series {
		names = append(names, series.Name)
	}

	return names
}

// Series is one named data series of a chart. Which payload is populated
// depends on the chart kind: Values for hist and bar (aligned to the spec's
// XLabels), Points for scatter, Boxes for box plots (aligned to XLabels,
// nil entries where a group has no data).
type Series struct {
	Name   string
	Values []float64
	Points []Point
	Boxes  []*Box
}

// Point is a single x/y data point. Key carries the row identifier for
// tooltips.
type Point struct {
	X   float64
	Y   float64
	Key string
}

// Box is a five-number summary of a measure within one group.
type Box struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// GroupRate is the mean of a 0/1 flag within one group.
type GroupRate struct {
	Group string  `json:"group"`
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Matrix is a symmetric correlation matrix over the dataset's numeric
// fields, in stable schema order. Undefined cells are NaN.
type Matrix struct {
	Fields []string
	Cells  [][]float64
}

// At returns the correlation between two fields by position.
func (m Matrix) At(i, j int) float64 {
	return m.Cells[i][j]
}

// MarshalJSON encodes undefined (NaN) cells as null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	cells := make([][]*float64, len(m.Cells))
	for i, row := range m.Cells {
		cells[i] = make([]*float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) {
				continue
			}
			v := row[j]
			cells[i][j] = &v
		}
	}

	return json.Marshal(struct {
		Fields []string     `json:"fields"`
		Cells  [][]*float64 `json:"cells"`
	}{
		Fields: m.Fields,
		Cells:  cells,
	})
}
