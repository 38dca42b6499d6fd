package chart

import (
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	echartsopts "github.com/go-echarts/go-echarts/v2/opts"

	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/model"
)

const (
	defaultFontSize = 12
	xAxisLabelAngle = 30
)

// Chart renders a single [model.ChartSpec] with go-echarts.
type Chart struct {
	options

	Spec model.ChartSpec
}

// NewChart creates a new chart for the given spec.
func NewChart(spec model.ChartSpec, opts ...Option) *Chart {
	return &Chart{
		options: optionsWithDefaults(opts),
		Spec:    spec,
	}
}

// Build creates the ECharts chart matching the spec's kind.
func (c *Chart) Build() components.Charter {
	switch c.Spec.Kind {
	case config.ChartScatter:
		return c.buildScatter()
	case config.ChartBox:
		return c.buildBox()
	case config.ChartHeatmap:
		return c.buildHeatmap()
	default:
		// hist and bar both render as bar charts
		return c.buildBar()
	}
}

// buildBar renders categorical counts (hist) and grouped rates (bar).
func (c *Chart) buildBar() *charts.Bar {
	bar := charts.NewBar()

	yAxisLabel := "Count"
	if c.Spec.Aggregation == "mean" {
		yAxisLabel = "Rate"
	}

	bar.SetGlobalOptions(append(c.globalOptions(),
		charts.WithXAxisOpts(echartsopts.XAxis{
			Name: config.Titleize(c.Spec.X),
			Type: "category",
			AxisTick: &echartsopts.AxisTick{
				AlignWithLabel: echartsopts.Bool(true),
			},
			AxisLabel: &echartsopts.AxisLabel{
				Rotate:       xAxisLabelAngle,
				Interval:     "0",
				ShowMinLabel: echartsopts.Bool(true),
				ShowMaxLabel: echartsopts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(echartsopts.YAxis{
			Name: yAxisLabel,
			Type: "value",
		}),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:    echartsopts.Bool(true),
			Trigger: "axis",
			AxisPointer: &echartsopts.AxisPointer{
				Type: "shadow",
			},
		}),
	)...)

	bar.SetXAxis(c.Spec.XLabels)

	for _, series := range c.Spec.Series {
		data := make([]echartsopts.BarData, 0, len(series.Values))
		for i, value := range series.Values {
			data = append(data, echartsopts.BarData{
				Name:  c.Spec.XLabels[i],
				Value: value,
			})
		}
		bar.AddSeries(series.Name, data)
	}

	return bar
}

func (c *Chart) buildScatter() *charts.Scatter {
	scatter := charts.NewScatter()

	scatter.SetGlobalOptions(append(c.globalOptions(),
		charts.WithXAxisOpts(echartsopts.XAxis{
			Name:  config.Titleize(c.Spec.X),
			Type:  "value",
			Scale: echartsopts.Bool(true),
		}),
		charts.WithYAxisOpts(echartsopts.YAxis{
			Name:  config.Titleize(c.Spec.Y),
			Type:  "value",
			Scale: echartsopts.Bool(true),
		}),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:    echartsopts.Bool(true),
			Trigger: "item",
		}),
	)...)

	for _, series := range c.Spec.Series {
		data := make([]echartsopts.ScatterData, 0, len(series.Points))
		for _, point := range series.Points {
			data = append(data, echartsopts.ScatterData{
				Name:  point.Key,
				Value: []interface{}{point.X, point.Y},
			})
		}
		scatter.AddSeries(series.Name, data)
	}

	return scatter
}

func (c *Chart) buildBox() *charts.BoxPlot {
	box := charts.NewBoxPlot()

	box.SetGlobalOptions(append(c.globalOptions(),
		charts.WithXAxisOpts(echartsopts.XAxis{
			Name: config.Titleize(c.Spec.X),
			Type: "category",
			AxisLabel: &echartsopts.AxisLabel{
				Rotate:   xAxisLabelAngle,
				Interval: "0",
			},
		}),
		charts.WithYAxisOpts(echartsopts.YAxis{
			Name:  config.Titleize(c.Spec.Y),
			Type:  "value",
			Scale: echartsopts.Bool(true),
		}),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:    echartsopts.Bool(true),
			Trigger: "item",
		}),
	)...)

	box.SetXAxis(c.Spec.XLabels)

	for _, series := range c.Spec.Series {
		data := make([]echartsopts.BoxPlotData, 0, len(series.Boxes))
		for _, b := range series.Boxes {
			if b == nil {
				// gap for a group without data
				data = append(data, echartsopts.BoxPlotData{})

				continue
			}
			data = append(data, echartsopts.BoxPlotData{
				Value: []float64{b.Min, b.Q1, b.Median, b.Q3, b.Max},
			})
		}
		box.AddSeries(series.Name, data)
	}

	return box
}

func (c *Chart) buildHeatmap() *charts.HeatMap {
	heatmap := charts.NewHeatMap()

	matrix := c.Spec.Matrix
	if matrix == nil {
		matrix = &model.Matrix{}
	}

	heatmap.SetGlobalOptions(append(c.globalOptions(),
		charts.WithXAxisOpts(echartsopts.XAxis{
			Type: "category",
			AxisLabel: &echartsopts.AxisLabel{
				Rotate:   xAxisLabelAngle,
				Interval: "0",
			},
		}),
		charts.WithYAxisOpts(echartsopts.YAxis{
			Type: "category",
			Data: matrix.Fields,
		}),
		charts.WithVisualMapOpts(echartsopts.VisualMap{
			Min:  -1,
			Max:  1,
			Left: "right",
			InRange: &echartsopts.VisualMapInRange{
				// reversed viridis
				Color: []string{"#fde725", "#21918c", "#440154"},
			},
		}),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:    echartsopts.Bool(true),
			Trigger: "item",
		}),
	)...)

	heatmap.SetXAxis(matrix.Fields)

	data := make([]echartsopts.HeatMapData, 0, len(matrix.Fields)*len(matrix.Fields))
	for i := range matrix.Fields {
		for j := range matrix.Fields {
			v := matrix.At(i, j)
			if math.IsNaN(v) { // undefined cells are left blank
				continue
			}
			data = append(data, echartsopts.HeatMapData{
				Name:  fmt.Sprintf("%s / %s", matrix.Fields[i], matrix.Fields[j]),
				Value: []interface{}{i, j, v},
			})
		}
	}
	heatmap.AddSeries("correlation", data)

	return heatmap
}

// globalOptions assembles the options shared by every chart kind: theme,
// title, legend, toolbox and grid.
func (c *Chart) globalOptions() []charts.GlobalOpts {
	// Title options
	titleOpts := echartsopts.Title{
		Title: c.Spec.Title,
	}
	if c.Subtitle != "" {
		titleOpts.Subtitle = c.Subtitle
		titleOpts.SubtitleStyle = &echartsopts.TextStyle{
			FontStyle: "italic",
			FontSize:  defaultFontSize,
		}
	}

	// Legend options
	showLegend := c.ShowLegend && len(c.Spec.Series) > 1
	legendOpts := echartsopts.Legend{
		Show: echartsopts.Bool(showLegend),
	}
	if showLegend {
		legendOpts.X = "right"
		legendOpts.Y = "bottom"
	}

	// Toolbox options
	toolboxOpts := echartsopts.Toolbox{
		Left: "right",
		Feature: &echartsopts.ToolBoxFeature{
			SaveAsImage: &echartsopts.ToolBoxFeatureSaveAsImage{
				Title: "Save as image",
			},
		},
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(echartsopts.Initialization{Theme: c.Theme}),
		charts.WithToolboxOpts(toolboxOpts),
		charts.WithTitleOpts(titleOpts),
		charts.WithLegendOpts(legendOpts),
		charts.WithGridOpts(echartsopts.Grid{
			Bottom: "100",
			Top:    "100",
		}),
	}
}
