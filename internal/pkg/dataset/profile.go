package dataset

import (
	"github.com/montanaflynn/stats"
)

// Profile allows to inspect the contents of a loaded dataset.
type Profile struct {
	Source     string             `json:"source_file"`
	Rows       int                `json:"rows"`
	Dimensions []DimensionProfile `json:"dimensions"`
	Numerics   []NumericProfile   `json:"numeric_fields"`
}

// DimensionProfile summarizes one categorical field, including derived labels.
type DimensionProfile struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Distinct int      `json:"distinct_values"`
	Values   []string `json:"values"`
}

// NumericProfile summarizes one numeric field (flag or measure).
type NumericProfile struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	Min  float64 `json:"min_value"`
	Max  float64 `json:"max_value"`
	Mean float64 `json:"mean_value"`
}

// Profile produces a [Profile], which allows for closer inspection of the
// loaded dataset before rendering anything.
func (d *Dataset) Profile() Profile {
	p := Profile{
		Source: d.source,
		Rows:   d.Len(),
	}

	cfg := d.cfg
	categorical := make([]string, 0, len(cfg.Dataset.Dimensions)+len(cfg.Labels))
	categorical = append(categorical, cfg.Dataset.Dimensions...)
	for _, label := range cfg.Labels {
		categorical = append(categorical, label.ID)
	}

	for _, name := range categorical {
		kind, _ := cfg.FieldKind(name)
		values := d.DistinctValues(name)
		p.Dimensions = append(p.Dimensions, DimensionProfile{
			Name:     name,
			Kind:     string(kind),
			Distinct: len(values),
			Values:   values,
		})
	}

	if d.Len() == 0 {
		// min/max/mean are undefined on an empty dataset
		return p
	}

	for _, name := range cfg.NumericFields() {
		kind, _ := cfg.FieldKind(name)
		column := d.Column(name)

		minValue, _ := stats.Min(column)
		maxValue, _ := stats.Max(column)
		meanValue, _ := stats.Mean(column)

		p.Numerics = append(p.Numerics, NumericProfile{
			Name: name,
			Kind: string(kind),
			Min:  minValue,
			Max:  maxValue,
			Mean: meanValue,
		})
	}

	return p
}
