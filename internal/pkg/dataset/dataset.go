// Package dataset loads the tabular application data and exposes typed,
// immutable views of it: equality filtering, distinct values and a profile
// report.
package dataset

import (
	"sort"
	"strconv"

	"bankdash/internal/pkg/config"
)

// AllValues is the selection sentinel meaning "no restriction" on a
// filter dimension.
const AllValues = "All"

// Selection maps filter dimensions to a selected category value.
//
// A dimension that is absent, or set to [AllValues], imposes no constraint.
type Selection map[string]string

// Wants returns the constraint on a dimension and whether one is set.
func (s Selection) Wants(field string) (string, bool) {
	value, ok := s[field]
	if !ok || value == AllValues || value == "" {
		return "", false
	}

	return value, true
}

// IsEmpty reports whether the selection imposes no constraint at all.
func (s Selection) IsEmpty() bool {
	for field := range s {
		if _, constrained := s.Wants(field); constrained {
			return false
		}
	}

	return true
}

// Record is a single application row: categorical values, numeric values and
// the row key used in tooltips.
type Record struct {
	Key        string
	Categories map[string]string
	Values     map[string]float64
}

// Dataset is an ordered, immutable collection of records sharing the
// configured schema.
//
// A Dataset is loaded once per process and reused across filter changes:
// [Dataset.Filter] derives new views and never mutates its receiver.
type Dataset struct {
	cfg     *config.Config
	records []Record
	source  string
}

// New wraps records into a [Dataset] bound to the configured schema.
func New(cfg *config.Config, records []Record, source string) *Dataset {
	return &Dataset{
		cfg:     cfg,
		records: records,
		source:  source,
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Source returns the file the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

// Records returns the underlying records, in load order.
func (d *Dataset) Records() []Record {
	return d.records
}

// Config returns the configuration the dataset schema is bound to.
func (d *Dataset) Config() *config.Config {
	return d.cfg
}

// Category resolves a categorical value for a record, including derived
// label fields. Labels are computed from their source flag on every read and
// never stored, so full and filtered views cannot diverge.
func (d *Dataset) Category(rec Record, field string) string {
	if label, ok := d.cfg.GetLabel(field); ok {
		flag, ok := rec.Values[label.Source]
		if !ok {
			return ""
		}

		return label.Display(strconv.FormatFloat(flag, 'f', -1, 64))
	}

	return rec.Categories[field]
}

// Value returns a numeric value (flag or measure) for a record.
func (d *Dataset) Value(rec Record, field string) (float64, bool) {
	v, ok := rec.Values[field]

	return v, ok
}

// Column collects a numeric column across all records, in record order.
func (d *Dataset) Column(field string) []float64 {
	column := make([]float64, 0, len(d.records))
	for _, rec := range d.records {
		if v, ok := rec.Values[field]; ok {
			column = append(column, v)
		}
	}

	return column
}

// Filter returns the view of records matching every constrained dimension of
// the selection, AND-composed, in original record order.
//
// Selection keys must name categorical fields (dimensions or labels): a key
// that resolves to no categorical field matches no record. An empty result
// is a valid dataset, not an error.
func (d *Dataset) Filter(sel Selection) *Dataset {
	if sel.IsEmpty() {
		return d
	}

	filtered := make([]Record, 0, len(d.records))
	for _, rec := range d.records {
		keep := true
		for field := range sel {
			want, constrained := sel.Wants(field)
			if !constrained {
				continue
			}
			if d.Category(rec, field) != want {
				keep = false

				break
			}
		}
		if keep {
			filtered = append(filtered, rec)
		}
	}

	return New(d.cfg, filtered, d.source)
}

// DistinctValues returns the sorted distinct non-null values of a
// categorical field.
func (d *Dataset) DistinctValues(field string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)

	for _, rec := range d.records {
		v := d.Category(rec, field)
		if v == "" {
			continue // null category
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	sort.Strings(values)

	return values
}
