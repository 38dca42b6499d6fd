package analytics

import (
	"sort"

	"github.com/montanaflynn/stats"

	"bankdash/internal/pkg/dataset"
	"bankdash/internal/pkg/model"
)

// RateByGroup groups records by a categorical field and computes the mean of
// a 0/1 flag within each group.
//
// Groups are ordered by ascending group key. Records with a null (empty)
// group value are excluded. Only observed groups are returned, so no group
// ever has zero rows.
func RateByGroup(ds *dataset.Dataset, groupField, rateField string) []model.GroupRate {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, rec := range ds.Records() {
		group := ds.Category(rec, groupField)
		if group == "" {
			continue
		}
		value, ok := ds.Value(rec, rateField)
		if !ok {
			continue
		}
		sums[group] += value
		counts[group]++
	}

	rates := make([]model.GroupRate, 0, len(counts))
	for group, count := range counts {
		rates = append(rates, model.GroupRate{
			Group: group,
			Rate:  sums[group] / float64(count),
			Count: count,
		})
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i].Group < rates[j].Group })

	return rates
}

// CountByGroup counts records per value of a categorical field, split by an
// optional color field. It returns the sorted distinct group keys and one
// count series per color value, aligned to the keys.
//
// With an empty color field a single "Count" series is returned.
func CountByGroup(ds *dataset.Dataset, groupField, colorField string) (groups []string, series []model.Series) {
	groups = ds.DistinctValues(groupField)
	position := make(map[string]int, len(groups))
	for i, g := range groups {
		position[g] = i
	}

	if colorField == "" {
		counts := make([]float64, len(groups))
		for _, rec := range ds.Records() {
			if i, ok := position[ds.Category(rec, groupField)]; ok {
				counts[i]++
			}
		}

		return groups, []model.Series{{Name: "Count", Values: counts}}
	}

	colors := ds.DistinctValues(colorField)
	series = make([]model.Series, 0, len(colors))
	byColor := make(map[string][]float64, len(colors))
	for _, color := range colors {
		byColor[color] = make([]float64, len(groups))
	}

	for _, rec := range ds.Records() {
		i, ok := position[ds.Category(rec, groupField)]
		if !ok {
			continue
		}
		counts, ok := byColor[ds.Category(rec, colorField)]
		if !ok {
			continue
		}
		counts[i]++
	}

	for _, color := range colors {
		series = append(series, model.Series{Name: color, Values: byColor[color]})
	}

	return groups, series
}

// BoxSummary computes the five-number summary of a sample.
//
// It returns false on an empty sample. A single-value sample collapses all
// five numbers onto that value.
func BoxSummary(values []float64) (model.Box, bool) {
	switch len(values) {
	case 0:
		return model.Box{}, false
	case 1:
		v := values[0]

		return model.Box{Min: v, Q1: v, Median: v, Q3: v, Max: v}, true
	}

	minValue, _ := stats.Min(values)
	maxValue, _ := stats.Max(values)

	box := model.Box{Min: minValue, Max: maxValue}

	quartiles, err := stats.Quartile(values)
	if err != nil {
		// too few points for quartiles: collapse onto the median
		median, _ := stats.Median(values)
		box.Q1, box.Median, box.Q3 = median, median, median

		return box, true
	}

	box.Q1 = quartiles.Q1
	box.Median = quartiles.Q2
	box.Q3 = quartiles.Q3

	return box, true
}
