// Package analytics computes summary metrics, grouped rates and the
// correlation matrix over a (possibly filtered) dataset.
//
// Every function is a pure computation: an empty dataset yields NaN values
// or empty results, never a panic.
package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dataset"
	"bankdash/internal/pkg/model"
)

// Summary computes the configured KPI metrics over the dataset.
//
// On an empty dataset every KPI value is NaN and displays as "n/a": an empty
// filter result is a legitimate state, not an error.
func Summary(ds *dataset.Dataset, metrics []config.Metric) []model.KPI {
	kpis := make([]model.KPI, 0, len(metrics))

	for _, metric := range metrics {
		value := Mean(ds.Column(metric.Field))
		if metric.Kind == config.MetricRateComplement {
			value = 1 - value // NaN propagates
		}

		kpis = append(kpis, model.KPI{
			ID:      metric.ID,
			Title:   metric.Title,
			Value:   value,
			Display: FormatValue(metric, value),
		})
	}

	return kpis
}

// Mean returns the arithmetic mean of a column, or NaN when the column is
// empty.
func Mean(column []float64) float64 {
	mean, err := stats.Mean(column)
	if err != nil {
		return math.NaN()
	}

	return mean
}

// FormatValue renders a KPI value per the metric's display format.
// An undefined (NaN) value renders as "n/a".
func FormatValue(metric config.Metric, value float64) string {
	if math.IsNaN(value) {
		return "n/a"
	}

	switch metric.Format {
	case config.FormatPercent:
		return fmt.Sprintf("%.1f%%", 100*value)
	case config.FormatCurrency:
		return metric.Unit + groupThousands(int64(math.Round(value)))
	default:
		return fmt.Sprintf("%.2f", value)
	}
}

// groupThousands formats an integer with comma separators.
func groupThousands(n int64) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}

	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}

	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)

	return strings.Join(parts, ",")
}
