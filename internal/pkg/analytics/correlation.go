package analytics

import (
	"math"

	"github.com/montanaflynn/stats"

	"bankdash/internal/pkg/dataset"
	"bankdash/internal/pkg/model"
)

// Correlation computes the pairwise Pearson correlation between all numeric
// fields of the dataset, in schema order, rounded to 2 decimal places.
//
// The matrix is symmetric with diagonal entries equal to 1. With fewer than
// 2 rows, or for constant columns, the affected cells are NaN: degenerate
// input yields a degenerate matrix, never a panic.
func Correlation(ds *dataset.Dataset) model.Matrix {
	fields := ds.Config().NumericFields()

	columns := make([][]float64, len(fields))
	for i, field := range fields {
		columns[i] = ds.Column(field)
	}

	cells := make([][]float64, len(fields))
	for i := range cells {
		cells[i] = make([]float64, len(fields))
		for j := range cells[i] {
			cells[i][j] = math.NaN()
		}
	}

	for i := range fields {
		if len(columns[i]) < 2 {
			continue
		}
		cells[i][i] = 1

		for j := i + 1; j < len(fields); j++ {
			r := pearson(columns[i], columns[j])
			cells[i][j] = r
			cells[j][i] = r
		}
	}

	return model.Matrix{
		Fields: fields,
		Cells:  cells,
	}
}

// pearson is the rounded Pearson coefficient, NaN when undefined (size
// mismatch, fewer than 2 samples, or zero variance).
func pearson(a, b []float64) float64 {
	r, err := stats.Pearson(a, b)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}

	rounded, err := stats.Round(r, 2)
	if err != nil {
		return math.NaN()
	}

	return rounded
}
