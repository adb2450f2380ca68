package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// CorrelationMatrix computes Pearson r for every pair of the given Numeric
// columns. An empty list means all Numeric columns. A pair is 0 when either
// side has zero variance or the columns have different numbers of
// coercible values.
func CorrelationMatrix(state dataset.TableState, columns []string) (dataset.CorrelationMatrix, error) {
	if len(columns) == 0 {
		columns = state.ColumnsOfKind(dataset.KindNumeric)
	}
	for _, c := range columns {
		profile, ok := state.Column(c)
		if !ok {
			return dataset.CorrelationMatrix{}, core.NewOpError("correlation", c, core.ErrColumnNotFound)
		}
		if profile.Kind != dataset.KindNumeric {
			return dataset.CorrelationMatrix{}, core.NewOpError("correlation", c, core.ErrNotNumeric)
		}
	}

	counts := make([]int, len(columns))
	for i, c := range columns {
		counts[i] = len(numericValues(state.Rows, c))
	}

	n := len(columns)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := 0.0
			if counts[i] == counts[j] {
				r = pearson(state.Rows, columns[i], columns[j])
			}
			values[i][j] = r
			values[j][i] = r
		}
	}

	return dataset.CorrelationMatrix{
		Columns: append([]string(nil), columns...),
		Values:  values,
	}, nil
}

// pearson correlates the rows where both columns coerce to numbers
func pearson(rows []dataset.Row, a, b string) float64 {
	var xs, ys []float64
	for _, row := range rows {
		x, okX := row.Value(a).Number()
		y, okY := row.Value(b).Number()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
