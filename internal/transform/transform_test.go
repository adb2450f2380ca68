package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlstudio/adapters/datareadiness"
	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

func state(rows ...dataset.Row) dataset.TableState {
	return dataset.TableState{
		Rows:    rows,
		Columns: datareadiness.NewProfilerAdapter(nil).Profile(rows),
	}
}

func row(kv ...interface{}) dataset.Row {
	var r dataset.Row
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), dataset.ValueOf(kv[i+1]))
	}
	return r
}

func scenario() dataset.TableState {
	return state(
		row("a", 1, "b", "x"),
		row("a", 2, "b", "y"),
		row("a", nil, "b", "x"),
	)
}

func TestDropColumn(t *testing.T) {
	st := scenario()

	rows, err := DropColumn{Target: "b"}.Apply(st)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, []string{"a"}, r.Keys())
	}
	assert.Equal(t, []string{"a", "b"}, st.Rows[0].Keys(), "input is untouched")

	_, err = DropColumn{Target: "missing"}.Apply(st)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.EqualError(t, err, `drop_column "missing": column not found`)
}

func TestFillMissing(t *testing.T) {
	t.Run("mean fills with profile mean", func(t *testing.T) {
		rows, err := FillMissing{Target: "a", Method: FillMean}.Apply(scenario())
		require.NoError(t, err)
		f, ok := rows[2].Value("a").Number()
		require.True(t, ok)
		assert.Equal(t, 1.5, f)

		filled := state(rows...)
		col, _ := filled.Column("a")
		assert.Equal(t, 0, col.MissingCount)
		assert.Equal(t, 3, col.UniqueCount)
	})

	t.Run("median uses lower middle", func(t *testing.T) {
		st := state(row("a", 1), row("a", 2), row("a", 3), row("a", 4), row("a", ""))
		rows, err := FillMissing{Target: "a", Method: FillMedian}.Apply(st)
		require.NoError(t, err)
		assert.True(t, dataset.Number(2).Equal(rows[4].Value("a")))
	})

	t.Run("mode keeps the value type", func(t *testing.T) {
		st := state(row("b", "x"), row("b", "y"), row("b", "x"), row("b", nil))
		rows, err := FillMissing{Target: "b", Method: FillMode}.Apply(st)
		require.NoError(t, err)
		assert.True(t, dataset.Text("x").Equal(rows[3].Value("b")))
	})

	t.Run("non-missing values untouched", func(t *testing.T) {
		rows, err := FillMissing{Target: "a", Method: FillMean}.Apply(scenario())
		require.NoError(t, err)
		assert.True(t, dataset.Number(1).Equal(rows[0].Value("a")))
		assert.True(t, dataset.Number(2).Equal(rows[1].Value("a")))
	})

	t.Run("mean of categorical column has no value", func(t *testing.T) {
		_, err := FillMissing{Target: "b", Method: FillMean}.Apply(scenario())
		assert.ErrorIs(t, err, core.ErrNoFillValueAvailable)
	})

	t.Run("all-missing column has no mode", func(t *testing.T) {
		st := state(row("c", nil), row("c", ""))
		_, err := FillMissing{Target: "c", Method: FillMode}.Apply(st)
		assert.ErrorIs(t, err, core.ErrNoFillValueAvailable)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := FillMissing{Target: "a", Method: "max"}.Apply(scenario())
		assert.ErrorIs(t, err, core.ErrUnknownFillMethod)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := FillMissing{Target: "zzz", Method: FillMean}.Apply(scenario())
		assert.ErrorIs(t, err, core.ErrColumnNotFound)
	})
}

func TestRemoveOutliers(t *testing.T) {
	var rows []dataset.Row
	for _, v := range []float64{10, 12, 11, 13, 12, 11, 100, -50} {
		rows = append(rows, row("v", v))
	}
	rows = append(rows, row("v", "n/a"))
	st := state(rows...)

	out, err := RemoveOutliers{Target: "v"}.Apply(st)
	require.NoError(t, err)

	var kept []float64
	for _, r := range out {
		f, ok := r.Value("v").Number()
		require.True(t, ok)
		kept = append(kept, f)
	}
	assert.Equal(t, []float64{10, 12, 11, 13, 12, 11}, kept)

	again, err := RemoveOutliers{Target: "v"}.Apply(state(out...))
	require.NoError(t, err)
	assert.Equal(t, len(out), len(again), "second pass removes nothing")

	_, err = RemoveOutliers{Target: "b"}.Apply(scenario())
	assert.ErrorIs(t, err, core.ErrNotNumeric)
}

func TestIQRBounds(t *testing.T) {
	var rows []dataset.Row
	for _, v := range []float64{1, 2, 3, 4, 5, 6, 7, 8} {
		rows = append(rows, row("v", v))
	}
	lo, hi, ok := IQRBounds(rows, "v")
	require.True(t, ok)
	// q1 = sorted[2] = 3, q3 = sorted[6] = 7
	assert.Equal(t, -3.0, lo)
	assert.Equal(t, 13.0, hi)

	_, _, ok = IQRBounds(nil, "v")
	assert.False(t, ok)
}

func TestDropMissingRows(t *testing.T) {
	st := state(
		row("a", 1, "b", "x"),
		row("a", 2, "b", ""),
		row("a", 3),
		row("a", 4, "b", "y"),
	)
	out, err := DropMissingRows{}.Apply(st)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, dataset.Number(1).Equal(out[0].Value("a")))
	assert.True(t, dataset.Number(4).Equal(out[1].Value("a")))
}

func TestDropDuplicates(t *testing.T) {
	a := row("x", 1, "y", "a")
	b := row("x", 2, "y", "b")
	aReordered := row("y", "a", "x", 1)
	c := row("x", 3, "y", "c")

	st := state(a, b, aReordered, c, b.Clone())
	out, err := DropDuplicates{}.Apply(st)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, out[0].Equal(a))
	assert.True(t, out[1].Equal(b))
	assert.True(t, out[2].Equal(c))

	again, err := DropDuplicates{}.Apply(state(out...))
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestDropDuplicatesIsTypeSensitive(t *testing.T) {
	st := state(row("x", 1), row("x", "1"), row("x", nil), row("x", ""))
	out, err := DropDuplicates{}.Apply(st)
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

func TestCreateFeature(t *testing.T) {
	st := state(
		row("price", 10, "qty", 2),
		row("price", 4, "qty", 0),
		row("price", "n/a", "qty", 3),
	)

	rows, err := CreateFeature{Feature: "unit", Formula: "price / qty"}.Apply(st)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, dataset.Number(5).Equal(rows[0].Value("unit")))
	assert.Equal(t, dataset.KindMissing, rows[1].Value("unit").Kind(), "division by zero yields null")
	assert.Equal(t, dataset.KindMissing, rows[2].Value("unit").Kind(), "non-numeric operand yields null")
	assert.Equal(t, []string{"price", "qty", "unit"}, rows[0].Keys())

	profiled := state(rows...)
	col, ok := profiled.Column("unit")
	require.True(t, ok)
	assert.Equal(t, dataset.KindNumeric, col.Kind)
}

func TestCreateFeatureErrors(t *testing.T) {
	st := scenario()

	_, err := CreateFeature{Feature: "a", Formula: "a * 2"}.Apply(st)
	assert.ErrorIs(t, err, core.ErrDuplicateColumnName)

	_, err = CreateFeature{Feature: "c", Formula: "a + nope"}.Apply(st)
	assert.ErrorIs(t, err, core.ErrUnknownColumnReference)

	_, err = CreateFeature{Feature: "c", Formula: "a +"}.Apply(st)
	assert.ErrorIs(t, err, core.ErrInvalidFormula)

	_, err = CreateFeature{Feature: "  ", Formula: "a"}.Apply(st)
	assert.ErrorIs(t, err, core.ErrInvalidColumnName)
}

func TestExpressionEvaluation(t *testing.T) {
	r := row("a", 6, "b", 3, "sepal length", 2.5)

	tests := []struct {
		formula string
		want    float64
	}{
		{"a + b", 9},
		{"a - b * 2", 0},
		{"(a - b) * 2", 6},
		{"-a + 10", 4},
		{"a / b / 2", 1},
		{"{sepal length} * 2", 5},
		{"1.5 * 2", 3},
		{"a*b", 18},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			expr, err := ParseExpression(tt.formula)
			require.NoError(t, err)
			got, ok := expr.Eval(r)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExpressionReferences(t *testing.T) {
	expr, err := ParseExpression("a + {b c} * a - 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c"}, expr.References())
}

func TestExpressionSyntaxErrors(t *testing.T) {
	for _, formula := range []string{"", "   ", "(a + b", "a b", "{a", "a }", "* a", "{}"} {
		t.Run(formula, func(t *testing.T) {
			_, err := ParseExpression(formula)
			assert.ErrorIs(t, err, core.ErrInvalidFormula)
		})
	}
}

func TestFromRequest(t *testing.T) {
	op, err := FromRequest(CleanRequest{Action: "fill_missing", Column: "a", FillMethod: "median"})
	require.NoError(t, err)
	assert.Equal(t, FillMissing{Target: "a", Method: FillMedian}, op)

	op, err = FromRequest(CleanRequest{Action: "drop_duplicates"})
	require.NoError(t, err)
	assert.Equal(t, ActionDropDuplicates, op.Name())
	assert.Empty(t, op.Column())

	_, err = FromRequest(CleanRequest{Action: "shuffle"})
	assert.ErrorIs(t, err, core.ErrUnknownAction)
}
