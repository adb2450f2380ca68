package transform

import (
	"fmt"
	"sort"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// DropColumn removes a column from every row
type DropColumn struct {
	Target string
}

func (o DropColumn) Name() string   { return ActionDropColumn }
func (o DropColumn) Column() string { return o.Target }

func (o DropColumn) Apply(state dataset.TableState) ([]dataset.Row, error) {
	if _, err := lookup(state, o.Name(), o.Target); err != nil {
		return nil, err
	}
	rows := dataset.CloneRows(state.Rows)
	for i := range rows {
		rows[i].Delete(o.Target)
	}
	return rows, nil
}

// FillMethod selects the statistic used to replace missing cells
type FillMethod string

const (
	FillMean   FillMethod = "mean"
	FillMedian FillMethod = "median"
	FillMode   FillMethod = "mode"
)

// FillMissing replaces missing cells of one column with a profile statistic
type FillMissing struct {
	Target string
	Method FillMethod
}

func (o FillMissing) Name() string   { return ActionFillMissing }
func (o FillMissing) Column() string { return o.Target }

func (o FillMissing) Apply(state dataset.TableState) ([]dataset.Row, error) {
	profile, err := lookup(state, o.Name(), o.Target)
	if err != nil {
		return nil, err
	}

	fill, err := o.fillValue(profile)
	if err != nil {
		return nil, core.NewOpError(o.Name(), o.Target, err)
	}

	rows := dataset.CloneRows(state.Rows)
	for i := range rows {
		if rows[i].Value(o.Target).IsMissing() {
			rows[i].Set(o.Target, fill)
		}
	}
	return rows, nil
}

// fillValue reads the statistic from the current profile
func (o FillMissing) fillValue(profile dataset.ColumnProfile) (dataset.Value, error) {
	switch o.Method {
	case FillMean, FillMedian:
		if profile.Kind != dataset.KindNumeric || profile.Numeric == nil {
			return dataset.Value{}, fmt.Errorf("%w: %s of a %s column", core.ErrNoFillValueAvailable, o.Method, profile.Kind)
		}
		if o.Method == FillMean {
			return dataset.Number(profile.Numeric.Mean), nil
		}
		return dataset.Number(profile.Numeric.Median), nil
	case FillMode:
		if profile.Mode == nil {
			return dataset.Value{}, fmt.Errorf("%w: column has no values", core.ErrNoFillValueAvailable)
		}
		return *profile.Mode, nil
	}
	return dataset.Value{}, fmt.Errorf("%w: %q", core.ErrUnknownFillMethod, o.Method)
}

// RemoveOutliers drops rows outside [Q1 - 1.5 IQR, Q3 + 1.5 IQR] or not numeric.
// Quartiles are taken by index, sorted[floor(n*q)], without interpolation.
type RemoveOutliers struct {
	Target string
}

func (o RemoveOutliers) Name() string   { return ActionRemoveOutliers }
func (o RemoveOutliers) Column() string { return o.Target }

func (o RemoveOutliers) Apply(state dataset.TableState) ([]dataset.Row, error) {
	profile, err := lookup(state, o.Name(), o.Target)
	if err != nil {
		return nil, err
	}
	if profile.Kind != dataset.KindNumeric {
		return nil, core.NewOpError(o.Name(), o.Target, core.ErrNotNumeric)
	}

	lo, hi, ok := IQRBounds(state.Rows, o.Target)
	rows := make([]dataset.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		f, numeric := row.Value(o.Target).Number()
		if !ok || !numeric || f < lo || f > hi {
			continue
		}
		rows = append(rows, row.Clone())
	}
	return rows, nil
}

// IQRBounds computes the outlier fences over the column's numeric values.
// ok is false when the column has no numeric values.
func IQRBounds(rows []dataset.Row, column string) (lo, hi float64, ok bool) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if f, numeric := row.Value(column).Number(); numeric {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	sort.Float64s(values)

	q1 := dataset.IndexQuantile(values, 0.25)
	q3 := dataset.IndexQuantile(values, 0.75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr, true
}

// DropMissingRows drops every row with a missing cell in any profiled column
type DropMissingRows struct{}

func (o DropMissingRows) Name() string   { return ActionDropMissingRows }
func (o DropMissingRows) Column() string { return "" }

func (o DropMissingRows) Apply(state dataset.TableState) ([]dataset.Row, error) {
	columns := state.ColumnNames()
	rows := make([]dataset.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		if hasMissing(row, columns) {
			continue
		}
		rows = append(rows, row.Clone())
	}
	return rows, nil
}

func hasMissing(row dataset.Row, columns []string) bool {
	for _, c := range columns {
		if row.Value(c).IsMissing() {
			return true
		}
	}
	return false
}

// DropDuplicates keeps the first of each set of rows with equal content.
// Key order is ignored; values compare with their type.
type DropDuplicates struct{}

func (o DropDuplicates) Name() string   { return ActionDropDuplicates }
func (o DropDuplicates) Column() string { return "" }

func (o DropDuplicates) Apply(state dataset.TableState) ([]dataset.Row, error) {
	seen := make(map[core.Hash]bool, len(state.Rows))
	rows := make([]dataset.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		h := core.NewHash([]byte(row.CanonicalKey()))
		if seen[h] {
			continue
		}
		seen[h] = true
		rows = append(rows, row.Clone())
	}
	return rows, nil
}
