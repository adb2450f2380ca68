package transform

import (
	"fmt"
	"strings"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// CreateFeature appends a column computed from an arithmetic formula.
// Rows where the formula cannot be evaluated get a null cell; the
// operation itself only fails on bad names or references.
type CreateFeature struct {
	Feature string
	Formula string
}

func (o CreateFeature) Name() string   { return ActionCreateFeature }
func (o CreateFeature) Column() string { return o.Feature }

func (o CreateFeature) Apply(state dataset.TableState) ([]dataset.Row, error) {
	name := strings.TrimSpace(o.Feature)
	if name == "" {
		return nil, core.NewOpError(o.Name(), o.Feature, core.ErrInvalidColumnName)
	}
	if _, exists := state.Column(name); exists {
		return nil, core.NewOpError(o.Name(), name, core.ErrDuplicateColumnName)
	}

	expr, err := ParseExpression(o.Formula)
	if err != nil {
		return nil, core.NewOpError(o.Name(), name, err)
	}
	for _, ref := range expr.References() {
		if _, ok := state.Column(ref); !ok {
			return nil, core.NewOpError(o.Name(), name,
				fmt.Errorf("%w: %q", core.ErrUnknownColumnReference, ref))
		}
	}

	rows := dataset.CloneRows(state.Rows)
	for i := range rows {
		if v, ok := expr.Eval(rows[i]); ok {
			rows[i].Set(name, dataset.Number(v))
		} else {
			rows[i].Set(name, dataset.Null())
		}
	}
	return rows, nil
}
