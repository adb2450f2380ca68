package dataset

// ColumnKind is the inferred semantic type of a column
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindBoolean     ColumnKind = "boolean"
	KindDate        ColumnKind = "datetime"
)

// NumericStats holds summary statistics for a Numeric column, rounded to 2 dp
type NumericStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ColumnProfile is the inferred type and summary of one column
type ColumnProfile struct {
	Name         string        `json:"name"`
	Kind         ColumnKind    `json:"type"`
	MissingCount int           `json:"missing"`
	UniqueCount  int           `json:"unique"`
	Numeric      *NumericStats `json:"numeric,omitempty"`
	Mode         *Value        `json:"mode,omitempty"`
}

// HasStats reports whether any summary was computed
func (p ColumnProfile) HasStats() bool {
	return p.Numeric != nil || p.Mode != nil
}

// TableState is the rows plus their profiles at one point in time.
// Columns are always the profile of Rows.
type TableState struct {
	Rows    []Row           `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// Column looks up a profile by name
func (s TableState) Column(name string) (ColumnProfile, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// ColumnNames returns the profiled column names in order
func (s TableState) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnsOfKind returns the names of columns with the given kind
func (s TableState) ColumnsOfKind(kind ColumnKind) []string {
	var names []string
	for _, c := range s.Columns {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}

// Clone deep-copies rows and profiles
func (s TableState) Clone() TableState {
	out := TableState{Rows: CloneRows(s.Rows)}
	if s.Columns == nil {
		return out
	}
	out.Columns = make([]ColumnProfile, len(s.Columns))
	for i, c := range s.Columns {
		if c.Numeric != nil {
			n := *c.Numeric
			c.Numeric = &n
		}
		if c.Mode != nil {
			m := *c.Mode
			c.Mode = &m
		}
		out.Columns[i] = c
	}
	return out
}

// Preview returns at most n leading rows
func (s TableState) Preview(n int) []Row {
	if n < 0 || n >= len(s.Rows) {
		return s.Rows
	}
	return s.Rows[:n]
}

// CloneRows deep-copies a row slice
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
