// Package dataset provides the tabular data model and analysis result types
package dataset

// HistogramBin is one non-empty bucket of a numeric distribution
type HistogramBin struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// FrequencyEntry is the count of one distinct value
type FrequencyEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CorrelationMatrix is a dense N x N Pearson matrix over Columns
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// At returns the correlation between two columns
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m CorrelationMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DatasetSummary is the headline view of the current table
type DatasetSummary struct {
	Source         string  `json:"source"`
	Rows           int     `json:"rows"`
	Columns        int     `json:"columns"`
	NumericColumns int     `json:"numeric_columns"`
	TotalMissing   int     `json:"total_missing"`
	MissingPercent float64 `json:"missing_percent"`
	Duplicates     int     `json:"duplicates"`
	HistoryDepth   int     `json:"history_depth"`
	CanUndo        bool    `json:"can_undo"`
}
