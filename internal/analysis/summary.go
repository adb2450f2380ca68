package analysis

import (
	"github.com/montanaflynn/stats"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// Summarize builds the headline view of the table
func Summarize(state dataset.TableState, source string, historyDepth int) dataset.DatasetSummary {
	summary := dataset.DatasetSummary{
		Source:         source,
		Rows:           len(state.Rows),
		Columns:        len(state.Columns),
		NumericColumns: len(state.ColumnsOfKind(dataset.KindNumeric)),
		Duplicates:     CountDuplicates(state.Rows),
		HistoryDepth:   historyDepth,
		CanUndo:        historyDepth > 0,
	}
	for _, c := range state.Columns {
		summary.TotalMissing += c.MissingCount
	}

	cells := summary.Rows * summary.Columns
	if cells > 0 {
		pct, err := stats.Round(float64(summary.TotalMissing)/float64(cells)*100, 1)
		if err == nil {
			summary.MissingPercent = pct
		}
	}
	return summary
}

// CountDuplicates returns how many rows repeat an earlier row's content
func CountDuplicates(rows []dataset.Row) int {
	seen := make(map[core.Hash]bool, len(rows))
	dupes := 0
	for _, row := range rows {
		key := core.NewHash([]byte(row.CanonicalKey()))
		if seen[key] {
			dupes++
			continue
		}
		seen[key] = true
	}
	return dupes
}
