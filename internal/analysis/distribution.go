// Package analysis computes read-only views of a table for display:
// distributions, correlations and headline summaries.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// HistogramOptions controls binning and label formatting
type HistogramOptions struct {
	Bins      int
	Precision int // decimal places in bin labels
}

// Upper bounds on HistogramOptions
const (
	MaxHistogramBins  = 10000
	MaxLabelPrecision = 15
)

// DefaultHistogramOptions returns 10 bins with one-decimal labels
func DefaultHistogramOptions() HistogramOptions {
	return HistogramOptions{Bins: 10, Precision: 1}
}

// Histogram bins a Numeric column into equal-width buckets between its min
// and max. The max value is clamped into the last bin and empty bins are
// omitted.
func Histogram(state dataset.TableState, column string, opts HistogramOptions) ([]dataset.HistogramBin, error) {
	profile, ok := state.Column(column)
	if !ok {
		return nil, core.NewOpError("histogram", column, core.ErrColumnNotFound)
	}
	if profile.Kind != dataset.KindNumeric {
		return nil, core.NewOpError("histogram", column, core.ErrNotNumeric)
	}
	if opts.Bins <= 0 {
		opts.Bins = DefaultHistogramOptions().Bins
	}
	if opts.Precision < 0 {
		opts.Precision = DefaultHistogramOptions().Precision
	}
	if opts.Bins > MaxHistogramBins || opts.Precision > MaxLabelPrecision {
		return nil, core.NewOpError("histogram", column, fmt.Errorf("%w: bins %d (max %d), precision %d (max %d)",
			core.ErrInvalidHistogramOptions, opts.Bins, MaxHistogramBins, opts.Precision, MaxLabelPrecision))
	}

	values := numericValues(state.Rows, column)
	if len(values) == 0 {
		return []dataset.HistogramBin{}, nil
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	width := (max - min) / float64(opts.Bins)
	if width == 0 {
		width = 1
	}

	counts := make([]int, opts.Bins)
	for _, v := range values {
		idx := int(math.Floor((v - min) / width))
		if idx >= opts.Bins {
			idx = opts.Bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	bins := make([]dataset.HistogramBin, 0, opts.Bins)
	for i, count := range counts {
		if count == 0 {
			continue
		}
		lower := min + float64(i)*width
		bins = append(bins, dataset.HistogramBin{
			Label: strconv.FormatFloat(lower, 'f', opts.Precision, 64),
			Lower: lower,
			Upper: lower + width,
			Count: count,
		})
	}
	return bins, nil
}

// FrequencyTable counts the string form of non-missing values and returns the
// topN most frequent, ties kept in first-seen order
func FrequencyTable(state dataset.TableState, column string, topN int) ([]dataset.FrequencyEntry, error) {
	if _, ok := state.Column(column); !ok {
		return nil, core.NewOpError("frequency", column, core.ErrColumnNotFound)
	}
	if topN <= 0 {
		topN = 10
	}

	index := make(map[string]int)
	var entries []dataset.FrequencyEntry
	for _, row := range state.Rows {
		v := row.Value(column)
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if i, ok := index[key]; ok {
			entries[i].Count++
			continue
		}
		index[key] = len(entries)
		entries = append(entries, dataset.FrequencyEntry{Value: key, Count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	if entries == nil {
		entries = []dataset.FrequencyEntry{}
	}
	return entries, nil
}

func numericValues(rows []dataset.Row, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if f, ok := row.Value(column).Number(); ok {
			values = append(values, f)
		}
	}
	return values
}
