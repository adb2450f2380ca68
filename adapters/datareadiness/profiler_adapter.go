package datareadiness

import (
	"sort"

	"github.com/montanaflynn/stats"

	"mlstudio/adapters/datareadiness/coercer"
	"mlstudio/domain/dataset"
)

// ProfilerAdapter implements ProfilerPort. It keeps no state between calls.
type ProfilerAdapter struct {
	coercer *coercer.TypeCoercer
}

// NewProfilerAdapter creates a new profiler adapter
func NewProfilerAdapter(c *coercer.TypeCoercer) *ProfilerAdapter {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	return &ProfilerAdapter{coercer: c}
}

// Profile infers one ColumnProfile per distinct key, in first-seen order
func (p *ProfilerAdapter) Profile(rows []dataset.Row) []dataset.ColumnProfile {
	names := ColumnOrder(rows)
	profiles := make([]dataset.ColumnProfile, len(names))
	for i, name := range names {
		profiles[i] = p.profileColumn(name, rows)
	}
	return profiles
}

// ColumnOrder collects column names across rows in first-seen order
func ColumnOrder(rows []dataset.Row) []string {
	var names []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	return names
}

// profileColumn analyzes a single column; absent keys count as missing
func (p *ProfilerAdapter) profileColumn(name string, rows []dataset.Row) dataset.ColumnProfile {
	values := make([]dataset.Value, len(rows))
	for i, row := range rows {
		values[i] = row.Value(name)
	}

	analysis := p.coercer.AnalyzeTypeDistribution(values)

	profile := dataset.ColumnProfile{
		Name:         name,
		Kind:         analysis.RecommendedKind,
		MissingCount: analysis.MissingCount,
		UniqueCount:  len(analysis.Distinct),
	}
	if analysis.ValidCount == 0 {
		return profile
	}

	if profile.Kind == dataset.KindNumeric {
		profile.Numeric = computeNumericStats(values)
	}
	profile.Mode = computeMode(values)

	return profile
}

// computeNumericStats calculates mean, lower median, population std, min and max
func computeNumericStats(values []dataset.Value) *dataset.NumericStats {
	var data stats.Float64Data
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if f, ok := v.Number(); ok {
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return nil
	}

	mean, _ := stats.Mean(data)
	std, _ := stats.StandardDeviationPopulation(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	median := dataset.LowerMedian(sorted)

	return &dataset.NumericStats{
		Mean:   round2(mean),
		Median: round2(median),
		Std:    round2(std),
		Min:    round2(min),
		Max:    round2(max),
	}
}

// computeMode picks the most frequent string form; ties go to the key seen first
func computeMode(values []dataset.Value) *dataset.Value {
	counts := make(map[string]int)
	first := make(map[string]dataset.Value)
	var order []string

	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			first[key] = v
		}
		counts[key]++
	}
	if len(order) == 0 {
		return nil
	}

	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	mode := first[best]
	return &mode
}

func round2(f float64) float64 {
	r, err := stats.Round(f, 2)
	if err != nil {
		return f
	}
	return r
}
