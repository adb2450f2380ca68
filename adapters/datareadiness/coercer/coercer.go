package coercer

import (
	"strings"
	"time"

	"mlstudio/domain/dataset"
)

// TypeCoercer tags raw cells and decides column kinds with fixed rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64 `json:"numeric_threshold"` // share of non-missing values that must coerce, strictly exceeded
	DynamicTyping    bool    `json:"dynamic_typing"`    // turn numeric/boolean text into Number/Bool cells
	ParseTimestamps  bool    `json:"parse_timestamps"`  // turn ISO-like date text into Datetime cells; off for delimited files
	TrimSpace        bool    `json:"trim_space"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		DynamicTyping:    true,
		ParseTimestamps:  false,
		TrimSpace:        true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// Config returns the active rules
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

// CoerceValue tags a raw scalar. Strings go through CoerceCell.
func (c *TypeCoercer) CoerceValue(raw interface{}) dataset.Value {
	if s, ok := raw.(string); ok {
		return c.CoerceCell(s)
	}
	return dataset.ValueOf(raw)
}

// CoerceCell tags one text cell from a delimited file. Empty cells stay
// empty-string Text so they count as missing.
func (c *TypeCoercer) CoerceCell(raw string) dataset.Value {
	s := raw
	if c.config.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if s == "" || !c.config.DynamicTyping {
		return dataset.Text(s)
	}

	if f, ok := dataset.Text(s).Number(); ok {
		return dataset.Number(f)
	}

	switch s {
	case "true", "TRUE", "True":
		return dataset.Bool(true)
	case "false", "FALSE", "False":
		return dataset.Bool(false)
	}

	if c.config.ParseTimestamps {
		if t, ok := ParseTimestamp(s); ok {
			return dataset.Datetime(t)
		}
	}

	return dataset.Text(s)
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseTimestamp accepts ISO-like date and datetime layouts
func ParseTimestamp(s string) (time.Time, bool) {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsBooleanLike reports membership in the boolean vocabulary:
// literal true/false, the strings "true"/"false"/"1"/"0" and the numbers 1/0.
// Matching is case-sensitive.
func IsBooleanLike(v dataset.Value) bool {
	switch v.Kind() {
	case dataset.KindBool:
		return true
	case dataset.KindText:
		switch v.String() {
		case "true", "false", "1", "0":
			return true
		}
	case dataset.KindNumber:
		f, _ := v.Number()
		return f == 0 || f == 1
	}
	return false
}

// AnalyzeTypeDistribution counts how the column's values coerce and
// recommends a kind. Distinct values are compared type-inclusively.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []dataset.Value) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	seen := make(map[string]bool)
	for _, val := range values {
		if val.IsMissing() {
			analysis.MissingCount++
			continue
		}
		analysis.ValidCount++

		if _, ok := val.Number(); ok {
			analysis.NumericCount++
		}
		if val.Kind() == dataset.KindDatetime {
			analysis.DatetimeCount++
		}
		if key := val.Key(); !seen[key] {
			seen[key] = true
			analysis.Distinct = append(analysis.Distinct, val)
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedKind = c.determineRecommendedKind(analysis)

	return analysis
}

// determineRecommendedKind applies the rules in order: datetime pass-through,
// numeric threshold, two-valued boolean vocabulary, categorical.
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) dataset.ColumnKind {
	if analysis.ValidCount == 0 {
		return dataset.KindCategorical
	}

	if analysis.DatetimeCount == analysis.ValidCount {
		return dataset.KindDate
	}

	if float64(analysis.NumericCount) > c.config.NumericThreshold*float64(analysis.ValidCount) {
		return dataset.KindNumeric
	}

	if len(analysis.Distinct) == 2 && IsBooleanLike(analysis.Distinct[0]) && IsBooleanLike(analysis.Distinct[1]) {
		return dataset.KindBoolean
	}

	return dataset.KindCategorical
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                `json:"total_count"`
	MissingCount    int                `json:"missing_count"`
	ValidCount      int                `json:"valid_count"`
	NumericCount    int                `json:"numeric_count"`
	DatetimeCount   int                `json:"datetime_count"`
	NumericRatio    float64            `json:"numeric_ratio"`
	Distinct        []dataset.Value    `json:"distinct"`
	RecommendedKind dataset.ColumnKind `json:"recommended_kind"`
}
