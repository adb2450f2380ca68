package excel

import (
	"mlstudio/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for tabular file sources
type ReaderConfig struct {
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	Sheet          string                 `json:"sheet"`    // empty means the first sheet
	MaxRows        int                    `json:"max_rows"` // 0 reads everything
}

// DefaultReaderConfig returns sensible defaults for file processing
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
