package ports

import (
	"mlstudio/domain/dataset"
)

// ProfilerPort infers column kinds and summary statistics from rows.
// Implementations must be pure: identical rows give identical profiles.
type ProfilerPort interface {
	Profile(rows []dataset.Row) []dataset.ColumnProfile
}
