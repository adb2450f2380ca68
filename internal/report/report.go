// Package report renders the dataset summary, column profiles and the
// training leaderboard as Markdown, with an HTML rendition for the browser.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"mlstudio/domain/dataset"
	"mlstudio/domain/training"
)

const title = "ML Studio Report"

// Build renders the report as Markdown. Runs are listed in the order given.
func Build(summary dataset.DatasetSummary, columns []dataset.ColumnProfile, runs []training.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	writeSummary(&b, summary)
	writeColumns(&b, columns)
	writeLeaderboard(&b, runs)

	return b.String()
}

// HTML converts a Markdown report into a standalone HTML page
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func writeSummary(b *strings.Builder, s dataset.DatasetSummary) {
	source := s.Source
	if source == "" {
		source = "unnamed dataset"
	}
	fmt.Fprintf(b, "## Dataset: %s\n\n", escape(source))
	fmt.Fprintf(b, "- **Rows:** %d\n", s.Rows)
	fmt.Fprintf(b, "- **Columns:** %d (%d numeric)\n", s.Columns, s.NumericColumns)
	fmt.Fprintf(b, "- **Missing cells:** %d (%s%%)\n", s.TotalMissing, dataset.FormatNumber(s.MissingPercent))
	fmt.Fprintf(b, "- **Duplicate rows:** %d\n", s.Duplicates)
	fmt.Fprintf(b, "- **Undo depth:** %d\n\n", s.HistoryDepth)
}

func writeColumns(b *strings.Builder, columns []dataset.ColumnProfile) {
	b.WriteString("## Columns\n\n")
	if len(columns) == 0 {
		b.WriteString("_No columns._\n\n")
		return
	}

	b.WriteString("| Column | Type | Missing | Unique | Mean | Median | Std | Min | Max | Mode |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---:|---|\n")
	for _, col := range columns {
		mean, median, std, lo, hi := "", "", "", "", ""
		if col.Numeric != nil {
			mean = dataset.FormatNumber(col.Numeric.Mean)
			median = dataset.FormatNumber(col.Numeric.Median)
			std = dataset.FormatNumber(col.Numeric.Std)
			lo = dataset.FormatNumber(col.Numeric.Min)
			hi = dataset.FormatNumber(col.Numeric.Max)
		}
		mode := ""
		if col.Mode != nil {
			mode = col.Mode.String()
		}
		fmt.Fprintf(b, "| %s | %s | %d | %d | %s | %s | %s | %s | %s | %s |\n",
			escape(col.Name), col.Kind, col.MissingCount, col.UniqueCount,
			mean, median, std, lo, hi, escape(mode))
	}
	b.WriteString("\n")
}

func writeLeaderboard(b *strings.Builder, runs []training.Run) {
	b.WriteString("## Leaderboard\n\n")
	if len(runs) == 0 {
		b.WriteString("_No models trained yet._\n")
		return
	}

	b.WriteString("| Rank | Model | Task | Target | Features | Score | Status |\n")
	b.WriteString("|---:|---|---|---|---:|---:|---|\n")
	for i, run := range runs {
		score := "n/a"
		if s, ok := run.Score(); ok {
			score = fmt.Sprintf("%.4f", s)
		}
		status := "ok"
		if !run.Response.Success {
			status = "failed: " + escape(run.Response.Message)
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s | %d | %s | %s |\n",
			i+1, run.Request.ModelFamily.DisplayName(), run.Request.TaskType,
			escape(run.Request.Target), len(run.Request.Features), score, status)
	}
}

// escape keeps cell text from breaking table rows
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
