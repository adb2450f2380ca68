package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mlstudio/app"
	"mlstudio/domain/dataset"
	"mlstudio/domain/training"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	return t
}

func renderSummary(w io.Writer, s dataset.DatasetSummary) {
	t := newTable(w)
	t.SetTitle(s.Source)
	t.AppendRows([]table.Row{
		{"Rows", s.Rows},
		{"Columns", s.Columns},
		{"Numeric columns", s.NumericColumns},
		{"Missing cells", fmt.Sprintf("%d (%.1f%%)", s.TotalMissing, s.MissingPercent)},
		{"Duplicate rows", s.Duplicates},
	})
	t.Render()
}

func renderProfiles(w io.Writer, columns []dataset.ColumnProfile) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Column", "Type", "Missing", "Unique", "Mean", "Median", "Std", "Min", "Max", "Mode"})
	for _, c := range columns {
		row := table.Row{c.Name, c.Kind, c.MissingCount, c.UniqueCount, "", "", "", "", "", ""}
		if n := c.Numeric; n != nil {
			row[4], row[5], row[6], row[7], row[8] = n.Mean, n.Median, n.Std, n.Min, n.Max
		}
		if c.Mode != nil {
			row[9] = c.Mode.String()
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderDistribution(w io.Writer, dist app.Distribution) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s (%s)", dist.Column, dist.Kind))
	if dist.Kind == dataset.KindNumeric {
		t.AppendHeader(table.Row{"Range", "Count"})
		for _, b := range dist.Histogram {
			t.AppendRow(table.Row{b.Label, b.Count})
		}
	} else {
		t.AppendHeader(table.Row{"Value", "Count"})
		for _, f := range dist.Frequency {
			t.AppendRow(table.Row{f.Value, f.Count})
		}
	}
	t.Render()
}

func renderCorrelation(w io.Writer, m dataset.CorrelationMatrix) {
	t := newTable(w)
	header := table.Row{""}
	for _, c := range m.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, c := range m.Columns {
		row := table.Row{c}
		for _, v := range m.Values[i] {
			row = append(row, fmt.Sprintf("%.3f", v))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderRun(w io.Writer, run training.Run) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s → %s (%s)", run.Request.ModelFamily.DisplayName(), run.Request.Target, run.Request.TaskType))
	t.AppendRow(table.Row{"Status", status(run.Response)})
	t.AppendRow(table.Row{"Message", run.Response.Message})
	if m := run.Response.Metrics; m != nil {
		for _, metric := range []struct {
			name  string
			value *float64
		}{
			{"Accuracy", m.Accuracy}, {"Precision", m.Precision}, {"Recall", m.Recall},
			{"F1", m.F1}, {"AUC", m.AUC}, {"R²", m.R2}, {"MAE", m.MAE}, {"RMSE", m.RMSE},
			{"Train score", m.TrainScore}, {"CV mean", m.CVMean}, {"CV std", m.CVStd},
		} {
			if metric.value != nil {
				t.AppendRow(table.Row{metric.name, fmt.Sprintf("%.4f", *metric.value)})
			}
		}
	}
	t.Render()

	if len(run.Response.FeatureImportance) > 0 {
		fi := newTable(w)
		fi.AppendHeader(table.Row{"Feature", "Importance"})
		for _, f := range run.Response.FeatureImportance {
			fi.AppendRow(table.Row{f.Name, fmt.Sprintf("%.4f", f.Importance)})
		}
		fi.Render()
	}
}

func status(r training.Response) string {
	if r.Success {
		return "ok"
	}
	return "failed"
}
