package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mlstudio/domain/dataset"
	"mlstudio/domain/training"
)

func sampleInputs() (dataset.DatasetSummary, []dataset.ColumnProfile, []training.Run) {
	summary := dataset.DatasetSummary{
		Source:         "titanic.csv",
		Rows:           20,
		Columns:        2,
		NumericColumns: 1,
		TotalMissing:   3,
		MissingPercent: 7.5,
		Duplicates:     1,
	}
	mode := dataset.Text("male")
	columns := []dataset.ColumnProfile{
		{Name: "Age", Kind: dataset.KindNumeric, MissingCount: 3, UniqueCount: 16,
			Numeric: &dataset.NumericStats{Mean: 29.5, Median: 27, Std: 15.31, Min: 2, Max: 58}},
		{Name: "Sex|Gender", Kind: dataset.KindCategorical, UniqueCount: 2, Mode: &mode},
	}
	runs := []training.Run{
		{
			Request:  training.Request{Target: "Survived", Features: []string{"Age"}, ModelFamily: training.FamilyRandomForest, TaskType: training.TaskClassification},
			Response: training.Response{Success: true, Metrics: &training.Metrics{F1: training.Float(0.8765)}},
		},
		{
			Request:  training.Request{Target: "Survived", Features: []string{"Age"}, ModelFamily: training.FamilyKNN, TaskType: training.TaskClassification},
			Response: training.Failed("backend unavailable"),
		},
	}
	return summary, columns, runs
}

func TestBuild(t *testing.T) {
	md := Build(sampleInputs())

	assert.True(t, strings.HasPrefix(md, "# ML Studio Report"))
	assert.Contains(t, md, "## Dataset: titanic.csv")
	assert.Contains(t, md, "- **Missing cells:** 3 (7.5%)")
	assert.Contains(t, md, "| Age | numeric | 3 | 16 | 29.5 | 27 | 15.31 | 2 | 58 |  |")
	assert.Contains(t, md, `| Sex\|Gender | categorical | 0 | 2 |`)
	assert.Contains(t, md, "| 1 | Random Forest | classification | Survived | 1 | 0.8765 | ok |")
	assert.Contains(t, md, "failed: backend unavailable")
}

func TestBuildEmpty(t *testing.T) {
	md := Build(dataset.DatasetSummary{}, nil, nil)
	assert.Contains(t, md, "unnamed dataset")
	assert.Contains(t, md, "_No columns._")
	assert.Contains(t, md, "_No models trained yet._")
}

func TestHTML(t *testing.T) {
	page := string(HTML(Build(sampleInputs())))
	assert.Contains(t, page, "<title>ML Studio Report</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>Random Forest</td>")
}
