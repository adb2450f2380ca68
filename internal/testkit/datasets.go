package testkit

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"mlstudio/adapters/excel"
	"mlstudio/domain/training"
	"mlstudio/internal"
	"mlstudio/internal/errors"
	"mlstudio/ports"
)

//go:embed data/*.csv
var demoFiles embed.FS

// DemoDataset describes one bundled sample table
type DemoDataset struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Target      string            `json:"target"`
	Task        training.TaskType `json:"task_type"`
	file        string
}

var demos = []DemoDataset{
	{Name: "Titanic", Description: "Classification", Target: "Survived", Task: training.TaskClassification, file: "titanic.csv"},
	{Name: "Iris", Description: "Multi-Class", Target: "species", Task: training.TaskClassification, file: "iris.csv"},
	{Name: "Tips", Description: "Regression", Target: "tip", Task: training.TaskRegression, file: "tips.csv"},
	{Name: "Houses", Description: "Price Prediction", Target: "price", Task: training.TaskRegression, file: "houses.csv"},
}

// Demos lists the bundled datasets
func Demos() []DemoDataset {
	out := make([]DemoDataset, len(demos))
	copy(out, demos)
	return out
}

// LookupDemo finds a bundled dataset by case-insensitive name
func LookupDemo(name string) (DemoDataset, bool) {
	name = strings.TrimSpace(name)
	for _, d := range demos {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return DemoDataset{}, false
}

// LoadDemo reads a bundled dataset through the regular CSV loader
func LoadDemo(ctx context.Context, name string, logger *internal.Logger) (*ports.LoadResult, error) {
	demo, ok := LookupDemo(name)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("demo dataset %q", name))
	}

	data, err := demoFiles.ReadFile("data/" + demo.file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read demo dataset %s", demo.Name)
	}

	reader := excel.NewDataReader(excel.DefaultReaderConfig(), logger)
	result, err := reader.ReadBytes(ctx, demo.file, data)
	if err != nil {
		return nil, err
	}
	result.Source = demo.Name
	return result, nil
}
