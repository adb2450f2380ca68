package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mlstudio/adapters/datareadiness"
	"mlstudio/adapters/excel"
	"mlstudio/adapters/memory"
	"mlstudio/adapters/trainer"
	"mlstudio/app"
	"mlstudio/internal"
	"mlstudio/internal/table"
	"mlstudio/ports"
)

const demoPrefix = "demo:"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mlstudio-cli",
		Short: "ML Studio CLI for profiling datasets and training models",
		Long: `Profile, chart and train on a tabular dataset from the terminal.

Every <file> argument accepts a .csv, .tsv, .xlsx or .json path, or
demo:<name> for a bundled dataset (titanic, iris, tips, houses).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newProfileCmd(),
		newHistogramCmd(),
		newCorrelateCmd(),
		newTrainCmd(),
	)
	return rootCmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [file]",
		Short: "Show the inferred type and statistics of every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			studio, err := openStudio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			summary, err := studio.Summary()
			if err != nil {
				return err
			}
			state, _ := studio.State()
			renderSummary(cmd.OutOrStdout(), summary)
			renderProfiles(cmd.OutOrStdout(), state.Columns)
			return nil
		},
	}
}

func newHistogramCmd() *cobra.Command {
	var bins, precision, top int

	cmd := &cobra.Command{
		Use:   "histogram [file] [column]",
		Short: "Bin a numeric column, or count values of any other column",
		Example: `  mlstudio-cli histogram demo:titanic Fare --bins 5
  mlstudio-cli histogram data.csv city --top 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			studio, err := openStudio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dist, err := studio.Distribution(args[1], bins, precision, top)
			if err != nil {
				return err
			}
			renderDistribution(cmd.OutOrStdout(), dist)
			return nil
		},
	}

	cmd.Flags().IntVar(&bins, "bins", 10, "Number of bins for numeric columns")
	cmd.Flags().IntVar(&precision, "precision", 1, "Decimal places of bin labels")
	cmd.Flags().IntVar(&top, "top", 10, "Number of most frequent values for non-numeric columns")
	return cmd
}

func newCorrelateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correlate [file] [columns...]",
		Short: "Pearson correlation matrix; defaults to every numeric column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			studio, err := openStudio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var columns []string
			if len(args) > 1 {
				columns = args[1:]
			}
			matrix, err := studio.Correlation(columns)
			if err != nil {
				return err
			}
			renderCorrelation(cmd.OutOrStdout(), matrix)
			return nil
		},
	}
}

func newTrainCmd() *cobra.Command {
	var (
		sel        app.Selection
		features   string
		backendURL string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "train [file]",
		Short: "Train one model on the dataset and print its metrics",
		Long: `Train one model through the Training Service.

Without --backend-url the built-in simulator answers, which is deterministic
for a given request and --seed.`,
		Example: `  mlstudio-cli train demo:titanic --target Survived --model rf
  mlstudio-cli train houses.csv --target price --model xgb --backend-url http://localhost:8000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if features != "" {
				for _, f := range strings.Split(features, ",") {
					if f = strings.TrimSpace(f); f != "" {
						sel.Features = append(sel.Features, f)
					}
				}
			}

			logger := cliLogger()
			backend, err := newBackend(backendURL, timeout, logger)
			if err != nil {
				return err
			}

			studio, err := openStudio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			training := app.NewTrainingService(studio, backend, memory.NewRunRepository(), 1, logger)

			run, err := training.Train(cmd.Context(), sel)
			if err != nil {
				return err
			}
			renderRun(cmd.OutOrStdout(), run)
			if !run.Response.Success {
				return fmt.Errorf("training failed: %s", run.Response.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sel.Target, "target", "", "Target column")
	cmd.Flags().StringVar(&sel.ModelFamily, "model", "rf", "Model family: rf|xgb|gb|linear|ridge|lasso|tree|knn|svm")
	cmd.Flags().StringVar(&sel.TaskType, "task", "", "classification|regression (inferred from the target when empty)")
	cmd.Flags().StringVar(&features, "features", "", "Comma-separated feature columns (default: every other column)")
	cmd.Flags().Float64Var(&sel.TrainFraction, "train-size", 0.8, "Fraction of rows used for training")
	cmd.Flags().Int64Var(&sel.RandomSeed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().BoolVar(&sel.UseCrossValidation, "cv", false, "Report cross-validation scores")
	cmd.Flags().StringVar(&backendURL, "backend-url", "", "Training Service base URL (default: built-in simulator)")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Training Service request timeout")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func cliLogger() *internal.Logger {
	return internal.NewLogger(internal.ParseLogLevel(envOr("LOG_LEVEL", "WARN")))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// openStudio loads source into a fresh in-memory studio
func openStudio(ctx context.Context, source string) (*app.StudioService, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cliLogger()
	store := table.NewStore(datareadiness.NewProfilerAdapter(nil), 0)
	studio := app.NewStudioService(store, excel.NewDataReader(excel.DefaultReaderConfig(), logger), app.DefaultStudioOptions(), logger)

	var err error
	if name, ok := strings.CutPrefix(source, demoPrefix); ok {
		_, err = studio.LoadDemo(ctx, name)
	} else {
		_, err = studio.LoadFile(ctx, source)
	}
	if err != nil {
		return nil, err
	}
	return studio, nil
}

func newBackend(url string, timeout time.Duration, logger *internal.Logger) (ports.TrainingService, error) {
	if url == "" {
		return trainer.NewSimulator(logger), nil
	}
	return trainer.NewHTTPClient(url, timeout)
}
