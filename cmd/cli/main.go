package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gokaizen/adapters/excel"
	"gokaizen/app"
	"gokaizen/domain/study"
	"gokaizen/internal/dataset"
	"gokaizen/internal/inference"
	"gokaizen/internal/logging"
	"gokaizen/internal/simulation"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "gokaizen-cli",
		Short:         "Before/after service-time comparison from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(logging.Options{Verbose: verbose})
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newSimulateCmd(),
		newAnalyzeCmd(),
	)
	return rootCmd
}

func newService() *app.AnalysisService {
	return app.NewAnalysisService(dataset.NewStore(), simulation.NewGenerator(), nil)
}

func newSimulateCmd() *cobra.Command {
	params := study.DefaultSimulationParams()
	var seed int64
	var out string
	var analyze bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a before/after dataset",
		Long: `Generate a seeded before/after service-time dataset and print its summary.

Example: gokaizen-cli simulate --n-before 120 --seed 42 --out datos.xlsx --analyze`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				params.Seed = &seed
			}
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), params, out, analyze)
		},
	}

	cmd.Flags().IntVar(&params.NBefore, "n-before", params.NBefore, "Observations in the before group")
	cmd.Flags().IntVar(&params.NAfter, "n-after", params.NAfter, "Observations in the after group")
	cmd.Flags().Float64Var(&params.BeforeMean, "before-mean", params.BeforeMean, "Mean service time before, in minutes")
	cmd.Flags().Float64Var(&params.AfterMean, "after-mean", params.AfterMean, "Mean service time after, in minutes")
	cmd.Flags().Float64Var(&params.BeforeStd, "before-std", params.BeforeStd, "Standard deviation before")
	cmd.Flags().Float64Var(&params.AfterStd, "after-std", params.AfterStd, "Standard deviation after")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed; omit for a clock-derived seed")
	cmd.Flags().StringVar(&out, "out", "", "Write the records to a .csv or .xlsx file")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Run the analysis on the generated dataset")

	return cmd
}

func runSimulate(ctx context.Context, w io.Writer, params study.SimulationParams, out string, analyze bool) error {
	svc := newService()

	ds, err := svc.Ingest(ctx, params)
	if err != nil {
		return err
	}

	if out != "" {
		if err := excel.WriteFile(out, ds.Records()); err != nil {
			return err
		}
	}

	payload := map[string]interface{}{
		"dataset_id":            ds.ID,
		"simulation_parameters": ds.Params,
		"effective_seed":        ds.EffectiveSeed,
		"summary": study.GroupPair[study.DescriptiveStatistics]{
			Before: inference.Describe(ds.Before),
			After:  inference.Describe(ds.After),
		},
	}
	if out != "" {
		payload["file"] = out
	}
	if analyze {
		result, err := svc.Analyze(ctx, app.AnalyzeOptions{})
		if err != nil {
			return err
		}
		payload["analysis_results"] = result.Report
	}

	return printJSON(w, payload)
}

func newAnalyzeCmd() *cobra.Command {
	var file string
	var summaryOnly bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a before/after dataset file",
		Long: `Load records from a CSV or XLSX file with periodo and tiempo_atencion_min
columns and print the full analysis report.

Example: gokaizen-cli analyze --file datos.csv --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), file, summaryOnly)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Dataset file (.csv or .xlsx)")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the executive summary")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAnalyze(ctx context.Context, w io.Writer, file string, summaryOnly bool) error {
	records, err := excel.ReadFile(file)
	if err != nil {
		return err
	}

	svc := newService()
	if _, err := svc.IngestRecords(ctx, records, "file"); err != nil {
		return err
	}

	result, err := svc.Analyze(ctx, app.AnalyzeOptions{})
	if err != nil {
		return err
	}

	if summaryOnly {
		_, err := fmt.Fprintln(w, result.Report.ExecutiveSummary)
		return err
	}
	return printJSON(w, result.Report)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
