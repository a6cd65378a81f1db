package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/application/usecase"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/infrastructure/dataset"
)

// recordFlags are shared by the commands that read the record store.
type recordFlags struct {
	sample bool
}

func (f *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.sample, "sample", false, "seed the record store with the built-in sample dataset first")
}

// seed imports the sample dataset when requested.
func (f *recordFlags) seed(ctx context.Context, a *app) error {
	if !f.sample {
		return nil
	}
	_, err := usecase.NewImportRecords(a.records, nil, a.logger).Execute(ctx, dataset.Sample(), false)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newImportCmd() *cobra.Command {
	var (
		format  string
		sample  bool
		retrain bool
	)
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Clean and store incident records from a CSV or JSON file",
		Long: "Import reads a dataset file, drops records without an organization or a\n" +
			"positive record count, and stores the rest. Use - to read stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !sample {
				return fmt.Errorf("a file argument or --sample is required")
			}
			ctx := cmd.Context()

			var raw []service.RawRecord
			if sample {
				raw = dataset.Sample()
			} else {
				var err error
				if raw, err = readDataset(cmd, args[0], format); err != nil {
					return err
				}
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := usecase.NewImportRecords(a.records, nil, a.logger).Execute(ctx, raw, false)
			if err != nil {
				return err
			}
			if retrain && resp.Stored > 0 {
				train := a.trainModel()
				if _, err := usecase.NewLoadModel(a.artifacts, a.active, train, a.logger).Execute(ctx, true); err != nil {
					return err
				}
				resp.Retrain = true
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "dataset format: csv or json (default: from the file extension)")
	cmd.Flags().BoolVar(&sample, "sample", false, "import the built-in sample dataset instead of a file")
	cmd.Flags().BoolVar(&retrain, "retrain", false, "retrain the model after a successful import")
	return cmd
}

func readDataset(cmd *cobra.Command, path, format string) ([]service.RawRecord, error) {
	f, err := dataset.ParseFormat(format, path)
	if err != nil {
		return nil, err
	}
	if path == "-" {
		return f.Read(cmd.InOrStdin())
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	return f.Read(file)
}

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
		flags  recordFlags
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored incident records as CSV or JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := dataset.ParseFormat(format, output)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := flags.seed(ctx, a); err != nil {
				return err
			}

			records, err := usecase.NewExportRecords(a.records).Execute(ctx)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return f.Write(cmd.OutOrStdout(), records)
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := f.Write(file, records); err != nil {
				file.Close()
				return err
			}
			a.logger.Info("exported incident records", "count", len(records), "path", output)
			return file.Close()
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "dataset format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	flags.register(cmd)
	return cmd
}

func newStatsCmd() *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate statistics over stored incident records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := flags.seed(ctx, a); err != nil {
				return err
			}

			var stats dto.StatisticsResponse
			if stats, err = usecase.NewGetStatistics(a.records).Execute(ctx); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
	flags.register(cmd)
	return cmd
}

func newTrainCmd() *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a new model version from stored records and save it",
		Long: "Train fits the configured model family on every stored record, falling\n" +
			"back to synthetic data below the minimum record count, and saves the\n" +
			"artifacts as the next version.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := flags.seed(ctx, a); err != nil {
				return err
			}

			md, err := usecase.NewLoadModel(a.artifacts, a.active, a.trainModel(), a.logger).Execute(ctx, true)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.FromMetadata(md))
		},
	}
	flags.register(cmd)
	return cmd
}
