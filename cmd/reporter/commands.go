package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"opsreports/internal/config"
	"opsreports/internal/console"
	"opsreports/internal/dataprocessing"
	apperrors "opsreports/internal/errors"
	"opsreports/internal/infrastructure"
	"opsreports/internal/reports"
	"opsreports/internal/storage"
)

type options struct {
	configFile     string
	report         string
	dateMode       int
	dateInput      string
	locationOption int
	limit          int
}

// env is everything a subcommand needs, built once per invocation
type env struct {
	cfg     *config.Config
	paths   *config.Paths
	catalog *config.Catalog
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "reporter",
		Short:         "Generate lost-sales charts from sales-ops exports",
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: config.yaml or configs/config.yaml)")

	root.AddCommand(newRunCmd(opts), newNormalizeCmd(opts), newListCmd(opts), newRunsCmd(opts))
	return root
}

func loadEnv(opts *options) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigError("load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apperrors.NewConfigError("initialize logger", err)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, apperrors.NewConfigError("resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("create directories", err)
	}

	catalog, err := config.LoadCatalog(paths.CatalogFile)
	if err != nil {
		return nil, apperrors.NewConfigError("load report catalog", err)
	}

	return &env{cfg: cfg, paths: paths, catalog: catalog, logger: logger}, nil
}

// selected returns the named report, or every report when name is empty
func (e *env) selected(name string) ([]config.ReportDefinition, error) {
	if name == "" {
		return e.catalog.Reports, nil
	}
	report, ok := e.catalog.Report(name)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("report %q", name), nil)
	}
	return []config.ReportDefinition{report}, nil
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Filter the exports and render the charts",
		Long: `Run one report (--report) or every report in the catalog.

Without --date-mode the date range and location are asked on the console:
  1 year        2024
  2 month       03/2024
  3 day         15/03/2024
  4 range       01/03/2024 15/03/2024
  5 from day    01/03/2024 (until today)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			return runReports(cmd.Context(), e, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.report, "report", "r", "", "report name (default: all reports)")
	cmd.Flags().IntVar(&opts.dateMode, "date-mode", 0, "date mode 1-5 (0 asks on the console)")
	cmd.Flags().StringVar(&opts.dateInput, "date-input", "", "date text for the chosen mode")
	cmd.Flags().IntVar(&opts.locationOption, "location", 0, "location option, 1 = all (0 asks on the console)")
	return cmd
}

func runReports(ctx context.Context, e *env, opts *options, in io.Reader, out io.Writer) error {
	selected, err := e.selected(opts.report)
	if err != nil {
		return err
	}

	store, err := storage.Open(e.paths.DBFile, e.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	driver := reports.NewDriver(e.catalog, e.cfg.Pipeline, e.paths,
		reports.WithStore(store),
		reports.WithLogger(e.logger))

	prompter := console.NewPrompter(in, out)
	boundary, err := resolveBoundary(prompter, opts, e.cfg.Pipeline.PromptLayout)
	if err != nil {
		return err
	}
	location := opts.locationOption
	if location == 0 {
		if location, err = prompter.Location(driver.Locations()); err != nil {
			return err
		}
	}

	if _, err := driver.ClearCharts(ctx); err != nil {
		return err
	}
	for _, report := range selected {
		res, err := driver.Run(ctx, reports.Request{
			Report:         report.Name,
			Boundary:       boundary,
			LocationOption: location,
		})
		if err != nil {
			return fmt.Errorf("report %s: %w", report.Name, err)
		}
		printResult(out, res)
	}
	return nil
}

func resolveBoundary(p *console.Prompter, opts *options, layout string) (dataprocessing.DateBoundary, error) {
	if opts.dateMode == 0 {
		return p.Boundary(layout)
	}
	input := opts.dateInput
	if input == "" {
		var err error
		if input, err = p.DateInput(dataprocessing.DateMode(opts.dateMode)); err != nil {
			return dataprocessing.DateBoundary{}, err
		}
	}
	return dataprocessing.ParseBoundary(dataprocessing.DateMode(opts.dateMode), input, layout)
}

func printResult(out io.Writer, res *reports.Result) {
	fmt.Fprintf(out, "\n%s: %s filas de %s (%s, %s) en %s\n",
		res.Report,
		humanize.Comma(int64(res.RowsOut)),
		humanize.Comma(int64(res.RowsIn)),
		res.DateInput,
		res.Location,
		res.Duration.Round(time.Millisecond))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range res.Charts {
		if c.Empty {
			fmt.Fprintf(tw, "  %s\t%v\t%s\tsin datos\n", c.Kind, c.GroupBy, c.Indicator)
			continue
		}
		fmt.Fprintf(tw, "  %s\t%v\t%s\t%s\n", c.Kind, c.GroupBy, c.Total, filepath.Base(c.Path))
	}
	tw.Flush()
	if res.Workbook != "" {
		fmt.Fprintf(out, "  resumen: %s\n", filepath.Base(res.Workbook))
	}
}

func newNormalizeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite thousands commas and semicolon separators in the exports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			selected, err := e.selected(opts.report)
			if err != nil {
				return err
			}
			for _, report := range selected {
				src := e.paths.GetDataPath(report.FileName)
				dst := e.paths.GetDataPath(reports.NormalizedFileName(report.FileName))
				if err := dataprocessing.NormalizeSymbols(src, dst); err != nil {
					return fmt.Errorf("report %s: %w", report.Name, err)
				}
				e.logger.Info("export normalized",
					slog.String("report", report.Name),
					slog.String("output", dst))
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", report.FileName, filepath.Base(dst))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.report, "report", "r", "", "report name (default: all reports)")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the reports in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "REPORT\tFILE\tCHARTS")
			for _, r := range e.catalog.Reports {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Name, r.FileName, len(r.Charts))
			}
			return tw.Flush()
		},
	}
}

func newRunsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the most recent runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			store, err := storage.Open(e.paths.DBFile, e.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), opts.limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tREPORT\tDATES\tLOCATION\tROWS\tCHARTS\tSTATUS")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					humanize.Time(r.StartedAt), r.Report, r.DateInput, r.Location, r.RowsOut, r.Charts, r.Status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
