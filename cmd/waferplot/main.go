package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"waferplot/adapters/excel"
	"waferplot/adapters/render"
	"waferplot/app"
	"waferplot/domain/measurement"
	"waferplot/internal/config"
	"waferplot/internal/errors"
	"waferplot/internal/testkit"
	"waferplot/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

// cliFlags carries the flags shared by every plotting command
type cliFlags struct {
	sheet    string
	out      string
	noReport bool
	workers  int
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}
	rootCmd := &cobra.Command{
		Use:           "waferplot",
		Short:         "Paired N/P channel scatter and box plots from wafer test exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.sheet, "sheet", "", "Sheet to read (default: SHEET_NAME, then \"site\", then the second sheet)")
	rootCmd.PersistentFlags().StringVarP(&flags.out, "out", "o", "", "Output directory (default: OUTPUT_DIR)")
	rootCmd.PersistentFlags().BoolVar(&flags.noReport, "no-report", false, "Do not write report.html")
	rootCmd.PersistentFlags().IntVar(&flags.workers, "workers", 0, "Concurrent chart renders (default: RENDER_WORKERS)")

	rootCmd.AddCommand(
		newScatterCmd(flags),
		newBoxPlotCmd(flags),
		newCornersCmd(flags),
		newGroupsCmd(flags),
		newGenerateCmd(),
	)
	return rootCmd
}

// loadConfig merges the environment with command-line overrides
func loadConfig(flags *cliFlags, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Input.File = args[0]
	}
	if cfg.Input.File == "" {
		return nil, errors.ConfigInvalid("no input file: pass one as an argument or set INPUT_FILE")
	}
	if flags.sheet != "" {
		cfg.Input.Sheet = flags.sheet
	}
	if flags.out != "" {
		cfg.Output.Dir = flags.out
	}
	if flags.noReport {
		cfg.Output.Report = false
	}
	if flags.workers > 0 {
		cfg.Output.RenderWorkers = flags.workers
	}
	return cfg, config.Validate(cfg)
}

func newService(cfg *config.Config) *app.PlotService {
	excelConfig := excel.DefaultExcelConfig()
	excelConfig.Sheet = cfg.Input.Sheet
	excelConfig.CoercionConfig.DecimalComma = cfg.Input.DecimalComma
	return app.NewPlotService(excel.NewDataReader(excelConfig), render.NewRenderer())
}

func layout(cfg *config.Config) measurement.Layout {
	l := measurement.DefaultLayout()
	l.IndexRow = cfg.Input.IndexRow
	return l
}

func style(cfg *config.Config) ports.ChartStyle {
	return ports.ChartStyle{
		Title:  cfg.Plot.Title,
		XLabel: cfg.Plot.XAxisLabel,
		YLabel: cfg.Plot.YAxisLabel,
		Width:  cfg.Plot.Width,
		Height: cfg.Plot.Height,
	}
}

func newScatterCmd(flags *cliFlags) *cobra.Command {
	var codes []string
	var tracked int
	var maxIndex float64

	cmd := &cobra.Command{
		Use:   "scatter [input]",
		Short: "Plot paired N/P measurements of each device code against its spec box",
		Long: `Decode CODEN_... / CODEP_... rows, pair both channels of each device code by index
label and draw one scatter chart with spec boxes, target markers and code regions.

Example: waferplot scatter wafer.xlsx --codes LVT,RVT,SLVT --tracked 8 --max-index 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("codes") {
				cfg.Plot.TargetCodes = codes
			}
			if cmd.Flags().Changed("tracked") {
				cfg.Plot.TrackedCapacity = tracked
			}
			if cmd.Flags().Changed("max-index") {
				cfg.Plot.MaxIndex = maxIndex
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			outcome, err := newService(cfg).Scatter(cmd.Context(), app.ScatterRequest{
				Input:  cfg.Input.File,
				Sheet:  cfg.Input.Sheet,
				Layout: layout(cfg),
				Options: app.ScatterOptions{
					Codes:           cfg.Plot.TargetCodes,
					TrackedCapacity: cfg.Plot.TrackedCapacity,
					MaxIndex:        cfg.Plot.MaxIndex,
					RegionPadding:   cfg.Plot.RegionPadding,
					Style:           style(cfg),
				},
				OutputDir: cfg.Output.Dir,
				Report:    cfg.Output.Report,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d points of %v -> %s\n",
				outcome.RunID, len(outcome.Selection.Points), outcome.Selection.Codes, outcome.File)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&codes, "codes", nil, "Device codes to plot (default: TARGET_CODES)")
	cmd.Flags().IntVar(&tracked, "tracked", 0, "Maximum distinct index labels (default: TRACKED_CAPACITY)")
	cmd.Flags().Float64Var(&maxIndex, "max-index", 0, "Drop index labels above this value, 0 disables (default: MAX_INDEX)")
	return cmd
}

func newBoxPlotCmd(flags *cliFlags) *cobra.Command {
	var filters []string
	var itemColumn string

	cmd := &cobra.Command{
		Use:   "boxplot [input]",
		Short: "Draw one box plot per test item across the matching site sheets",
		Long: `Collect every integer-headed column of each sheet whose name contains all
filters, grouped by item id, and draw one box plot per item.

Example: waferplot boxplot wafer.xlsx --filter NZWB2 --filter _SITE`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("filter") {
				cfg.Input.SheetFilters = filters
			}

			s := style(cfg)
			s.XLabel, s.YLabel = "Wafer ID", ""
			outcome, err := newService(cfg).BoxPlots(cmd.Context(), app.BoxPlotRequest{
				Input:        cfg.Input.File,
				SheetFilters: cfg.Input.SheetFilters,
				ItemColumn:   itemColumn,
				MaxIndex:     cfg.Plot.MaxIndex,
				Style:        s,
				OutputDir:    cfg.Output.Dir,
				Workers:      cfg.Output.RenderWorkers,
				Report:       cfg.Output.Report,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d box plots written to %s\n", outcome.RunID, len(outcome.Files), cfg.Output.Dir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&filters, "filter", nil, "Sheet name substrings, all must match (default: SHEET_FILTERS)")
	cmd.Flags().StringVar(&itemColumn, "item-column", "ITEM_ID", "Column holding the test item id")
	return cmd
}

func newCornersCmd(flags *cliFlags) *cobra.Command {
	var unify bool

	cmd := &cobra.Command{
		Use:   "corners [input]",
		Short: "Draw per-voltage box plots of a Voltage/Corner/Value sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("unify-scale") {
				cfg.Plot.UnifyScale = unify
			}

			s := style(cfg)
			s.YLabel = "Value"
			outcome, err := newService(cfg).Corners(cmd.Context(), app.CornerRequest{
				Input:      cfg.Input.File,
				Sheet:      cfg.Input.Sheet,
				UnifyScale: cfg.Plot.UnifyScale,
				Style:      s,
				OutputDir:  cfg.Output.Dir,
				Workers:    cfg.Output.RenderWorkers,
				Report:     cfg.Output.Report,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d voltage panels written to %s\n", outcome.RunID, len(outcome.Files), cfg.Output.Dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unify, "unify-scale", true, "Share one value axis across voltage panels (default: UNIFY_SCALE)")
	return cmd
}

func newGroupsCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "groups [input]",
		Short: "Print the paired device groups and spec boxes as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args)
			if err != nil {
				return err
			}
			result, err := newService(cfg).Aggregate(cmd.Context(), cfg.Input.File, cfg.Input.Sheet, layout(cfg))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var seed int64
	var sites int

	cmd := &cobra.Command{
		Use:   "generate [output.xlsx]",
		Short: "Write a synthetic wafer export for trying the other commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := testkit.DefaultWaferConfig()
			gen.Seed = seed
			gen.Sites = sites
			if err := testkit.NewWaferDataGenerator(gen).WriteWorkbook(args[0]); err != nil {
				return errors.Wrap(err, "failed to write workbook")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (sheets %s, %s, %s, %s)\n",
				args[0], testkit.SiteSheet, testkit.ItemSheet1, testkit.ItemSheet2, testkit.CornerSheet)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().IntVar(&sites, "sites", 10, "Index labels per row")
	return cmd
}
