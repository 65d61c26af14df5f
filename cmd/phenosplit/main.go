package main

import (
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phenosplit/adapters/excel"
	"phenosplit/domain/core"
	"phenosplit/internal"
	"phenosplit/internal/config"
	"phenosplit/internal/errors"
	"phenosplit/internal/pipeline"
	"phenosplit/internal/subtype"
)

const (
	exitFailure      = 1
	exitInputMissing = 2
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:           "phenosplit",
		Short:         "Split CD4+ FOXP3+ rows of a workbook by distance and sample subtype",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newLabelsCmd(),
		newInspectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if stderrors.Is(err, core.ErrInputNotFound) {
		return exitInputMissing
	}
	return exitFailure
}

// settings are the flag values shared by every command
type settings struct {
	input    string
	output   string
	subtypes string
	report   string
}

func (s *settings) bindInput(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.input, "input", "i", "", "input workbook (.xlsx or .csv); overrides INPUT_FILE")
}

// load merges flags over the environment configuration
func (s *settings) load() (*config.Config, *internal.Logger, error) {
	cfg := config.FromEnv()
	if s.input != "" {
		cfg.Paths.InputFile = s.input
	}
	if s.output != "" {
		cfg.Paths.OutputFile = s.output
	}
	if s.subtypes != "" {
		cfg.Paths.SubtypeMapFile = s.subtypes
	}
	if s.report != "" {
		cfg.Paths.ReportFile = s.report
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level)), nil
}

func newReader(cfg *config.Config, logger *internal.Logger) *excel.DataReader {
	excelConfig := excel.DefaultExcelConfig()
	excelConfig.FilePath = cfg.Paths.InputFile
	excelConfig.UnzipXMLSizeLimit = cfg.Excel.UnzipXMLSizeLimit
	return excel.NewDataReader(excelConfig, logger)
}

func newRunCmd() *cobra.Command {
	var s settings

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run both passes and write the output workbook",
		Long: `Pass 1 collects every phenotype label containing both CD4 and FOXP3.
Pass 2 re-reads the workbook and writes, per sheet, the matching rows within
and outside +/-100 of the detected distance column, plus one sheet per
sample subtype.

Example: phenosplit run --input cohort.xlsx --output split.xlsx --report run.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := s.load()
			if err != nil {
				return err
			}
			return runSplit(cmd, cfg, logger)
		},
	}

	s.bindInput(cmd)
	cmd.Flags().StringVarP(&s.output, "output", "o", "", "output workbook; overrides OUTPUT_FILE")
	cmd.Flags().StringVar(&s.subtypes, "subtypes", "", "YAML sample-name to subtype map; overrides SUBTYPE_MAP_FILE")
	cmd.Flags().StringVar(&s.report, "report", "", "write a JSON run report; overrides REPORT_FILE")

	return cmd
}

func runSplit(cmd *cobra.Command, cfg *config.Config, logger *internal.Logger) error {
	subtypes := subtype.Default()
	if cfg.Paths.SubtypeMapFile != "" {
		loaded, err := subtype.Load(cfg.Paths.SubtypeMapFile)
		if err != nil {
			return err
		}
		subtypes = loaded
		logger.Info("Loaded %d sample subtypes from %s", subtypes.Len(), cfg.Paths.SubtypeMapFile)
	}

	writer := excel.NewWriter(cfg.Paths.OutputFile, logger)
	defer writer.Close()

	runner := pipeline.NewRunner(newReader(cfg, logger), writer, subtypes, logger)
	runner.InputName = cfg.Paths.InputFile
	runner.OutputName = cfg.Paths.OutputFile

	report, err := runner.Run()
	if err != nil {
		return err
	}

	if cfg.Paths.ReportFile != "" {
		if err := report.SaveJSON(cfg.Paths.ReportFile); err != nil {
			return err
		}
		logger.Info("Run report written to %s", cfg.Paths.ReportFile)
	}

	for _, t := range report.Skipped() {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s: %s\n", t.Name, t.SkipReason)
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
	return nil
}

func newLabelsCmd() *cobra.Command {
	var s settings

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Run pass 1 only and list the CD4+ FOXP3+ phenotype labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := s.load()
			if err != nil {
				return err
			}
			vocab, err := pipeline.DiscoverLabels(newReader(cfg, logger), logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Detected %d CD4+ FOXP3+ labels:\n", vocab.Len())
			for _, l := range vocab.Sorted() {
				fmt.Fprintf(out, "  - %s\n", l)
			}
			if vocab.Len() == 0 {
				fmt.Fprintln(out, "No phenotype labels found by substring; a run would use fallback substring matching.")
			}
			return nil
		},
	}

	s.bindInput(cmd)
	return cmd
}

func newInspectCmd() *cobra.Command {
	var s settings

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show which phenotype, distance and sample columns each sheet resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := s.load()
			if err != nil {
				return err
			}
			found, err := pipeline.Inspect(newReader(cfg, logger))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, hi := range found {
				fmt.Fprintf(out, "%s\n", hi.Table)
				if hi.Empty {
					fmt.Fprintln(out, "  empty sheet")
					continue
				}
				printInspection(cmd, hi)
			}
			return nil
		},
	}

	s.bindInput(cmd)
	return cmd
}

func printInspection(cmd *cobra.Command, hi pipeline.HeaderInspection) {
	out := cmd.OutOrStdout()
	r := hi.Resolution
	if r.HasPhenotype {
		fmt.Fprintf(out, "  phenotype:   %q\n", hi.Header[r.Phenotype])
	} else {
		fmt.Fprintln(out, "  phenotype:   (missing, sheet skipped)")
	}
	if r.HasDistance {
		fmt.Fprintf(out, "  distance:    %q via %s\n", r.Distance.Name, r.Distance.Strategy)
		if len(r.Distance.Ignored) > 0 {
			fmt.Fprintf(out, "  ignored:     %s\n", strings.Join(r.Distance.Ignored, "; "))
		}
	} else {
		fmt.Fprintln(out, "  distance:    (missing, sheet skipped)")
	}
	if r.HasSampleName {
		fmt.Fprintf(out, "  sample name: %q\n", hi.Header[r.SampleName])
	} else {
		fmt.Fprintln(out, "  sample name: (missing, no subtype sheets)")
	}
}
