package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/festcal/internal/calendar"
	"github.com/pfrederiksen/festcal/internal/config"
	"github.com/pfrederiksen/festcal/internal/logger"
	"github.com/pfrederiksen/festcal/internal/pipeline"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitInvalid = 2
)

var (
	flagPreset      string
	flagConfig      string
	flagOutput      string
	flagFormat      string
	flagConcurrency int
	flagLogLevel    string
	flagVerbose     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "festcal",
		Short: "Scrape a festival program into an iCalendar file",
		Long: `Scrape a festival's public program website and write every event to a
single iCalendar (.ics) file that calendar applications can subscribe to.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	cmd.Flags().StringVar(&flagPreset, "preset", config.DefaultPreset,
		fmt.Sprintf("Built-in program configuration (%s)", strings.Join(config.PresetNames(), ", ")))
	cmd.Flags().StringVar(&flagConfig, "config", "", "YAML file overriding preset fields")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Output path (overrides the preset)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Parallel event page fetches (0 keeps the configured value)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Minimum log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging and print run metrics")

	cmd.AddCommand(NewValidateCmd())

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	level := logger.ParseLevel(flagLogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)

	cfg, err := config.Load(flagConfig, flagPreset)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagOutput != "" || flagConcurrency > 0 {
		if flagOutput != "" {
			cfg.Output = flagOutput
		}
		if flagConcurrency > 0 {
			cfg.Concurrency = flagConcurrency
		}
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	log.Debug("configuration loaded", logger.Fields{
		"preset":      cfg.Name,
		"target_url":  cfg.TargetURL,
		"output":      cfg.Output,
		"timezone":    cfg.Timezone,
		"concurrency": cfg.Concurrency,
	})

	runner := pipeline.New(cfg, pipeline.NewSource(cfg), pipeline.WithLogger(log))
	result, err := runner.Run(cmd.Context())
	if err != nil {
		log.Error("run failed", logger.Fields{
			"preset":     cfg.Name,
			"target_url": cfg.TargetURL,
		}, err)
		return err
	}

	if flagVerbose {
		log.Debug("run metrics", logger.Fields{"metrics": runner.Metrics().GetSnapshot()})
	}

	if err := WriteOutput(cmd.OutOrStdout(), NewOutputResult(result, flagVerbose), format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// NewValidateCmd creates the validate subcommand
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check that a file is a well-formed iCalendar document",
		Long: `Check that a file is a well-formed iCalendar document.

Exit codes:
  0  the calendar is valid
  1  no path was given or the file could not be read
  2  the calendar is invalid`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if code := runValidate(cmd.OutOrStdout(), cmd.ErrOrStderr(), args); code != ExitSuccess {
				os.Exit(code)
			}
		},
	}
}

// runValidate validates the calendar named by args[0] and returns the exit code.
func runValidate(stdout, stderr io.Writer, args []string) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(stderr, "Error: call this command with the path to an iCalendar file")
		return ExitError
	}
	path := args[0]

	report, err := calendar.ValidateFile(path)
	if err != nil {
		var verr *calendar.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(stdout, "The iCalendar file is invalid:\n%s\n", verr.Error())
			return ExitInvalid
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(stdout, "The iCalendar file is valid: %d events (%d unscheduled)\n", report.Events, report.Unscheduled)
	for _, w := range report.Warnings {
		fmt.Fprintf(stdout, "  warning: %s\n", w)
	}
	return ExitSuccess
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// ExecuteValidate runs the standalone validator on the process arguments.
func ExecuteValidate() {
	os.Exit(runValidate(os.Stdout, os.Stderr, os.Args[1:]))
}
