package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetdash-go/internal/config"
	"github.com/ukaji3/sheetdash-go/internal/console"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	cfg     *config.Config
	logger  *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sheetdash",
	Short: "Turn published spreadsheet exports into dashboard data",
	Long: `sheetdash downloads CSV or XLSX exports of published spreadsheets, reads
them with fixed report layouts and prepares chart-ready data.

Example usage:
  sheetdash fetch https://example.com/export.csv --kind pie
  sheetdash fetch report.xlsx --kind daily-raw-time-series --view weekly
  sheetdash cards                     # Load every configured card
  sheetdash serve                     # Serve the dashboard API
  sheetdash trend 120 100             # Compare two period counts
  sheetdash kinds                     # List the supported layouts`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sheetdash.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig loads configuration and sets up the default logger.
func initConfig(stderr io.Writer) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return &console.CLIError{
			Summary:    "loading config",
			Detail:     err.Error(),
			Suggestion: "Check .sheetdash.yaml or the file passed with --config",
			ExitCode:   console.ExitConfigError,
			Err:        err,
		}
	}

	logger = newLogger(stderr, cfg.Logging, verbose)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"cards", len(cfg.Cards),
		"cache_ttl", cfg.Cache.TTL,
		"fetch_timeout", cfg.Fetch.Timeout,
	)
	return nil
}

// newLogger builds the slog logger described by the logging config.
func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// colorsEnabled reports whether printers should use colors.
func colorsEnabled() bool {
	if noColor {
		return false
	}
	configColors := true
	if cfg != nil {
		configColors = cfg.Output.Colors
	}
	return console.ResolveColors(configColors)
}

// newPrinter returns a printer bound to the command's writers.
func newPrinter(cmd *cobra.Command) *console.Printer {
	return console.NewPrinterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), colorsEnabled())
}

// outputFormat returns the --format flag value, falling back to config.
func outputFormat(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil {
		return cfg.Output.Format
	}
	return ""
}

// loggerOrDefault returns the configured logger or slog's default.
func loggerOrDefault() *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
