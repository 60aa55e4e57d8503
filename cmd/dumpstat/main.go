// Package main provides the dumpstat command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/dumpstat/internal/config"
	"github.com/jonathan/dumpstat/internal/logging"
	"github.com/jonathan/dumpstat/internal/observability"
	"github.com/jonathan/dumpstat/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "dumpstat",
	Short: "Extract JSON records from export dumps and report storage sizes",
	Long: "dumpstat scans a directory of text exports for embedded JSON objects, " +
		"rewrites MongoDB shell wrappers into plain JSON, loads the records into a " +
		"document store and writes a per-project size report as CSV.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	envFile   string
	logLevel  string
	logFormat string
	verbose   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to env file (default .env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json (overrides LOG_FORMAT)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print run summaries")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides, checks the sections
// the command depends on and builds the logger. Nothing is read or written
// before the configuration is known to be complete.
func setup(cmd *cobra.Command, override func(*config.Config), sections ...config.Section) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Require(sections...); err != nil {
		return nil, nil, err
	}

	log := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	return cfg, log, nil
}

// printProgress writes pipeline progress messages to the command's output.
func printProgress(cmd *cobra.Command) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		fmt.Fprintln(cmd.OutOrStdout(), e.Message)
	}
}

// printer returns a summary printer, or nil unless --verbose is set.
func printer(cmd *cobra.Command) *observability.Printer {
	if !verbose {
		return nil
	}
	return observability.NewPrinter(cmd.OutOrStdout())
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
