package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/dumpstat/internal/config"
	"github.com/jonathan/dumpstat/internal/logging"
	"github.com/jonathan/dumpstat/internal/pipeline"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the JSON artifact into the store and write the size report",
	Long: "Replace MONGO_COLLECTION_NAME in MONGO_DATABASE_NAME with the documents in " +
		"JSON_FILE_PATH, aggregate storage sizes per project and write them to " +
		"RESULT_FILE_PATH as CSV.",
	Args: cobra.NoArgs,
	RunE: runLoad,
}

var (
	loadJSONFile   string
	loadResultFile string
	loadValidate   bool
)

func init() {
	loadCmd.Flags().StringVarP(&loadJSONFile, "in", "i", "", "Path to the JSON artifact (overrides JSON_FILE_PATH)")
	loadCmd.Flags().StringVarP(&loadResultFile, "out", "o", "", "Path to the CSV report (overrides RESULT_FILE_PATH)")
	loadCmd.Flags().BoolVar(&loadValidate, "validate", true, "Check the artifact against the record schema before loading")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd, func(c *config.Config) {
		setIf(&c.Artifact.JSONFile, loadJSONFile)
		setIf(&c.Report.ResultFile, loadResultFile)
	}, config.SectionArtifact, config.SectionStore, config.SectionReport)
	if err != nil {
		return err
	}

	res, err := pipeline.Load(cmd.Context(), loadOptions(cmd, cfg, log, loadValidate))
	if err != nil {
		return err
	}
	if p := printer(cmd); p != nil {
		p.PrintReport(res.Rows)
	}
	return nil
}

func loadOptions(cmd *cobra.Command, cfg *config.Config, log *logging.Logger, validate bool) pipeline.LoadOptions {
	return pipeline.LoadOptions{
		Store:          cfg.Store,
		JSONFile:       cfg.Artifact.JSONFile,
		ResultFile:     cfg.Report.ResultFile,
		ValidateSchema: validate,
		Open:           openStore,
		Log:            log,
		OnProgress:     printProgress(cmd),
	}
}

// openStore is replaced in tests.
var openStore pipeline.Opener = pipeline.OpenStore
