package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/dumpstat/internal/config"
	"github.com/jonathan/dumpstat/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Parse the data directory, then load and report",
	Long:  "Run parse followed by load. All variables of both commands must be set.",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

var (
	runDataDir    string
	runJSONFile   string
	runResultFile string
	runValidate   bool
)

func init() {
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Directory of export files (overrides DATA_PATH)")
	runCmd.Flags().StringVar(&runJSONFile, "json-file", "", "Path to the JSON artifact (overrides JSON_FILE_PATH)")
	runCmd.Flags().StringVarP(&runResultFile, "out", "o", "", "Path to the CSV report (overrides RESULT_FILE_PATH)")
	runCmd.Flags().BoolVar(&runValidate, "validate", true, "Check the artifact against the record schema before loading")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd, func(c *config.Config) {
		setIf(&c.Source.DataDir, runDataDir)
		setIf(&c.Artifact.JSONFile, runJSONFile)
		setIf(&c.Report.ResultFile, runResultFile)
	}, config.SectionSource, config.SectionArtifact, config.SectionStore, config.SectionReport)
	if err != nil {
		return err
	}

	pr, lr, err := pipeline.Run(cmd.Context(),
		pipeline.ParseOptions{
			DataDir:    cfg.Source.DataDir,
			JSONFile:   cfg.Artifact.JSONFile,
			Log:        log,
			OnProgress: printProgress(cmd),
		},
		loadOptions(cmd, cfg, log, runValidate))
	if err != nil {
		return err
	}
	if p := printer(cmd); p != nil {
		p.PrintParseStats(pr.Stats)
		p.PrintReport(lr.Rows)
	}
	return nil
}
