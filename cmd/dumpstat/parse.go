package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/dumpstat/internal/config"
	"github.com/jonathan/dumpstat/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract records from the data directory into the JSON artifact",
	Long: "Scan every file in DATA_PATH for JSON object blocks, rewrite shell type " +
		"wrappers, tag each record with its source file name and write the combined " +
		"array to JSON_FILE_PATH.",
	Args: cobra.NoArgs,
	RunE: runParse,
}

var (
	parseDataDir  string
	parseJSONFile string
)

func init() {
	parseCmd.Flags().StringVar(&parseDataDir, "data-dir", "", "Directory of export files (overrides DATA_PATH)")
	parseCmd.Flags().StringVarP(&parseJSONFile, "out", "o", "", "Path to the JSON artifact (overrides JSON_FILE_PATH)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd, func(c *config.Config) {
		setIf(&c.Source.DataDir, parseDataDir)
		setIf(&c.Artifact.JSONFile, parseJSONFile)
	}, config.SectionSource, config.SectionArtifact)
	if err != nil {
		return err
	}

	res, err := pipeline.Parse(cmd.Context(), pipeline.ParseOptions{
		DataDir:    cfg.Source.DataDir,
		JSONFile:   cfg.Artifact.JSONFile,
		Log:        log,
		OnProgress: printProgress(cmd),
	})
	if err != nil {
		return err
	}
	if p := printer(cmd); p != nil {
		p.PrintParseStats(res.Stats)
	}
	return nil
}
