package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/dumpstat/internal/collect"
	"github.com/jonathan/dumpstat/internal/config"
	"github.com/jonathan/dumpstat/internal/store"
	"github.com/jonathan/dumpstat/internal/store/mongostore"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Write dbStats and collStats of a MongoDB deployment as an export file",
	Long: "Query every database at MONGO_URL for dbStats and collStats and write " +
		"them as a single Extended JSON array to STATS_FILE_PATH " +
		"(default DATA_PATH/stats.txt), ready for parse.",
	Args: cobra.NoArgs,
	RunE: runCollect,
}

var (
	collectOutFile     string
	collectConcurrency int
)

func init() {
	collectCmd.Flags().StringVarP(&collectOutFile, "out", "o", "", "Path to the stats file (overrides STATS_FILE_PATH)")
	collectCmd.Flags().IntVar(&collectConcurrency, "concurrency", collect.DefaultConcurrency, "Databases queried at once")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd, func(c *config.Config) {
		setIf(&c.Collect.OutFile, collectOutFile)
	}, config.SectionStoreURL, config.SectionCollect)
	if err != nil {
		return err
	}

	kind, err := store.KindOf(cfg.Store.URL)
	if err != nil {
		return err
	}
	if kind != store.KindMongo {
		return fmt.Errorf("collect requires a MongoDB URL, got a %s URL", kind)
	}

	ctx := cmd.Context()
	client, err := mongostore.Connect(ctx, cfg.Store.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect")
		}
	}()

	docs, err := collect.Stats(ctx, client, collectConcurrency, log)
	if err != nil {
		return err
	}
	if err := collect.WriteFile(cfg.Collect.OutFile, docs); err != nil {
		return err
	}
	log.Info().Int("documents", len(docs)).Str("path", cfg.Collect.OutFile).Msg("stats written")
	fmt.Fprintf(cmd.OutOrStdout(), "Stats written to %s\n", cfg.Collect.OutFile)
	return nil
}
