package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"corpus-ingestor/internal/indexer"
	"corpus-ingestor/internal/service"
)

// options are the flag values shared by the ingest and clean commands.
type options struct {
	qdrantURL string
	corpusDir string
	workers   int
	clean     bool
}

// newRootCmd builds the ingest command tree. defaults supplies the flag
// defaults, normally read from the environment.
func newRootCmd(svc service.CorpusService, defaults options) *cobra.Command {
	opts := defaults

	rootCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a corpus directory into the vector store",
		Long: `Walks the corpus directory recursively, chunks every supported file
(.txt, .md, .csv), embeds each chunk and upserts it into the collection.
Unchanged files are skipped when the ingestion ledger is enabled.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, svc, opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.qdrantURL, "qdrant-url", defaults.qdrantURL, "vector store URL")
	rootCmd.Flags().StringVar(&opts.corpusDir, "corpus", defaults.corpusDir, "corpus root directory")
	rootCmd.Flags().IntVar(&opts.workers, "workers", defaults.workers, "files processed concurrently (0 uses INGEST_WORKERS)")
	rootCmd.Flags().BoolVar(&opts.clean, "clean", false, "drop and recreate the collection before ingesting")

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Drop and recreate the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd, svc, opts.qdrantURL)
		},
	}
	rootCmd.AddCommand(cleanCmd)

	return rootCmd
}

func runIngest(cmd *cobra.Command, svc service.CorpusService, opts options) error {
	if opts.workers < 0 {
		return fmt.Errorf("--workers must not be negative")
	}
	if opts.clean {
		if err := runClean(cmd, svc, opts.qdrantURL); err != nil {
			return err
		}
	}

	cmd.Printf("Ingesting %s into %s...\n", opts.corpusDir, opts.qdrantURL)
	stats, err := svc.Ingest(cmd.Context(), service.IngestRequest{
		QdrantURL: opts.qdrantURL,
		CorpusDir: opts.corpusDir,
		Workers:   opts.workers,
	})
	if stats != nil {
		if printErr := printStats(cmd, stats); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Println("Ingestion completed.")
	return nil
}

func runClean(cmd *cobra.Command, svc service.CorpusService, qdrantURL string) error {
	if err := svc.Clean(cmd.Context(), qdrantURL); err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}
	cmd.Printf("Collection at %s recreated.\n", qdrantURL)
	return nil
}

func printStats(cmd *cobra.Command, stats *indexer.Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
