package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/towndigest/towndigest/internal/config"
	"github.com/towndigest/towndigest/internal/extract"
	"github.com/towndigest/towndigest/internal/ingest"
	"github.com/towndigest/towndigest/internal/logger"
	"github.com/towndigest/towndigest/internal/mail"
	"github.com/towndigest/towndigest/internal/seed"
	"github.com/towndigest/towndigest/internal/store"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "towndigest",
		Short: "Ingest civic newsletter emails into editions, announcements, and events",
	}
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "towndigest.yaml", "path to the configuration file",
	)

	rootCmd.AddCommand(newIngestCmd(&configPath))
	rootCmd.AddCommand(newSeedCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newIngestCmd(configPath *string) *cobra.Command {
	var includeSeen bool
	var limit int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion pass over the configured mailbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			log := logger.New(cfg.Log.Level)

			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			dialer := mail.NewClient(
				cfg.IMAP.Host, cfg.IMAP.Port,
				cfg.IMAP.Username, cfg.IMAP.Password,
				cfg.IMAP.Folder,
			)
			extractor := extract.NewExtractor(
				extract.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
			)

			if limit <= 0 {
				limit = cfg.Ingest.FetchLimit
			}

			orchestrator := ingest.New(dialer, st, extractor, log, ingest.Options{
				FetchLimit:  limit,
				IncludeSeen: includeSeen,
			})

			report, err := orchestrator.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf(
				"run %s: fetched=%d persisted=%d routed=%d unrouted=%d extracted=%d announcements=%d events=%d failed=%d\n",
				report.RunID, report.Fetched, report.Persisted,
				report.Routed, report.Unrouted, report.Extracted,
				report.Announcements, report.Events, len(report.Failed),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeSeen, "all", false, "fetch all messages, not just unseen ones")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap on fetched messages (default from config)")

	return cmd
}

func newSeedCmd(configPath *string) *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load editions and aliases from a YAML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := seed.Load(seedFile)
			if err != nil {
				return err
			}

			result, err := seed.Apply(cmd.Context(), st, f)
			if err != nil {
				return err
			}

			fmt.Printf(
				"seed complete: editions created=%d, aliases created=%d\n",
				result.EditionsCreated, result.AliasesCreated,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "file", "seeds.yaml", "path to the seed file")

	return cmd
}
