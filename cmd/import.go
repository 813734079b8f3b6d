package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/backlog"
	"github.com/scopecraft/presales-cli/pkg/notion"
)

var (
	importClient string
	importTitle  string
	importStatus string
	importMarkAs string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Pull a scope backlog from the Notion database",
	Long: "Reads scope rows from the configured Notion backlog database, assembles them\n" +
		"into an assessment, and stores it. CSV exports go through estimate --csv instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		nc := notion.NewClient(cfg.Notion.Token)
		imp := backlog.NewNotionImporter(nc, cfg.Notion.BacklogDB, backlog.NotionOptions{
			Status: importStatus,
			MarkAs: importMarkAs,
		})

		a, err := imp.Import(ctx, importClient, importTitle)
		if err != nil {
			return err
		}

		if err := st.SaveAssessment(ctx, a); err != nil {
			return err
		}
		zap.L().Info("assessment saved",
			zap.String("id", a.ID),
			zap.String("client", a.Client),
			zap.Int("items", len(a.Items)))

		return printJSON(a)
	},
}

func init() {
	importCmd.Flags().StringVar(&importClient, "client", "", "client name for the assessment")
	importCmd.Flags().StringVar(&importTitle, "title", "", "assessment title")
	importCmd.Flags().StringVar(&importStatus, "status", "", "only pull rows in this status")
	importCmd.Flags().StringVar(&importMarkAs, "mark-as", "", "flip imported rows to this status")
	_ = importCmd.MarkFlagRequired("client")
	_ = importCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(importCmd)
}
