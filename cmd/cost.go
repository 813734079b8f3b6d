package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/export"
)

var (
	costAssessment string
	costXLSX       string
	costJSON       bool
	costDials      costFlags
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Run the cost and profitability model for an assessment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cost"); err != nil {
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

		pack, err := loadPack(ctx, st)
		if err != nil {
			return err
		}

		a, err := loadAssessment(ctx, st, costAssessment)
		if err != nil {
			return err
		}

		w, err := buildWorkup(ctx, st, pack, a, costDials.apply(cmd, pack.Defaults))
		if err != nil {
			return err
		}

		if costJSON {
			return printJSON(w)
		}

		export.WriteReport(os.Stdout, w.summary())

		if costXLSX != "" {
			path := costXLSX
			if filepath.Dir(path) == "." && cfg.Export.Dir != "" {
				if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
					return err
				}
				path = filepath.Join(cfg.Export.Dir, path)
			}
			if err := export.WriteWorkbook(path, w.summary()); err != nil {
				return err
			}
			zap.L().Info("workbook written", zap.String("path", path))
		}
		return nil
	},
}

func init() {
	costCmd.Flags().StringVar(&costAssessment, "assessment", "", "stored assessment ID")
	costDials.register(costCmd)
	costCmd.Flags().StringVar(&costXLSX, "xlsx", "", "also write an xlsx workbook")
	costCmd.Flags().BoolVar(&costJSON, "json", false, "print the full result as JSON")
	_ = costCmd.MarkFlagRequired("assessment")
	rootCmd.AddCommand(costCmd)
}
