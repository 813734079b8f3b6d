package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/export"
	"github.com/scopecraft/presales-cli/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an assessment workup to a workbook or Salesforce",
}

var (
	exportAssessment string
	exportOut        string
	exportDials      costFlags
)

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Write the full workup to an xlsx workbook",
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

		a, err := loadAssessment(ctx, st, exportAssessment)
		if err != nil {
			return err
		}

		w, err := buildWorkup(ctx, st, pack, a, exportDials.apply(cmd, pack.Defaults))
		if err != nil {
			return err
		}

		path := exportOut
		if path == "" {
			path = filepath.Join(cfg.Export.Dir, workbookName(a))
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}

		if err := export.WriteWorkbook(path, w.summary()); err != nil {
			return err
		}
		zap.L().Info("workbook written",
			zap.String("path", path),
			zap.String("assessment", a.ID))
		fmt.Println(path)
		return nil
	},
}

var exportSFCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Sync the workup to a Salesforce opportunity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("sync"); err != nil {
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

		a, err := loadAssessment(ctx, st, exportAssessment)
		if err != nil {
			return err
		}

		w, err := buildWorkup(ctx, st, pack, a, exportDials.apply(cmd, pack.Defaults))
		if err != nil {
			return err
		}

		sf, err := initSalesforce()
		if err != nil {
			return err
		}

		oppID, err := export.NewSalesforceSyncer(sf).Sync(ctx, w.summary())
		if err != nil {
			return err
		}
		zap.L().Info("opportunity synced",
			zap.String("opportunity", oppID),
			zap.String("assessment", a.ID))
		fmt.Println(oppID)
		return nil
	},
}

// workbookName derives a file name from the assessment's client and
// title, falling back to the ID when both are empty.
func workbookName(a *model.Assessment) string {
	slug := func(s string) string {
		var b strings.Builder
		dash := false
		for _, r := range strings.ToLower(s) {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				b.WriteRune(r)
				dash = false
			case r == ' ' || r == '-' || r == '_':
				if !dash && b.Len() > 0 {
					b.WriteRune('-')
					dash = true
				}
			}
		}
		return strings.TrimRight(b.String(), "-")
	}

	parts := make([]string, 0, 2)
	if s := slug(a.Client); s != "" {
		parts = append(parts, s)
	}
	if s := slug(a.Title); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		parts = append(parts, a.ID)
	}
	return strings.Join(parts, "-") + ".xlsx"
}

func init() {
	for _, c := range []*cobra.Command{exportXLSXCmd, exportSFCmd} {
		c.Flags().StringVar(&exportAssessment, "assessment", "", "stored assessment ID")
		_ = c.MarkFlagRequired("assessment")
		exportDials.register(c)
	}
	exportXLSXCmd.Flags().StringVar(&exportOut, "out", "", "workbook path (default under export.dir)")

	exportCmd.AddCommand(exportXLSXCmd)
	exportCmd.AddCommand(exportSFCmd)
	rootCmd.AddCommand(exportCmd)
}
