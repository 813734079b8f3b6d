package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/fetcher"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/refimport"
	"github.com/scopecraft/presales-cli/internal/store"
)

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Manage the reference history",
	Long:  "Commands for loading historical assessment workbooks and inspecting the stored observations.",
}

// -- refdata import --

var (
	refImportSource string
	refImportBatch  string
)

var refImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a historical workbook into the reference store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		source := refImportSource
		if source == "" {
			if err := cfg.Validate("refdata"); err != nil {
				return err
			}
			source = cfg.RefData.URL
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		timeout := time.Duration(cfg.RefData.TimeoutSecs) * time.Second
		reader := refimport.NewReader(refimport.Options{
			HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: timeout}),
			FTP: fetcher.NewFTPFetcher(fetcher.FTPOptions{
				User:     cfg.RefData.User,
				Password: cfg.RefData.Password,
				Timeout:  timeout,
			}),
			Workbook: fetcher.WorkbookOptions{
				SheetName: cfg.RefData.Sheet,
				SkipRows:  cfg.RefData.SkipRows,
			},
		})

		n, err := reader.Import(ctx, st, refImportBatch, source)
		if err != nil {
			return eris.Wrap(err, "refdata import")
		}
		zap.L().Info("reference batch imported",
			zap.String("source", source),
			zap.Int("observations", n))
		return nil
	},
}

// -- refdata list --

var refListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reference observations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		batch, _ := cmd.Flags().GetString("batch")
		category, _ := cmd.Flags().GetString("category")
		column, _ := cmd.Flags().GetString("column")
		limit, _ := cmd.Flags().GetInt("limit")

		obs, err := st.ListReferenceObservations(ctx, store.ReferenceFilter{
			Batch:    batch,
			Category: category,
			Column:   column,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "refdata list")
		}

		if len(obs) == 0 {
			fmt.Fprintln(os.Stderr, "No observations found.")
			return nil
		}

		formatObservations(os.Stdout, obs)
		return nil
	},
}

// -- refdata delete --

var refDeleteCmd = &cobra.Command{
	Use:   "delete <batch>",
	Short: "Delete one reference batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		n, err := st.DeleteReferenceBatch(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "refdata delete")
		}
		fmt.Printf("Deleted %d observations from batch %s.\n", n, args[0])
		return nil
	},
}

// formatObservations writes a tabular observation list to out.
func formatObservations(out io.Writer, obs []model.RefObservation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BATCH\tITEM\tCATEGORY\tCOLUMN\tHOURS")
	for _, o := range obs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n",
			o.Batch, o.ItemID, o.Category, o.Column, o.Hours)
	}
	_ = w.Flush()
}

func init() {
	refImportCmd.Flags().StringVar(&refImportSource, "source", "", "workbook path or URL (default refdata.url)")
	refImportCmd.Flags().StringVar(&refImportBatch, "batch", "", "batch name (default derived from the file name)")

	refListCmd.Flags().String("batch", "", "filter by batch name")
	refListCmd.Flags().String("category", "", "filter by category")
	refListCmd.Flags().String("column", "", "filter by estimation column")
	refListCmd.Flags().Int("limit", 100, "max number of observations to display")

	refdataCmd.AddCommand(refImportCmd)
	refdataCmd.AddCommand(refListCmd)
	refdataCmd.AddCommand(refDeleteCmd)
	rootCmd.AddCommand(refdataCmd)
}
