package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/backlog"
	"github.com/scopecraft/presales-cli/internal/export"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/normalize"
	"github.com/scopecraft/presales-cli/internal/store"
)

var (
	estimateCSV        string
	estimateAssessment string
	estimateClient     string
	estimateTitle      string
	estimateSave       bool
	estimateJSON       bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate per-column effort for a backlog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("estimate"); err != nil {
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

		var a *model.Assessment
		switch {
		case estimateCSV != "":
			items, err := backlog.ReadCSVFile(ctx, estimateCSV)
			if err != nil {
				return err
			}
			a = &model.Assessment{
				Client: estimateClient,
				Title:  estimateTitle,
				Items:  items,
			}
		case estimateAssessment != "":
			a, err = loadAssessment(ctx, st, estimateAssessment)
			if err != nil {
				return err
			}
		default:
			return eris.New("either --csv or --assessment is required")
		}

		refs, err := st.ListReferenceObservations(ctx, store.ReferenceFilter{})
		if err != nil {
			return eris.Wrap(err, "load reference history")
		}

		n := normalize.New(pack.Estimation, normalize.WithWorkers(cfg.Batch.MaxConcurrentItems))
		res, err := n.EstimateBatch(ctx, a.Items, refs)
		if err != nil {
			return err
		}
		if len(res.Estimates) == 0 {
			if len(res.Failed) > 0 {
				return eris.Errorf("no item could be estimated: %s", res.Failed[0].Reason)
			}
			return eris.New("backlog has no items to estimate")
		}
		for _, f := range res.Failed {
			zap.L().Warn("item excluded from estimate",
				zap.String("item", f.ItemID),
				zap.String("reason", f.Reason))
		}

		applyEstimates(a, res.Estimates)

		if estimateSave {
			if err := st.SaveAssessment(ctx, a); err != nil {
				return err
			}
			zap.L().Info("assessment saved",
				zap.String("id", a.ID),
				zap.String("client", a.Client),
				zap.Int("items", len(a.Items)))
		}

		if estimateJSON {
			return printJSON(struct {
				Assessment *model.Assessment     `json:"assessment"`
				Estimates  normalize.BatchResult `json:"estimates"`
			}{a, res})
		}

		export.WriteReport(os.Stdout, export.Summary{Assessment: a, Estimates: &res})
		return nil
	},
}

// applyEstimates folds estimated hours back onto the assessment's items,
// matching by item ID. Items the batch failed on keep their original
// hours untouched.
func applyEstimates(a *model.Assessment, ests []normalize.ItemEstimate) {
	byID := make(map[string]model.ScopeItem, len(ests))
	for _, e := range ests {
		byID[e.Item.ID] = e.Item
	}
	for i, it := range a.Items {
		if est, ok := byID[it.ID]; ok {
			a.Items[i] = est
		}
	}
}

func init() {
	estimateCmd.Flags().StringVar(&estimateCSV, "csv", "", "CSV backlog export to estimate")
	estimateCmd.Flags().StringVar(&estimateAssessment, "assessment", "", "stored assessment ID to re-estimate")
	estimateCmd.Flags().StringVar(&estimateClient, "client", "", "client name for a new assessment")
	estimateCmd.Flags().StringVar(&estimateTitle, "title", "", "title for a new assessment")
	estimateCmd.Flags().BoolVar(&estimateSave, "save", false, "persist the estimated assessment")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(estimateCmd)
}
