package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/costing"
	"github.com/scopecraft/presales-cli/internal/export"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/normalize"
	"github.com/scopecraft/presales-cli/internal/store"
	"github.com/scopecraft/presales-cli/internal/timeline"
)

// workup bundles everything the reporting commands derive from one
// assessment: the estimation pass, per-role man-days, the cost model
// run, and the stored timeline plan when one exists.
type workup struct {
	Assessment *model.Assessment     `json:"assessment"`
	Estimates  normalize.BatchResult `json:"estimates"`
	ManDays    []costing.RoleManDays `json:"man_days"`
	Cost       costing.Result        `json:"cost"`
	Timeline   *timeline.Allocation  `json:"timeline,omitempty"`
}

// buildWorkup runs the full derivation for a stored or in-memory
// assessment. Stored column hours act as caps on the re-estimation, so a
// hand-tuned assessment never grows on the way to the cost model. A
// stored timeline plan, when present, supplies effort peaks for headcount
// derivation.
func buildWorkup(ctx context.Context, st store.Store, pack *model.PolicyPack, a *model.Assessment, in model.CostInputs) (*workup, error) {
	refs, err := st.ListReferenceObservations(ctx, store.ReferenceFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "load reference history")
	}

	n := normalize.New(pack.Estimation, normalize.WithWorkers(cfg.Batch.MaxConcurrentItems))
	res, err := n.EstimateBatch(ctx, a.Items, refs)
	if err != nil {
		return nil, err
	}
	if len(res.Estimates) == 0 {
		if len(res.Failed) > 0 {
			return nil, eris.Errorf("no item could be estimated: %s", res.Failed[0].Reason)
		}
		return nil, eris.New("assessment has no items to estimate")
	}

	manDays := costing.AggregateManDays(res.Estimates, pack.Estimation, pack.Cost.RoleOrder())

	w := &workup{Assessment: a, Estimates: res, ManDays: manDays}

	if a.ID != "" {
		plan, err := st.GetTimeline(ctx, a.ID)
		switch {
		case err == nil:
			alloc := timeline.NewAllocator(pack.Cost.RoleOrder()).Allocate(plan.Tasks, plan.TotalDays)
			w.Timeline = &alloc
			w.ManDays = costing.ApplyEffortPeaks(manDays, alloc.PeakByRole())
		case !eris.Is(err, store.ErrNotFound):
			return nil, eris.Wrap(err, "load timeline plan")
		}
	}

	cost, err := costing.NewCalculator(pack.Cost).Calculate(w.ManDays, in)
	if err != nil {
		return nil, err
	}
	w.Cost = cost

	zap.L().Info("workup built",
		zap.String("assessment", a.ID),
		zap.Int("estimated", len(res.Estimates)),
		zap.Int("failed", len(res.Failed)),
		zap.Float64("total_hours", res.TotalHours()),
		zap.Float64("total_cost", cost.Rounded().TotalCost))
	return w, nil
}

// summary converts the workup into the export shape shared by the
// terminal report, the workbook writer, and the Salesforce syncer.
func (w *workup) summary() export.Summary {
	return export.Summary{
		Assessment: w.Assessment,
		Estimates:  &w.Estimates,
		Cost:       &w.Cost,
		Timeline:   w.Timeline,
	}
}

// loadAssessment fetches a stored assessment by ID.
func loadAssessment(ctx context.Context, st store.Store, id string) (*model.Assessment, error) {
	a, err := st.GetAssessment(ctx, id)
	if err != nil {
		return nil, eris.Wrapf(err, "load assessment %s", id)
	}
	return a, nil
}

// costFlags are the pricing dials a command may override. Only flags the
// user actually set are copied onto the pack defaults, so zero stays a
// legal override value.
type costFlags struct {
	multiplier float64
	discount   float64
	buffer     float64
	rateCard   string
}

func (f *costFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.multiplier, "multiplier", 0, "revenue multiplier override")
	cmd.Flags().Float64Var(&f.discount, "discount", 0, "discount percent override")
	cmd.Flags().Float64Var(&f.buffer, "worst-case-buffer", 0, "worst-case buffer percent override")
	cmd.Flags().StringVar(&f.rateCard, "rate-card", "", "rate card key override")
}

func (f *costFlags) apply(cmd *cobra.Command, in model.CostInputs) model.CostInputs {
	if cmd.Flags().Changed("multiplier") {
		in.Multiplier = f.multiplier
	}
	if cmd.Flags().Changed("discount") {
		in.DiscountPercent = f.discount
	}
	if cmd.Flags().Changed("worst-case-buffer") {
		in.WorstCaseBufferPercent = f.buffer
	}
	if cmd.Flags().Changed("rate-card") {
		in.RateCardKey = f.rateCard
	}
	return in
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
