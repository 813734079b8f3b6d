package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scopecraft/presales-cli/internal/costing"
	"github.com/scopecraft/presales-cli/internal/goalseek"
)

var (
	seekAssessment string
	seekAdjust     string
	seekTarget     string
	seekValue      float64
	seekMin        float64
	seekMax        float64
	seekTol        float64
	seekJSON       bool
	seekDials      costFlags
)

var goalseekCmd = &cobra.Command{
	Use:   "goalseek",
	Short: "Find the dial value that hits a financial target",
	Long: "Bisects one pricing dial (multiplier, discount or worst-case buffer) until the\n" +
		"chosen model output matches the target, and reports the full model at that point.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("goalseek"); err != nil {
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

		a, err := loadAssessment(ctx, st, seekAssessment)
		if err != nil {
			return err
		}

		in := seekDials.apply(cmd, pack.Defaults)
		w, err := buildWorkup(ctx, st, pack, a, in)
		if err != nil {
			return err
		}

		req := goalseek.Request{
			Adjust:      goalseek.Adjustable(seekAdjust),
			Target:      goalseek.Target(seekTarget),
			TargetValue: seekValue,
		}
		if cmd.Flags().Changed("min") {
			req.Min = &seekMin
		}
		if cmd.Flags().Changed("max") {
			req.Max = &seekMax
		}
		if cmd.Flags().Changed("tol") {
			req.Tolerance = &seekTol
		}

		solver := goalseek.New(costing.NewCalculator(pack.Cost))
		resp, err := solver.Solve(w.ManDays, in, req)
		if err != nil {
			return err
		}

		if seekJSON {
			return printJSON(resp)
		}

		printSeekSummary(resp)
		return nil
	},
}

func printSeekSummary(resp goalseek.Response) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	res := resp.Result.Rounded()
	fmt.Fprintf(tw, "Adjusted:\t%s = %.4f\n", seekAdjust, resp.Value)
	fmt.Fprintf(tw, "Target:\t%s = %.2f\n", seekTarget, seekValue)
	fmt.Fprintf(tw, "Iterations:\t%d\n", resp.Iterations)
	fmt.Fprintf(tw, "Converged:\t%t\n", resp.Converged)
	fmt.Fprintf(tw, "Project value:\t%.2f\n", res.ProjectValue)
	fmt.Fprintf(tw, "Total cost:\t%.2f\n", res.TotalCost)
	fmt.Fprintf(tw, "Profit:\t%.2f (%.2f%%)\n", res.ProfitAmount, res.ProfitPercent)
	_ = tw.Flush()

	if !resp.Converged {
		fmt.Println("\nTarget not reachable within bounds; dial left at its best probe.")
	}
}

func init() {
	goalseekCmd.Flags().StringVar(&seekAssessment, "assessment", "", "stored assessment ID")
	goalseekCmd.Flags().StringVar(&seekAdjust, "adjust", "", "dial to adjust (multiplier, discount, worst_case_buffer)")
	goalseekCmd.Flags().StringVar(&seekTarget, "target", "", "model output to hit (profit_amount, profit_percent, total_cost)")
	goalseekCmd.Flags().Float64Var(&seekValue, "value", 0, "target value")
	goalseekCmd.Flags().Float64Var(&seekMin, "min", 0, "lower bound for the dial")
	goalseekCmd.Flags().Float64Var(&seekMax, "max", 0, "upper bound for the dial")
	goalseekCmd.Flags().Float64Var(&seekTol, "tol", 0, "convergence tolerance")
	goalseekCmd.Flags().BoolVar(&seekJSON, "json", false, "print the full result as JSON")
	seekDials.register(goalseekCmd)
	_ = goalseekCmd.MarkFlagRequired("assessment")
	_ = goalseekCmd.MarkFlagRequired("adjust")
	_ = goalseekCmd.MarkFlagRequired("target")
	_ = goalseekCmd.MarkFlagRequired("value")
	rootCmd.AddCommand(goalseekCmd)
}
