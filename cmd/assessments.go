package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/store"
)

var assessmentsCmd = &cobra.Command{
	Use:   "assessments",
	Short: "Inspect stored assessments",
	Long:  "Commands for listing, viewing, and deleting stored assessments.",
}

// -- assessments list --

var assessmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments",
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

		client, _ := cmd.Flags().GetString("client")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		list, err := st.ListAssessments(ctx, store.AssessmentFilter{
			Client: client,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return eris.Wrap(err, "assessments list")
		}

		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No assessments found.")
			return nil
		}

		formatAssessmentsList(os.Stdout, list)
		return nil
	},
}

// -- assessments show --

var assessmentsShowCmd = &cobra.Command{
	Use:   "show <assessment-id>",
	Short: "Show one assessment in full",
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

		a, err := st.GetAssessment(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "assessments show")
		}

		return printJSON(a)
	},
}

// -- assessments delete --

var assessmentsDeleteCmd = &cobra.Command{
	Use:   "delete <assessment-id>",
	Short: "Delete one assessment",
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

		if err := st.DeleteAssessment(ctx, args[0]); err != nil {
			return eris.Wrap(err, "assessments delete")
		}
		fmt.Printf("Deleted assessment %s.\n", args[0])
		return nil
	},
}

// formatAssessmentsList writes a tabular assessment list to out.
func formatAssessmentsList(out io.Writer, list []model.Assessment) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCLIENT\tTITLE\tITEMS\tHOURS\tUPDATED")
	for _, a := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%s\n",
			a.ID, a.Client, a.Title, len(a.Items), a.TotalHours(),
			a.UpdatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func init() {
	assessmentsListCmd.Flags().String("client", "", "filter by client name")
	assessmentsListCmd.Flags().Int("limit", 50, "max number of assessments to display")
	assessmentsListCmd.Flags().Int("offset", 0, "number of assessments to skip")

	assessmentsCmd.AddCommand(assessmentsListCmd)
	assessmentsCmd.AddCommand(assessmentsShowCmd)
	assessmentsCmd.AddCommand(assessmentsDeleteCmd)
	rootCmd.AddCommand(assessmentsCmd)
}
