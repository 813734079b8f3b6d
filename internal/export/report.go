package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/scopecraft/presales-cli/internal/costing"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/normalize"
	"github.com/scopecraft/presales-cli/internal/timeline"
)

// money renders figures with digit grouping for terminal display.
var money = message.NewPrinter(language.English)

// WriteReport writes a plain-text summary of every populated section to out.
func WriteReport(out io.Writer, s Summary) {
	if s.Assessment != nil {
		formatHeader(out, s.Assessment)
	}
	if s.Estimates != nil {
		formatEstimates(out, *s.Estimates)
	}
	if s.Cost != nil {
		cost := s.Cost.Rounded()
		formatCost(out, cost)
		formatRevenue(out, cost)
	}
	if s.Timeline != nil {
		formatTimeline(out, *s.Timeline)
	}
}

func formatHeader(out io.Writer, a *model.Assessment) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Client:\t%s\n", a.Client)
	_, _ = fmt.Fprintf(w, "Assessment:\t%s\n", a.Title)
	_, _ = fmt.Fprintf(w, "Scope items:\t%d\n", len(a.Items))
	_ = w.Flush()
}

func formatEstimates(out io.Writer, batch normalize.BatchResult) {
	_, _ = fmt.Fprintln(out, "\nESTIMATES")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	cols := estimateColumns(batch.Estimates)
	head := "ITEM\tCATEGORY\tSIZE"
	for _, c := range cols {
		head += "\t" + strings.ToUpper(c)
	}
	_, _ = fmt.Fprintln(w, head+"\tTOTAL")

	for _, e := range batch.Estimates {
		name := e.Item.ID
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		line := fmt.Sprintf("%s\t%s\t%s", name, e.Item.Category, e.Classification.Size)
		for _, c := range cols {
			if v, ok := columnFinal(e, c); ok {
				line += fmt.Sprintf("\t%.1f", v)
			} else {
				line += "\t-"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%.1f\n", line, e.TotalHours())
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "Total hours: %.1f\n", batch.TotalHours())

	if len(batch.Failed) > 0 {
		_, _ = fmt.Fprintln(out, "\nNot estimated:")
		for _, fi := range batch.Failed {
			_, _ = fmt.Fprintf(out, "  %s: %s\n", fi.ItemID, fi.Reason)
		}
	}
}

func formatCost(out io.Writer, cost costing.Result) {
	_, _ = fmt.Fprintln(out, "\nCOST")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROLE\tHEADCOUNT\tSALARY/MONTH\tBEST\tWORST\tCOST")
	for _, r := range cost.RoleCosts {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%s\t%.1f\t%.1f\t%s\n",
			r.Role, r.Headcount, money.Sprintf("%.2f", r.MonthlySalary),
			r.BestCaseMonths, r.WorstCaseMonths, money.Sprintf("%.2f", r.TotalCost))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, line := range costLines(cost) {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", line.Label, money.Sprintf("%.2f", line.Value))
	}
	_ = w.Flush()
}

func formatRevenue(out io.Writer, cost costing.Result) {
	_, _ = fmt.Fprintln(out, "\nREVENUE")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROLE\tMAN DAYS\tDAILY RATE\tPRICE")
	for _, r := range cost.Revenue {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n",
			r.Role, r.ManDays, money.Sprintf("%.2f", r.DailyRate), money.Sprintf("%.2f", r.Price))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, line := range revenueLines(cost) {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", line.Label, money.Sprintf("%.2f", line.Value))
	}
	_ = w.Flush()
}

func formatTimeline(out io.Writer, plan timeline.Allocation) {
	_, _ = fmt.Fprintln(out, "\nTIMELINE")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Working days:\t%d\n", plan.TotalDays)
	_, _ = fmt.Fprintf(w, "Total man days:\t%.2f\n", plan.TotalManDays())
	_ = w.Flush()

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROLE\tMAN DAYS\tPEAK")
	for _, r := range plan.Rows {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", r.Role, r.TotalManDays(), r.Peak())
	}
	_ = w.Flush()
}
