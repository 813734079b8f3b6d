package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/scopecraft/presales-cli/internal/costing"
	"github.com/scopecraft/presales-cli/internal/normalize"
	"github.com/scopecraft/presales-cli/internal/timeline"
)

// Sheet names in the generated workbook.
const (
	SheetEstimates = "Estimates"
	SheetCost      = "Cost"
	SheetRevenue   = "Revenue"
	SheetTimeline  = "Timeline"
)

// WriteWorkbook renders the summary as an XLSX workbook at path. Each
// populated section becomes a sheet; cost and revenue figures are rounded
// to two decimals first.
func WriteWorkbook(path string, s Summary) error {
	if s.Estimates == nil && s.Cost == nil && s.Timeline == nil {
		return eris.New("export: summary has nothing to render")
	}

	f := xlsx.NewFile()
	if s.Estimates != nil {
		if err := addEstimateSheet(f, *s.Estimates); err != nil {
			return err
		}
	}
	if s.Cost != nil {
		cost := s.Cost.Rounded()
		if err := addCostSheet(f, cost); err != nil {
			return err
		}
		if err := addRevenueSheet(f, cost); err != nil {
			return err
		}
	}
	if s.Timeline != nil {
		if err := addTimelineSheet(f, *s.Timeline); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

// addRow appends one row, picking the cell setter by value type.
func addRow(sheet *xlsx.Sheet, values ...any) {
	row := sheet.AddRow()
	for _, v := range values {
		cell := row.AddCell()
		switch x := v.(type) {
		case string:
			cell.SetString(x)
		case float64:
			cell.SetFloat(x)
		case int:
			cell.SetInt(x)
		default:
			cell.SetValue(x)
		}
	}
}

func addEstimateSheet(f *xlsx.File, batch normalize.BatchResult) error {
	sheet, err := f.AddSheet(SheetEstimates)
	if err != nil {
		return eris.Wrap(err, "export: add estimates sheet")
	}

	cols := estimateColumns(batch.Estimates)
	header := []any{"Item", "Category", "Size", "Score"}
	for _, c := range cols {
		header = append(header, c)
	}
	header = append(header, "Total")
	addRow(sheet, header...)

	colTotals := make([]float64, len(cols))
	for _, e := range batch.Estimates {
		vals := []any{e.Item.ID, string(e.Item.Category), string(e.Classification.Size), e.Classification.Score}
		for i, c := range cols {
			if v, ok := columnFinal(e, c); ok {
				colTotals[i] += v
				vals = append(vals, v)
			} else {
				vals = append(vals, "")
			}
		}
		vals = append(vals, e.TotalHours())
		addRow(sheet, vals...)
	}

	totals := []any{"Total", "", "", ""}
	for _, v := range colTotals {
		totals = append(totals, v)
	}
	totals = append(totals, batch.TotalHours())
	addRow(sheet, totals...)

	if len(batch.Failed) > 0 {
		addRow(sheet)
		addRow(sheet, "Not estimated")
		addRow(sheet, "Item", "Reason")
		for _, fi := range batch.Failed {
			addRow(sheet, fi.ItemID, fi.Reason)
		}
	}
	return nil
}

func addCostSheet(f *xlsx.File, cost costing.Result) error {
	sheet, err := f.AddSheet(SheetCost)
	if err != nil {
		return eris.Wrap(err, "export: add cost sheet")
	}

	addRow(sheet, "Role", "Headcount", "Monthly salary", "Best case months", "Worst case months", "Total cost")
	for _, r := range cost.RoleCosts {
		addRow(sheet, r.Role, r.Headcount, r.MonthlySalary, r.BestCaseMonths, r.WorstCaseMonths, r.TotalCost)
	}

	addRow(sheet)
	for _, line := range costLines(cost) {
		addRow(sheet, line.Label, line.Value)
	}
	return nil
}

func addRevenueSheet(f *xlsx.File, cost costing.Result) error {
	sheet, err := f.AddSheet(SheetRevenue)
	if err != nil {
		return eris.Wrap(err, "export: add revenue sheet")
	}

	addRow(sheet, "Role", "Man days", "Daily rate", "Price")
	for _, r := range cost.Revenue {
		addRow(sheet, r.Role, r.ManDays, r.DailyRate, r.Price)
	}

	addRow(sheet)
	for _, line := range revenueLines(cost) {
		addRow(sheet, line.Label, line.Value)
	}
	return nil
}

func addTimelineSheet(f *xlsx.File, plan timeline.Allocation) error {
	sheet, err := f.AddSheet(SheetTimeline)
	if err != nil {
		return eris.Wrap(err, "export: add timeline sheet")
	}

	header := []any{"Role"}
	for d := 1; d <= plan.TotalDays; d++ {
		header = append(header, fmt.Sprintf("Day %d", d))
	}
	header = append(header, "Total")
	addRow(sheet, header...)

	dayTotals := make([]float64, plan.TotalDays)
	for _, r := range plan.Rows {
		vals := []any{r.Role}
		for d := 0; d < plan.TotalDays; d++ {
			var v float64
			if d < len(r.Daily) {
				v = r.Daily[d]
			}
			dayTotals[d] += v
			vals = append(vals, v)
		}
		vals = append(vals, r.TotalManDays())
		addRow(sheet, vals...)
	}

	totals := []any{"Total"}
	for _, v := range dayTotals {
		totals = append(totals, v)
	}
	totals = append(totals, plan.TotalManDays())
	addRow(sheet, totals...)
	return nil
}
