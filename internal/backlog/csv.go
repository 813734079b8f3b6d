package backlog

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/fetcher"
	"github.com/scopecraft/presales-cli/internal/model"
)

// csvColumns maps header names to row positions. item falls back to the
// first column when no recognized name column is present.
type csvColumns struct {
	item       int
	detail     int
	category   int
	needed     int
	confidence int
	size       int
}

// ReadCSV parses a CSV backlog export into scope items. The header row
// names the columns: Item/Name, Detail, Category, Needed, Confidence and
// Size are recognized case-insensitively; Category is required. Rows with
// an unknown category are skipped with a warning.
func ReadCSV(ctx context.Context, r io.Reader) ([]model.ScopeItem, error) {
	headerCh := make(chan []string, 1)
	rows, errs := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var records [][]string
	for row := range rows {
		records = append(records, row)
	}
	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "backlog: read csv")
	}

	var header []string
	select {
	case header = <-headerCh:
	default:
		return nil, eris.New("backlog: csv export has no header row")
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var items []model.ScopeItem
	for i, row := range records {
		rowNum := i + 2

		name := cell(row, cols.item)
		if name == "" {
			if !blankRow(row) {
				zap.L().Warn("backlog: skipping csv row without item name", zap.Int("row", rowNum))
			}
			continue
		}

		rawCat := cell(row, cols.category)
		cat, ok := model.ParseCategory(rawCat)
		if !ok {
			zap.L().Warn("backlog: skipping csv row with unknown category",
				zap.Int("row", rowNum),
				zap.String("item", name),
				zap.String("category", rawCat),
			)
			continue
		}

		item := model.ScopeItem{
			ID:            name,
			Detail:        cell(row, cols.detail),
			Category:      cat,
			RequestedSize: cell(row, cols.size),
			IsNeeded:      parseNeeded(cell(row, cols.needed)),
		}
		if raw := cell(row, cols.confidence); raw != "" {
			conf, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				zap.L().Warn("backlog: ignoring malformed confidence",
					zap.Int("row", rowNum),
					zap.String("item", name),
					zap.String("confidence", raw),
				)
			} else {
				item.Justification = conf
			}
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, eris.New("backlog: csv export yielded no scope items")
	}
	return items, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(ctx context.Context, path string) ([]model.ScopeItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "backlog: open csv export")
	}
	defer f.Close() //nolint:errcheck
	return ReadCSV(ctx, f)
}

func mapColumns(header []string) (csvColumns, error) {
	cols := csvColumns{item: -1, detail: -1, category: -1, needed: -1, confidence: -1, size: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "item", "name", "scope item":
			cols.item = i
		case "detail", "description":
			cols.detail = i
		case "category":
			cols.category = i
		case "needed":
			cols.needed = i
		case "confidence":
			cols.confidence = i
		case "size", "requested size":
			cols.size = i
		}
	}
	if cols.category < 0 {
		return cols, eris.New("backlog: csv export has no Category column")
	}
	if cols.item < 0 {
		cols.item = 0
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseNeeded(s string) bool {
	switch strings.ToLower(s) {
	case "", "yes", "y":
		return true
	case "no", "n":
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return true
	}
	return b
}
