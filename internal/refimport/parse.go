package refimport

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
)

// Parse converts workbook rows into reference observations. The first row is
// the header: item name, category, then one estimation column per remaining
// cell. Rows with an unknown category and cells that do not parse as hours
// are skipped with a warning; blank rows and blank cells are skipped
// silently.
func Parse(rows [][]string) ([]model.RefObservation, error) {
	if len(rows) == 0 {
		return nil, eris.New("refimport: workbook is empty")
	}

	header := rows[0]
	if len(header) < 3 {
		return nil, eris.Errorf("refimport: header has %d cells, need name, category and at least one column", len(header))
	}

	var out []model.RefObservation
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// Row numbers in warnings are 1-based sheet rows, header included.
		rowNum := i + 2

		name := strings.TrimSpace(row[0])
		if name == "" {
			zap.L().Warn("skipping reference row without item name", zap.Int("row", rowNum))
			continue
		}

		rawCat := ""
		if len(row) > 1 {
			rawCat = strings.TrimSpace(row[1])
		}
		cat, ok := model.ParseCategory(rawCat)
		if !ok {
			zap.L().Warn("skipping reference row with unknown category",
				zap.Int("row", rowNum),
				zap.String("item", name),
				zap.String("category", rawCat))
			continue
		}

		for j := 2; j < len(header); j++ {
			column := strings.TrimSpace(header[j])
			if column == "" {
				continue
			}
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if cell == "" {
				continue
			}
			hours, err := strconv.ParseFloat(cell, 64)
			if err != nil || hours < 0 {
				zap.L().Warn("skipping malformed hours cell",
					zap.Int("row", rowNum),
					zap.String("item", name),
					zap.String("column", column),
					zap.String("cell", cell))
				continue
			}
			out = append(out, model.RefObservation{
				ItemID:   name,
				Category: cat,
				Column:   column,
				Hours:    hours,
			})
		}
	}

	if len(out) == 0 {
		return nil, eris.New("refimport: workbook has no usable observations")
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
