package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	err := f.Save(path)
	require.NoError(t, err)
	return path
}

func TestReadWorkbook_Basic(t *testing.T) {
	path := createTestWorkbook(t, map[string][][]string{
		"Sheet1": {
			{"Item", "Category", "Development"},
			{"Invoice Entry", "New UI", "42"},
			{"Nightly Sync", "New Backgrounder", "18"},
		},
	})

	rows, err := ReadWorkbook(path, WorkbookOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Item", "Category", "Development"}, rows[0])
	assert.Equal(t, []string{"Invoice Entry", "New UI", "42"}, rows[1])
}

func TestReadWorkbook_SkipRows(t *testing.T) {
	path := createTestWorkbook(t, map[string][][]string{
		"Sheet1": {
			{"Item", "Hours"},
			{"a", "1"},
			{"b", "2"},
		},
	})

	rows, err := ReadWorkbook(path, WorkbookOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "1"}, rows[0])
}

func TestReadWorkbook_SheetName(t *testing.T) {
	path := createTestWorkbook(t, map[string][][]string{
		"Summary": {{"a", "b"}},
		"History": {{"x", "y"}, {"1", "2"}},
	})

	rows, err := ReadWorkbook(path, WorkbookOptions{SheetName: "History"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"x", "y"}, rows[0])
}

func TestReadWorkbook_SheetNameNotFound(t *testing.T) {
	path := createTestWorkbook(t, map[string][][]string{
		"Sheet1": {{"a"}},
	})

	_, err := ReadWorkbook(path, WorkbookOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadWorkbook_SheetIndexOutOfRange(t *testing.T) {
	path := createTestWorkbook(t, map[string][][]string{
		"Sheet1": {{"a"}},
	})

	_, err := ReadWorkbook(path, WorkbookOptions{SheetIndex: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadWorkbook_HeaderCh(t *testing.T) {
	path := createTestWorkbook(t, map[string][][]string{
		"Sheet1": {
			{"Item", "Development"},
			{"Invoice Entry", "42"},
		},
	})

	headerCh := make(chan []string, 1)
	rows, err := ReadWorkbook(path, WorkbookOptions{
		SkipRows: 1,
		HeaderCh: headerCh,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Invoice Entry", "42"}, rows[0])

	header := <-headerCh
	assert.Equal(t, []string{"Item", "Development"}, header)
}

func TestReadWorkbook_MissingFile(t *testing.T) {
	_, err := ReadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"), WorkbookOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}
