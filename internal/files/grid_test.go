package files

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockpulse/internal/inventory"
)

// writeWorkbook saves rows to an xlsx file, optionally after an empty sheet
func writeWorkbook(t *testing.T, rows [][]any, emptyFirst bool) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if emptyFirst {
		sheet = "Stock"
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "stock.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadGridXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"", "", "Norte"},
		{"", "", "N01"},
		{"SKU", "Stock CD", "Stock tienda"},
		{},
		{"100_RED_S", 4, 2},
	}, false)

	grid, err := LoadGrid(path, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, grid, 4, "blank rows are dropped")
	assert.Equal(t, "Norte", grid[0][2])
	assert.Equal(t, []string{"100_RED_S", "4", "2"}, grid[3])
}

func TestLoadGridXLSXSkipsShortSheets(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"", "Norte"},
		{"", "N01"},
		{"SKU", "Stock tienda"},
	}, true)

	grid, err := LoadGrid(path, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, grid, 3)

	_, err = LoadGrid(path, LoadOptions{Sheet: "Missing"})
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestReadGridCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  LoadOptions
		want  [][]string
	}{
		{
			name:  "comma",
			input: ",,Norte\n,,N01\nSKU,Stock CD,Stock tienda\n100_RED_S,4,\"1,200\"\n",
			want: [][]string{
				{"", "", "Norte"}, {"", "", "N01"},
				{"SKU", "Stock CD", "Stock tienda"}, {"100_RED_S", "4", "1,200"},
			},
		},
		{
			name:  "semicolon with bom and ragged rows",
			input: "\ufeff;;Norte\r\n;;;\r\nSKU;Stock CD;Stock tienda\r\n100_RED_S;4\r\n",
			want: [][]string{
				{"", "", "Norte"}, {"", "", "", ""},
				{"SKU", "Stock CD", "Stock tienda"}, {"100_RED_S", "4"},
			},
		},
		{
			name:  "forced tab",
			input: "a\tb,c\n",
			opts:  LoadOptions{Delimiter: '\t'},
			want:  [][]string{{"a", "b,c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := ReadGrid(strings.NewReader(tt.input), FormatCSV, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, grid)
		})
	}
}

func TestReadGridKeepsBlankHeaderRows(t *testing.T) {
	input := "SKU,Stock CD,Centro,,,\n" +
		",,,,,\n" +
		"SKU,Stock CD,Stock tienda,Tránsito,Venta 2W,RA.\n" +
		",,,,,\n" +
		"ABC_RED_S,5,0,0,1,1\n" +
		"ABC_RED_M,0,3,0,1,1\n"

	grid, err := ReadGrid(strings.NewReader(input), FormatCSV, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, grid, 5, "only the blank data row is dropped")
	assert.Equal(t, []string{"", "", "", "", "", ""}, grid[1])
	assert.Equal(t, "Stock tienda", grid[2][2])

	result, err := inventory.NewPipeline(inventory.DefaultOptions()).Run(grid, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Stores, 1)
	assert.Len(t, result.Records, 2)
}

func TestLoadGridRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xls")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := LoadGrid(path, LoadOptions{})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = ReadGrid(bytes.NewReader(nil), FormatUnknown, LoadOptions{})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadGridCorruptWorkbook(t *testing.T) {
	_, err := ReadGrid(strings.NewReader("not a zip"), FormatXLSX, LoadOptions{})
	assert.Error(t, err)
}
