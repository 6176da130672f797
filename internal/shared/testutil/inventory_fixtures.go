package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleInventoryCSV is a two-store export: Norte (N01) and Sur (S02),
// two tee sizes, one pair of jeans and a totals row.
const SampleInventoryCSV = `,,,,,,Norte,,,,Sur,,,
,,,,,,N01,,,,S02,,,
Marca,Área,Categoría,Descripción,SKU,Stock CD,Stock tienda,Tránsito,Venta 2W,RA.,Stock tienda,Tránsito,Venta 2W,RA.
ACME,Women,Tops,Basic tee,100_RED_S,5,0,2,1,1,3,0,0,0
ACME,Women,Tops,Basic tee,100_RED_M,4,0,0,2,2,0,0,1,1
ACME,Men,Denim,Slim jeans,200_BLU_32,0,4,0,1,0,0,0,0,2
,,,,Total,9,4,2,4,3,3,0,1,3
`

// SampleProductsCSV maps base SKUs to display names
const SampleProductsCSV = `sku,name
100_RED,Camiseta básica
200_BLU,Jean slim
`

// SampleSizesCSV maps size tokens to labels
const SampleSizesCSV = `size,label
S,Small
M,Medium
`

// WriteFixture writes content to name inside a per-test temp dir and returns its path
func WriteFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
