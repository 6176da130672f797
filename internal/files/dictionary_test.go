package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/inventory"
)

func TestReadProductDictionary(t *testing.T) {
	input := "sku,name\n100_RED_S,Classic tee\n200_BLU,Slim jeans\n,orphan\n300_GRN\n"

	dict, err := ReadProductDictionary(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, inventory.ProductDictionary{
		"100_red": "Classic tee",
		"200_blu": "Slim jeans",
	}, dict)
}

func TestReadSizeDictionarySemicolon(t *testing.T) {
	input := "talla;etiqueta\nS1;S\nM1;M\n"

	dict, err := ReadSizeDictionary(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, inventory.SizeDictionary{"S1": "S", "M1": "M"}, dict)
}

func TestLoadDictionariesFromFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "sizes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"S1": "S", "XL2": " XL ", "": "x"}`), 0o644))
	csvPath := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("100_RED,Classic tee\n"), 0o644))

	sizes, err := LoadSizeDictionary(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, inventory.SizeDictionary{"S1": "S", "XL2": "XL"}, sizes)

	products, err := LoadProductDictionary(csvPath)
	require.NoError(t, err)
	name, ok := products.Lookup("100_RED")
	assert.True(t, ok)
	assert.Equal(t, "Classic tee", name)

	_, err = LoadProductDictionary(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
