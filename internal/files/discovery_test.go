package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"stock.xlsx":   FormatXLSX,
		"STOCK.XLSX":   FormatXLSX,
		"macro.xlsm":   FormatXLSX,
		"export.csv":   FormatCSV,
		"export.tsv":   FormatCSV,
		"legacy.xls":   FormatUnknown,
		"notes.pdf":    FormatUnknown,
		"no-extension": FormatUnknown,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, DetectFormat(name))
		})
	}
}

func TestFindInventoryFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	files := []string{"b.xlsx", "a.csv", "~$b.xlsx", "readme.txt.bak", "old.xls"}
	for i, name := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	found, err := NewDiscovery("").FindInventoryFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "b.xlsx", found[0].Name, "oldest first")
	assert.Equal(t, FormatXLSX, found[0].Format)
	assert.Equal(t, "a.csv", found[1].Name)
	assert.Equal(t, filepath.Join(dir, "a.csv"), found[1].Path)

	latest, ok := GetLatestFile(found)
	require.True(t, ok)
	assert.Equal(t, "a.csv", latest.Name)
}

func TestFindInventoryFilesRelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "exports"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "exports", "s.csv"), []byte("x"), 0o644))

	found, err := NewDiscovery(base).FindInventoryFiles("exports")
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = NewDiscovery(base).FindInventoryFiles("missing")
	assert.Error(t, err)
}

func TestFindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"stock_norte.xlsx", "stock_sur.csv", "stock_notes.txt.old", "other.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	found, err := NewDiscovery("").FindFilesByPattern(dir, "stock_*")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = NewDiscovery("").FindFilesByPattern(dir, "[")
	assert.Error(t, err)
}

func TestGetLatestFileEmpty(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)
}
