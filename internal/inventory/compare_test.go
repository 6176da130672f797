package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/pkg/contracts/domain"
)

func record(store, sku, size string, local, transit float64) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		SKU:          sku,
		Size:         size,
		StoreID:      SanitizeStoreID(store),
		StoreName:    SanitizeStoreName(store),
		LocalStock:   domain.KnownQuantity(local),
		TransitStock: domain.KnownQuantity(transit),
		DCStock:      domain.KnownQuantity(0),
	}
}

func TestCompareClassifiesEachStore(t *testing.T) {
	records := []domain.NormalizedRecord{
		record("Sur", "100_RED_10", "10", 0, 0),
		record("Sur", "100_RED_2", "2", 5, 0),
		record("Sur", "100_RED_M", "M", 0, 1),
		record("Norte", "100_RED_10", "10", 3, 0),
		record("Norte", "100_RED_2", "2", 1, 0),
		record("Centro", "100_RED_10", "10", 2, 0),
		record("Centro", "100_RED_2", "2", 9, 0),
		record("Centro", "999_BLK_2", "2", 0, 0),
	}

	rows := Compare(records, "100_RED")
	require.Len(t, rows, 3)

	assert.Equal(t, "CENTRO", rows[0].Store)
	assert.Equal(t, domain.StockLevelComplete, rows[0].Status)
	assert.Equal(t, "all sizes sufficient", rows[0].Message)
	require.Len(t, rows[0].Sizes, 2, "records of other products are excluded")

	assert.Equal(t, "NORTE", rows[1].Store)
	assert.Equal(t, domain.StockLevelLow, rows[1].Status)
	assert.Equal(t, "low stock on sizes 2", rows[1].Message)

	assert.Equal(t, "SUR", rows[2].Store)
	assert.Equal(t, domain.StockLevelShortage, rows[2].Status)
	assert.Equal(t, "shortage on sizes 10, M", rows[2].Message)

	sizes := make([]string, 0, len(rows[2].Sizes))
	for _, s := range rows[2].Sizes {
		sizes = append(sizes, s.Size)
	}
	assert.Equal(t, []string{"2", "10", "M"}, sizes, "sizes sort numerically")
}

func TestCompareStoresOrdersNumerically(t *testing.T) {
	buckets := map[string][]domain.NormalizedRecord{
		"TIENDA 10": {record("Tienda 10", "1_A_S", "S", 4, 0)},
		"TIENDA 2":  {record("Tienda 2", "1_A_S", "S", 4, 0)},
		"ALAMEDA":   {record("Alameda", "1_A_S", "S", 4, 0)},
	}

	rows := CompareStores(buckets)
	require.Len(t, rows, 3)
	assert.Equal(t, "ALAMEDA", rows[0].Store)
	assert.Equal(t, "TIENDA 2", rows[1].Store)
	assert.Equal(t, "TIENDA 10", rows[2].Store)
}

func TestCompareEmpty(t *testing.T) {
	assert.Empty(t, Compare(nil, "100_red"))
}
