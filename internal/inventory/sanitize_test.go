package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockpulse/pkg/contracts/domain"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name          string
		cell          string
		convention    NumericConvention
		want          domain.Quantity
		wantDefaulted bool
	}{
		{"plain integer", "12", ConventionUnknown, domain.KnownQuantity(12), false},
		{"thousands separator", "1,250", ConventionUnknown, domain.KnownQuantity(1250), false},
		{"currency and spaces", " $ 3,400 ", ConventionUnknown, domain.KnownQuantity(3400), false},
		{"euro sign", "€15", ConventionUnknown, domain.KnownQuantity(15), false},
		{"decimal", "2.5", ConventionUnknown, domain.KnownQuantity(2.5), false},
		{"zero", "0", ConventionUnknown, domain.KnownQuantity(0), false},
		{"blank unknown", "", ConventionUnknown, domain.UnknownQuantity(), true},
		{"blank zero", "   ", ConventionZero, domain.KnownQuantity(0), true},
		{"text unknown", "N/A", ConventionUnknown, domain.UnknownQuantity(), true},
		{"text zero", "N/A", ConventionZero, domain.KnownQuantity(0), true},
		{"nan", "NaN", ConventionUnknown, domain.UnknownQuantity(), true},
		{"dash", "-", ConventionZero, domain.KnownQuantity(0), true},
		{"negative clamps", "-3", ConventionUnknown, domain.KnownQuantity(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := ParseQuantity(tt.cell, tt.convention)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDefaulted, defaulted)
		})
	}
}

func TestSanitizeStoreIdentity(t *testing.T) {
	tests := []struct {
		raw      string
		wantID   string
		wantName string
	}{
		{"Mall Plaza Norte", "mallplazanorte", "MALL PLAZA NORTE"},
		{"  Viña del   Mar ", "vinadelmar", "VIÑA DEL MAR"},
		{"Tienda #12", "tienda12", "TIENDA #12"},
		{"***", "unknown-store", "***"},
		{"   ", "unknown-store", "UNKNOWN STORE"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.wantID, SanitizeStoreID(tt.raw))
			assert.Equal(t, tt.wantName, SanitizeStoreName(tt.raw))
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "transito", normalizeLabel(" Tránsito "))
	assert.Equal(t, "stock cd", normalizeLabel("STOCK_CD"))
	assert.Equal(t, "categoria", normalizeLabel("Categoría"))
	assert.Equal(t, "venta 2w estilo.", normalizeLabel("Venta  2W   estilo."))
}

func TestSKUHelpers(t *testing.T) {
	sizes := SizeDictionary{"S1": "S", "M1": "M"}

	assert.Equal(t, "abc_red", BaseSKU("ABC_RED_S"))
	assert.Equal(t, "abc_red", BaseSKU("ABC_RED"))
	assert.Equal(t, "abc", BaseSKU(" ABC "))

	assert.Equal(t, "S", sizes.Label(SizeToken("ABC_RED_S1", "")))
	assert.Equal(t, "XL", sizes.Label(SizeToken("ABC_RED_XL", "")))
	assert.Equal(t, "M", sizes.Label(SizeToken("ABC_RED", "M1")), "size column used when the SKU has no size token")
	assert.Equal(t, OneSize, sizes.Label(SizeToken("ABC_RED", "")))
	assert.Equal(t, "42", SizeDictionary(nil).Label(SizeToken("100_BLK_42", "")))
}
