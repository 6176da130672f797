package inventory

import (
	"strings"

	"stockpulse/pkg/contracts/domain"
)

// totalSentinels are SKU cells marking summary rows
var totalSentinels = map[string]struct{}{
	"total":         {},
	"totales":       {},
	"total general": {},
	"grand total":   {},
	"subtotal":      {},
	"sub total":     {},
}

// Diagnostics counts the recoverable irregularities met during a run
type Diagnostics struct {
	RowsScanned       int `json:"rows_scanned"`
	RowsSkipped       int `json:"rows_skipped"`
	CellsDefaulted    int `json:"cells_defaulted"`
	RecordsSuppressed int `json:"records_suppressed"`
	BlocksDropped     int `json:"blocks_dropped"`
}

// Extractor turns data rows into normalized records using a located layout
type Extractor struct {
	layout        *Layout
	sizes         SizeDictionary
	convention    NumericConvention
	suppressEmpty bool
}

// NewExtractor creates an extractor for one grid
func NewExtractor(layout *Layout, sizes SizeDictionary, convention NumericConvention, suppressEmpty bool) *Extractor {
	if !convention.Valid() {
		convention = ConventionUnknown
	}
	return &Extractor{
		layout:        layout,
		sizes:         sizes,
		convention:    convention,
		suppressEmpty: suppressEmpty,
	}
}

// isTotalRow reports whether a SKU cell marks a summary row
func isTotalRow(sku string) bool {
	n := normalizeLabel(sku)
	if _, ok := totalSentinels[n]; ok {
		return true
	}
	return strings.HasPrefix(n, "total ")
}

// ExtractRow emits one record per store block for a data row. Empty and
// summary rows yield nothing. diag may be nil.
func (e *Extractor) ExtractRow(row []string, diag *Diagnostics) []domain.NormalizedRecord {
	if diag == nil {
		diag = &Diagnostics{}
	}
	diag.RowsScanned++

	sku := strings.TrimSpace(cellAt(row, e.layout.SKUColumn))
	if sku == "" || isTotalRow(sku) {
		diag.RowsSkipped++
		return nil
	}

	base := domain.NormalizedRecord{
		SKU:         sku,
		Size:        e.sizes.Label(SizeToken(sku, cellAt(row, e.layout.SizeColumn))),
		Description: cleanText(cellAt(row, e.layout.DescriptionColumn)),
		Brand:       cleanText(cellAt(row, e.layout.BrandColumn)),
		Area:        cleanText(cellAt(row, e.layout.AreaColumn)),
		Category:    cleanText(cellAt(row, e.layout.CategoryColumn)),
		DCStock:     e.quantity(row, e.layout.DCColumn, diag),
	}

	records := make([]domain.NormalizedRecord, 0, len(e.layout.Stores))
	for _, store := range e.layout.Stores {
		rec := base
		rec.StoreID = store.ID
		rec.StoreName = store.DisplayName
		rec.StoreCode = store.Code
		rec.LocalStock = e.quantity(row, store.LocalColumn, diag)
		rec.TransitStock = e.quantity(row, store.TransitColumn, diag)
		rec.Sales2W = e.quantity(row, store.SalesColumn, diag)
		rec.Replenishment = e.quantity(row, store.ReplenishmentColumn, diag)

		if e.suppressEmpty && rec.LocalStock.IsZero() && rec.TransitStock.IsZero() &&
			rec.Sales2W.IsZero() && rec.Replenishment.IsZero() {
			diag.RecordsSuppressed++
			continue
		}
		records = append(records, rec)
	}
	return records
}

// quantity sanitizes one metric cell; a missing column is treated like a blank cell
func (e *Extractor) quantity(row []string, col int, diag *Diagnostics) domain.Quantity {
	q, defaulted := ParseQuantity(cellAt(row, col), e.convention)
	if defaulted {
		diag.CellsDefaulted++
	}
	return q
}
