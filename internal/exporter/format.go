package exporter

import (
	"strconv"
	"strings"

	"stockpulse/pkg/contracts/domain"
)

// RecordHeaders are the columns of a normalized record export
var RecordHeaders = []string{
	"sku", "size", "description", "brand", "area", "category",
	"store_id", "store_name", "store_code",
	"local_stock", "transit_stock", "dc_stock", "sales_2w", "replenishment",
}

// ProductHeaders are the columns of a grouped product export
var ProductHeaders = []string{
	"base_sku", "store_name", "name", "brand", "area", "category", "variants",
	"local_stock", "transit_stock", "dc_stock", "sales_2w", "replenishment",
	"health", "severity", "action",
	"in_transit_sizes", "requestable_sizes", "dead_sizes",
}

// RecordRow renders a record in RecordHeaders order; unknown metrics are blank
func RecordRow(r domain.NormalizedRecord) []string {
	return []string{
		r.SKU, r.Size, r.Description, r.Brand, r.Area, r.Category,
		r.StoreID, r.StoreName, r.StoreCode,
		r.LocalStock.String(), r.TransitStock.String(), r.DCStock.String(),
		r.Sales2W.String(), r.Replenishment.String(),
	}
}

// ProductRow renders a grouped product in ProductHeaders order
func ProductRow(p domain.GroupedProduct) []string {
	return []string{
		p.BaseSKU, p.StoreName, p.Name, p.Brand, p.Area, p.Category, strconv.Itoa(p.Variants),
		formatUnits(p.LocalStock), formatUnits(p.TransitStock), formatUnits(p.DCStock),
		formatUnits(p.Sales2W), formatUnits(p.Replenishment),
		string(p.Health.State), string(p.Health.Severity), string(p.Health.Action),
		formatSizes(p.InTransitSizes), formatSizes(p.RequestableSizes), formatSizes(p.DeadSizes),
	}
}

// RecordRows renders every record
func RecordRows(records []domain.NormalizedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, RecordRow(r))
	}
	return rows
}

// ProductRows renders every grouped product
func ProductRows(products []domain.GroupedProduct) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, ProductRow(p))
	}
	return rows
}

// formatUnits prints a unit count without trailing zeros
func formatUnits(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatSizes joins a size list with a separator that survives csv quoting
func formatSizes(sizes []string) string {
	return strings.Join(sizes, "|")
}
