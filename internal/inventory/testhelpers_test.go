package inventory

// fixedLabels are the global columns every test grid starts with
var fixedLabels = []string{"Marca", "Área", "Categoría", "Descripción", "SKU", "Stock CD"}

// metricLabels repeat once per store block
var metricLabels = []string{"Stock tienda", "Tránsito", "Venta 2W", "RA."}

// row describes one data row: identity, DC stock and per-store metric cells
type row struct {
	brand, area, category, description, sku, dc string
	stores                                       [][4]string
}

// buildGrid lays out the three structural rows and the data rows the way
// store exports do: store names on row 0 at each block start, codes on row 1.
func buildGrid(stores []string, rows ...row) [][]string {
	names := make([]string, len(fixedLabels))
	codes := make([]string, len(fixedLabels))
	labels := append([]string(nil), fixedLabels...)
	for i, store := range stores {
		names = append(names, store)
		codes = append(codes, "C"+string(rune('0'+i)))
		for j := 1; j < len(metricLabels); j++ {
			names = append(names, "")
			codes = append(codes, "")
		}
		labels = append(labels, metricLabels...)
	}

	grid := [][]string{names, codes, labels}
	for _, r := range rows {
		line := []string{r.brand, r.area, r.category, r.description, r.sku, r.dc}
		for _, m := range r.stores {
			line = append(line, m[0], m[1], m[2], m[3])
		}
		grid = append(grid, line)
	}
	return grid
}

// variant is a shorthand for a one-store row with local, transit and DC stock
func variant(sku, local, transit, dc string) row {
	return row{
		brand:       "ACME",
		area:        "Women",
		category:    "Tops",
		description: "Basic tee",
		sku:         sku,
		dc:          dc,
		stores:      [][4]string{{local, transit, "0", "1"}},
	}
}
