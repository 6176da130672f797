// Package exporter writes ingest results in formats store staff open in
// spreadsheet tools.
//
// CSVWriter writes BOM-prefixed CSV files, either in one call or through a
// StreamWriter. RecordRows and ProductRows render normalized records and
// grouped products; unknown quantities are left blank.
//
// BuildRequestWorkbook renders replenishment requests as an xlsx workbook
// with one block per product family and store, highlighting the sizes to
// request from the distribution center.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter("out", logger)
//	err := writer.WriteCSV("products.csv", exporter.WriteOptions{
//		Headers:   exporter.ProductHeaders,
//		Records:   exporter.ProductRows(result.Products),
//		BOMPrefix: true,
//	})
//
//	requests := inventory.Sweep(result.Records, "Norte")
//	err = exporter.SaveRequestWorkbook("out/requests.xlsx", requests, result.Records)
package exporter
