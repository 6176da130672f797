// Package files reads inventory exports and lookup dictionaries from disk.
//
// Discovery lists the xlsx and csv exports of a directory. LoadGrid and
// ReadGrid turn an export into the [][]string grid the inventory pipeline
// consumes: workbooks are read with excelize, csv files have their BOM
// stripped and their delimiter sniffed. LoadProductDictionary and
// LoadSizeDictionary read two-column csv or flat json mappings.
//
// Example usage:
//
//	grid, err := files.LoadGrid("exports/stock.xlsx", files.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	sizes, err := files.LoadSizeDictionary("dict/sizes.csv")
package files
