package files

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stockpulse/internal/inventory"
)

// headerKeys are first-column labels that mark a dictionary header row
var headerKeys = map[string]struct{}{
	"sku": {}, "base_sku": {}, "base sku": {}, "codigo": {}, "code": {},
	"size": {}, "talla": {}, "key": {},
}

// LoadProductDictionary reads a base SKU to name mapping from a csv or json file.
// Keys are reduced to their lowercase base SKU.
func LoadProductDictionary(path string) (inventory.ProductDictionary, error) {
	entries, err := loadPairs(path)
	if err != nil {
		return nil, err
	}
	dict := make(inventory.ProductDictionary, len(entries))
	for _, e := range entries {
		dict[inventory.BaseSKU(e[0])] = e[1]
	}
	return dict, nil
}

// ReadProductDictionary reads a csv product dictionary from r
func ReadProductDictionary(r io.Reader) (inventory.ProductDictionary, error) {
	entries, err := readCSVPairs(r)
	if err != nil {
		return nil, err
	}
	dict := make(inventory.ProductDictionary, len(entries))
	for _, e := range entries {
		dict[inventory.BaseSKU(e[0])] = e[1]
	}
	return dict, nil
}

// LoadSizeDictionary reads a size token to label mapping from a csv or json file
func LoadSizeDictionary(path string) (inventory.SizeDictionary, error) {
	entries, err := loadPairs(path)
	if err != nil {
		return nil, err
	}
	return sizePairs(entries), nil
}

// ReadSizeDictionary reads a csv size dictionary from r
func ReadSizeDictionary(r io.Reader) (inventory.SizeDictionary, error) {
	entries, err := readCSVPairs(r)
	if err != nil {
		return nil, err
	}
	return sizePairs(entries), nil
}

func sizePairs(entries [][2]string) inventory.SizeDictionary {
	dict := make(inventory.SizeDictionary, len(entries))
	for _, e := range entries {
		dict[e[0]] = e[1]
	}
	return dict
}

func loadPairs(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return readJSONPairs(f)
	}
	return readCSVPairs(f)
}

// readCSVPairs reads key,value rows, skipping a header row and incomplete rows
func readCSVPairs(r io.Reader) ([][2]string, error) {
	rows, err := readCSV(r, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	pairs := make([][2]string, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		key, value := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if i == 0 {
			if _, isHeader := headerKeys[strings.ToLower(key)]; isHeader {
				continue
			}
		}
		if key == "" || value == "" {
			continue
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs, nil
}

// readJSONPairs reads a flat {"key": "value"} object
func readJSONPairs(r io.Reader) ([][2]string, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}
	pairs := make([][2]string, 0, len(raw))
	for k, v := range raw {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			pairs = append(pairs, [2]string{k, v})
		}
	}
	return pairs, nil
}
