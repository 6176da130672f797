package inventory

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"stockpulse/pkg/contracts/domain"
)

// newCollator returns a numeric-aware collator ("2" < "10", "S" < "s1").
// Collators hold buffers and are not shared between calls.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
}

// BucketByStore collects the records of one base SKU per store display name
func BucketByStore(records []domain.NormalizedRecord, baseSKU string) map[string][]domain.NormalizedRecord {
	baseSKU = strings.ToLower(strings.TrimSpace(baseSKU))
	buckets := make(map[string][]domain.NormalizedRecord)
	for _, rec := range records {
		if BaseSKU(rec.SKU) != baseSKU {
			continue
		}
		buckets[rec.StoreName] = append(buckets[rec.StoreName], rec)
	}
	return buckets
}

// CompareStores classifies each store bucket on local stock only and
// returns the rows ordered by store name.
func CompareStores(buckets map[string][]domain.NormalizedRecord) []domain.StoreComparison {
	col := newCollator()

	stores := make([]string, 0, len(buckets))
	for store := range buckets {
		stores = append(stores, store)
	}
	sort.SliceStable(stores, func(i, j int) bool {
		return col.CompareString(stores[i], stores[j]) < 0
	})

	out := make([]domain.StoreComparison, 0, len(stores))
	for _, store := range stores {
		out = append(out, compareStore(col, store, buckets[store]))
	}
	return out
}

// Compare runs CompareStores over the records of one base SKU
func Compare(records []domain.NormalizedRecord, baseSKU string) []domain.StoreComparison {
	return CompareStores(BucketByStore(records, baseSKU))
}

func compareStore(col *collate.Collator, store string, records []domain.NormalizedRecord) domain.StoreComparison {
	evidence := make([]SizeEvidence, 0, len(records))
	for _, rec := range records {
		evidence = append(evidence, EvidenceOf(rec))
	}
	sort.SliceStable(evidence, func(i, j int) bool {
		return col.CompareString(evidence[i].Size, evidence[j].Size) < 0
	})

	var shortage, low []string
	sizes := make([]domain.SizeStock, 0, len(evidence))
	for _, ev := range evidence {
		sizes = append(sizes, domain.SizeStock{
			Size:       ev.Size,
			SKU:        ev.SKU,
			LocalStock: ev.Local,
			Transit:    ev.Transit,
		})
		switch ev.Level() {
		case domain.StockLevelShortage:
			shortage = append(shortage, ev.Size)
		case domain.StockLevelLow:
			low = append(low, ev.Size)
		}
	}

	status := domain.StockLevelComplete
	switch {
	case len(shortage) > 0:
		status = domain.StockLevelShortage
	case len(low) > 0:
		status = domain.StockLevelLow
	}

	return domain.StoreComparison{
		Store:   store,
		Status:  status,
		Message: comparisonMessage(status, shortage, low),
		Sizes:   sizes,
	}
}

// comparisonMessage renders the template selected by status
func comparisonMessage(status domain.StockLevel, shortage, low []string) string {
	switch status {
	case domain.StockLevelShortage:
		return fmt.Sprintf("shortage on sizes %s", strings.Join(shortage, ", "))
	case domain.StockLevelLow:
		return fmt.Sprintf("low stock on sizes %s", strings.Join(low, ", "))
	default:
		return "all sizes sufficient"
	}
}
