package inventory

import (
	"strings"

	"stockpulse/pkg/contracts/domain"
)

// SweepThreshold is the local stock below which a size qualifies for a DC request
const SweepThreshold = 2

// Qualifies reports whether a record should be requested from the DC:
// low local stock, DC stock available, nothing in transit and a
// replenishment target assigned.
func Qualifies(rec domain.NormalizedRecord) bool {
	return rec.LocalStock.Float() < SweepThreshold &&
		rec.DCStock.Float() > 0 &&
		rec.TransitStock.Float() == 0 &&
		rec.Replenishment.Known
}

// Sweep gathers qualifying records into one request per base SKU and store,
// in scan order. A non-empty store restricts the sweep to records whose
// store name or ID matches it.
func Sweep(records []domain.NormalizedRecord, store string) []domain.ReplenishmentRequest {
	store = strings.TrimSpace(store)
	var wantID string
	if store != "" {
		wantID = SanitizeStoreID(store)
	}

	index := make(map[string]int)
	var out []domain.ReplenishmentRequest
	for _, rec := range records {
		if store != "" && rec.StoreID != wantID && !strings.EqualFold(rec.StoreName, store) {
			continue
		}
		if !Qualifies(rec) {
			continue
		}
		base := BaseSKU(rec.SKU)
		key := base + "@" + rec.StoreID
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, domain.ReplenishmentRequest{
				BaseSKU:     base,
				Store:       rec.StoreName,
				StoreID:     rec.StoreID,
				StoreCode:   rec.StoreCode,
				Description: rec.Description,
				Area:        rec.Area,
			})
		}
		out[i].Sizes = append(out[i].Sizes, rec.Size)
		out[i].SKUs = append(out[i].SKUs, rec.SKU)
	}
	return out
}
