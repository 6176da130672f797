package inventory

import (
	"strings"

	"stockpulse/pkg/contracts/domain"
)

// FallbackProductName names groups with neither a dictionary entry nor a description
const FallbackProductName = "Unnamed product"

// Mode selects how records are grouped
type Mode string

const (
	// ModeGrouped groups by base SKU across all stores
	ModeGrouped Mode = "grouped"
	// ModeBreakdown groups by base SKU and store
	ModeBreakdown Mode = "breakdown"
)

// Valid reports whether m is a supported mode
func (m Mode) Valid() bool {
	return m == ModeGrouped || m == ModeBreakdown
}

// Aggregator groups normalized records into product families
type Aggregator struct {
	products ProductDictionary
	mode     Mode
}

// NewAggregator creates an aggregator. An invalid mode selects ModeGrouped.
func NewAggregator(products ProductDictionary, mode Mode) *Aggregator {
	if !mode.Valid() {
		mode = ModeGrouped
	}
	return &Aggregator{products: products, mode: mode}
}

// GroupKey returns the grouping key of a record under mode
func GroupKey(rec domain.NormalizedRecord, mode Mode) string {
	base := BaseSKU(rec.SKU)
	if mode == ModeBreakdown {
		return base + "@" + rec.StoreID
	}
	return base
}

// groupState accumulates one group while records stream in
type groupState struct {
	product     domain.GroupedProduct
	description string
}

// Aggregate sums records per group, collects size evidence and classifies
// each group. Groups come out in first-seen order.
func (a *Aggregator) Aggregate(records []domain.NormalizedRecord) []domain.GroupedProduct {
	index := make(map[string]*groupState)
	var order []*groupState

	for _, rec := range records {
		key := GroupKey(rec, a.mode)
		g, ok := index[key]
		if !ok {
			g = &groupState{product: domain.GroupedProduct{
				Key:              key,
				BaseSKU:          BaseSKU(rec.SKU),
				ReferenceSKU:     rec.SKU,
				Brand:            rec.Brand,
				Area:             rec.Area,
				Category:         rec.Category,
				InTransitSizes:   []string{},
				RequestableSizes: []string{},
				DeadSizes:        []string{},
			}}
			if a.mode == ModeBreakdown {
				g.product.StoreName = rec.StoreName
			}
			index[key] = g
			order = append(order, g)
		}

		p := &g.product
		p.Variants++
		p.LocalStock += rec.LocalStock.Float()
		p.TransitStock += rec.TransitStock.Float()
		p.DCStock += rec.DCStock.Float()
		p.Sales2W += rec.Sales2W.Float()
		p.Replenishment += rec.Replenishment.Float()
		if g.description == "" {
			g.description = strings.TrimSpace(rec.Description)
		}

		// One entry per record: a size short in two stores is listed twice.
		switch ev := EvidenceOf(rec); ev.Bucket() {
		case BucketInTransit:
			p.InTransitSizes = append(p.InTransitSizes, ev.Size)
		case BucketRequestable:
			p.RequestableSizes = append(p.RequestableSizes, ev.Size)
		case BucketDead:
			p.DeadSizes = append(p.DeadSizes, ev.Size)
		}
	}

	out := make([]domain.GroupedProduct, 0, len(order))
	for _, g := range order {
		p := g.product
		if a.mode == ModeBreakdown && p.LocalStock == 0 && p.TransitStock == 0 {
			continue
		}
		p.Name, p.NameSource = a.resolveName(p.BaseSKU, g.description)
		p.Health = Classify(p.InTransitSizes, p.RequestableSizes, p.DeadSizes)
		out = append(out, p)
	}
	return out
}

func (a *Aggregator) resolveName(baseSKU, description string) (string, domain.NameSource) {
	if name, ok := a.products.Lookup(baseSKU); ok {
		return name, domain.NameSourceDictionary
	}
	if description != "" {
		return description, domain.NameSourceDescription
	}
	return FallbackProductName, domain.NameSourceFallback
}
