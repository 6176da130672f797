package domain

// NormalizedRecord is one product-size variant at one store
type NormalizedRecord struct {
	SKU         string `json:"sku"`
	Size        string `json:"size"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	Area        string `json:"area"`
	Category    string `json:"category"`

	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
	StoreCode string `json:"store_code,omitempty"`

	LocalStock    Quantity `json:"local_stock"`
	TransitStock  Quantity `json:"transit_stock"`
	DCStock       Quantity `json:"dc_stock"` // row-global, identical for every store of a row
	Sales2W       Quantity `json:"sales_2w"`
	Replenishment Quantity `json:"replenishment"`
}

// NameSource records where a group's display name came from
type NameSource string

const (
	NameSourceDictionary  NameSource = "dictionary"
	NameSourceDescription NameSource = "description"
	NameSourceFallback    NameSource = "fallback"
)

// GroupedProduct is one product family (base SKU), optionally scoped to a store
type GroupedProduct struct {
	Key          string     `json:"key"`
	BaseSKU      string     `json:"base_sku"`
	StoreName    string     `json:"store_name,omitempty"`
	Name         string     `json:"name"`
	NameSource   NameSource `json:"name_source"`
	ReferenceSKU string     `json:"reference_sku"`
	Brand        string     `json:"brand"`
	Area         string     `json:"area"`
	Category     string     `json:"category"`
	Variants     int        `json:"variants"`

	LocalStock    float64 `json:"local_stock"`
	TransitStock  float64 `json:"transit_stock"`
	DCStock       float64 `json:"dc_stock"`
	Sales2W       float64 `json:"sales_2w"`
	Replenishment float64 `json:"replenishment"`

	InTransitSizes   []string `json:"in_transit_sizes"`
	RequestableSizes []string `json:"requestable_sizes"`
	DeadSizes        []string `json:"dead_sizes"`

	Health HealthStatus `json:"health"`
}

// StoreBlock is a contiguous column range holding one store's metrics
type StoreBlock struct {
	DisplayName string `json:"display_name"`
	ID          string `json:"id"`
	Code        string `json:"code,omitempty"`
	StartColumn int    `json:"start_column"`
	EndColumn   int    `json:"end_column"`

	// Column indexes within the grid, -1 when the block has no such column
	LocalColumn         int `json:"local_column"`
	TransitColumn       int `json:"transit_column"`
	SalesColumn         int `json:"sales_column"`
	ReplenishmentColumn int `json:"replenishment_column"`
}

// ReplenishmentRequest lists the sizes of one product family that a store
// should request from the distribution center.
type ReplenishmentRequest struct {
	BaseSKU     string   `json:"base_sku"`
	Store       string   `json:"store"`
	StoreID     string   `json:"store_id"`
	StoreCode   string   `json:"store_code,omitempty"`
	Description string   `json:"description"`
	Area        string   `json:"area"`
	Sizes       []string `json:"sizes"`
	SKUs        []string `json:"skus"`
}
