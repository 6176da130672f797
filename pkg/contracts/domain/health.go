package domain

// HealthState is the inventory-health classification of a product family
type HealthState string

const (
	HealthInTransit       HealthState = "in_transit"
	HealthRequestFromDC   HealthState = "request_from_dc"
	HealthNoStockAnywhere HealthState = "no_stock_anywhere"
	HealthStockOK         HealthState = "stock_ok"
)

// Severity marks how urgently a health state needs attention
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityNotice   Severity = "notice"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Action is the replenishment step recommended for a health state
type Action string

const (
	ActionNone          Action = "none"
	ActionAwaitTransit  Action = "await_transit"
	ActionRequestFromDC Action = "request_from_dc"
	ActionEscalate      Action = "escalate"
)

// HealthStatus carries a state and the sizes that justify it.
// Sizes is empty only for HealthStockOK.
type HealthStatus struct {
	State    HealthState `json:"state"`
	Severity Severity    `json:"severity"`
	Action   Action      `json:"action"`
	Sizes    []string    `json:"sizes,omitempty"`
}

// StockLevel is the local-only status used in per-store comparisons
type StockLevel string

const (
	StockLevelShortage StockLevel = "shortage"
	StockLevelLow      StockLevel = "low"
	StockLevelComplete StockLevel = "complete"
)

// SizeStock is the local stock of one size at one store
type SizeStock struct {
	Size       string  `json:"size"`
	SKU        string  `json:"sku"`
	LocalStock float64 `json:"local_stock"`
	Transit    float64 `json:"transit_stock"`
}

// StoreComparison summarizes one store's stock of a product family
type StoreComparison struct {
	Store   string      `json:"store"`
	Status  StockLevel  `json:"status"`
	Message string      `json:"message"`
	Sizes   []SizeStock `json:"sizes"`
}
