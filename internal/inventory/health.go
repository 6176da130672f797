package inventory

import "stockpulse/pkg/contracts/domain"

// LowStockThreshold is the local unit count at or below which a size needs attention
const LowStockThreshold = 1

// Bucket is the supply situation of one size variant at low local stock
type Bucket int

const (
	// BucketNone means local stock is above LowStockThreshold
	BucketNone Bucket = iota
	BucketInTransit
	BucketRequestable
	BucketDead
)

// SizeEvidence is the per-variant fact set both classifiers work from
type SizeEvidence struct {
	Size    string
	SKU     string
	Local   float64
	Transit float64
	DC      float64
}

// EvidenceOf extracts the evidence of one record; unknown metrics count as zero
func EvidenceOf(rec domain.NormalizedRecord) SizeEvidence {
	return SizeEvidence{
		Size:    rec.Size,
		SKU:     rec.SKU,
		Local:   rec.LocalStock.Float(),
		Transit: rec.TransitStock.Float(),
		DC:      rec.DCStock.Float(),
	}
}

// Bucket places a low-stock size in exactly one supply bucket
func (e SizeEvidence) Bucket() Bucket {
	switch {
	case e.Local > LowStockThreshold:
		return BucketNone
	case e.Transit > 0:
		return BucketInTransit
	case e.DC > 0:
		return BucketRequestable
	default:
		return BucketDead
	}
}

// Level is the local-only projection of the evidence used by store comparisons
func (e SizeEvidence) Level() domain.StockLevel {
	if e.Bucket() == BucketNone {
		return domain.StockLevelComplete
	}
	if e.Local <= 0 {
		return domain.StockLevelShortage
	}
	return domain.StockLevelLow
}

// Classify applies the health precedence to a group's size lists:
// in transit, then requestable from DC, then no stock anywhere, else OK.
// An empty list never selects its state.
func Classify(inTransit, requestable, dead []string) domain.HealthStatus {
	switch {
	case len(inTransit) > 0:
		return domain.HealthStatus{
			State:    domain.HealthInTransit,
			Severity: domain.SeverityNotice,
			Action:   domain.ActionAwaitTransit,
			Sizes:    append([]string(nil), inTransit...),
		}
	case len(requestable) > 0:
		return domain.HealthStatus{
			State:    domain.HealthRequestFromDC,
			Severity: domain.SeverityWarning,
			Action:   domain.ActionRequestFromDC,
			Sizes:    append([]string(nil), requestable...),
		}
	case len(dead) > 0:
		return domain.HealthStatus{
			State:    domain.HealthNoStockAnywhere,
			Severity: domain.SeverityCritical,
			Action:   domain.ActionEscalate,
			Sizes:    append([]string(nil), dead...),
		}
	default:
		return domain.HealthStatus{
			State:    domain.HealthStockOK,
			Severity: domain.SeverityOK,
			Action:   domain.ActionNone,
		}
	}
}
