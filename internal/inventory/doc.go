// Package inventory turns wide retail stock exports into typed records and
// classified product families.
//
// A grid starts with three structural rows: store names (one per store
// block), store codes, and column labels. Each following row is one
// product-size variant. The pipeline runs in four steps:
//
//  1. Locator: finds store blocks and fixed columns by header aliases
//  2. Extractor: emits one NormalizedRecord per row and store block
//  3. Aggregator: groups records by base SKU (and store in breakdown mode)
//  4. Classify: assigns a HealthStatus from per-size evidence
//
// Compare and Sweep work on the flat records for per-store views and
// distribution-center requests.
//
// Usage:
//
//	p := inventory.NewPipeline(inventory.DefaultOptions())
//	result, err := p.Run(grid, products, sizes)
//	if errors.Is(err, inventory.ErrStructural) {
//	    // the grid layout is not understood
//	}
//
// Nothing in this package performs I/O or keeps state between runs.
package inventory
