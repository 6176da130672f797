// Package services implements the application layer between the HTTP and
// CLI front ends and the inventory pipeline.
//
// InventoryService reads uploads and files, merges per-request parameters
// over the configured defaults, runs the pipeline inside a trace span and
// records ingest metrics. Failures come back as *errors.AppError values so
// the transport layer can map them to problem responses:
//
//	STRUCTURE   the header rows could not be mapped (422)
//	FORMAT      the upload is neither xlsx nor csv (415)
//	PARSING     the file or a dictionary could not be read (422)
//	VALIDATION  a parameter is out of range (400)
//	NOT_FOUND   a compared product has no records (404)
//
// IngestJobHandler adapts the service to operations.JobQueue so large
// uploads can be processed in the background.
//
// Example usage:
//
//	svc := services.NewInventoryService(inventory.DefaultOptions(), products, sizes, tracer, metrics, logger)
//	result, err := svc.IngestFile(ctx, "stock.xlsx", services.IngestParams{Mode: "breakdown"})
//	if err != nil {
//		return err
//	}
//	requests := svc.Sweep(ctx, result, "Norte")
//
// HealthService reports liveness, readiness and version information.
package services
