// Package http implements the HTTP handlers of the stockpulse API. Handlers
// stay thin: they parse the multipart upload and query parameters, call a
// service interface and render the result with chi/render. Every failure
// goes through errors.ErrorHandler and is answered as RFC 7807 problem
// details carrying the request's trace_id.
//
// Routes, relative to where the app mounts them:
//
//	POST   /api/inventory/ingest    upload -> records and products (json|csv)
//	POST   /api/inventory/compare   upload + sku -> per-store view
//	POST   /api/inventory/sweep     upload [+ store] -> requests (json|xlsx)
//	POST   /api/jobs                upload -> 202 + Location of an async job
//	GET    /api/jobs                jobs, filtered by status, plus queue stats
//	GET    /api/jobs/{id}           one job with polling hints
//	DELETE /api/jobs/{id}           cancel an unfinished job or remove a finished one
//	GET    /api/health[/ready|/live], /api/version
//
// Uploads carry the inventory under the "file" field and optional product
// and size dictionaries under "products" and "sizes". Ingest parameters
// (mode, convention, suppress_empty, sheet, sku, store, action) are read
// from the query string, falling back to form values.
package http
