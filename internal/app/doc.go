// Package app assembles the stockpulse HTTP service.
//
// NewApplication loads the configured dictionaries, initializes
// OpenTelemetry, builds the inventory service and the ingest job queue, and
// mounts the API on a chi router:
//
//	GET    /api/health[/ready|/live]
//	GET    /api/version
//	POST   /api/inventory/{ingest,compare,sweep}
//	POST   /api/jobs, GET /api/jobs[/{id}], DELETE /api/jobs/{id}
//	GET    /metrics
//
// Start listens on the configured port, starts the job workers and a
// janitor that drops finished jobs after an hour. Stop drains all of them.
//
//	app, err := app.NewApplication(cfg, logger)
//	if err != nil {
//		return err
//	}
//	return app.Run()
package app
