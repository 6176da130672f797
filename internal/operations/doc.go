// Package operations runs inventory ingest jobs in the background.
//
// A JobQueue owns a fixed pool of workers fed from a buffered channel. Each
// Job carries the uploaded grid and its query parameters; the queue hands it
// to a Handler, records the outcome in a JobStore and releases the uploaded
// bytes once the job finishes. MemoryJobStore keeps jobs in memory and
// evicts the oldest finished job when full.
//
// Example usage:
//
//	store := operations.NewMemoryJobStore(100)
//	queue := operations.NewJobQueue(2, 16, store, service.IngestJobHandler(), metrics, logger)
//	queue.Start(ctx)
//	defer queue.Stop(30 * time.Second)
//
//	err := queue.Enqueue(ctx, &operations.Job{Input: &operations.JobInput{
//		FileName: "stock.xlsx",
//		Data:     body,
//	}})
package operations
