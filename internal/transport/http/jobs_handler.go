package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/middleware"
	"stockpulse/internal/operations"
	"stockpulse/internal/services"
)

// pollInterval is suggested to clients waiting on an unfinished job
const pollInterval = "2s"

// JobsHandler accepts uploads for background ingest and reports job state
type JobsHandler struct {
	service      JobServiceInterface
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	tracer       trace.Tracer
	maxMemory    int64
	logger       *slog.Logger
}

// NewJobsHandler creates a jobs handler. tracer may be nil.
func NewJobsHandler(service JobServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, tracer trace.Tracer, logger *slog.Logger) *JobsHandler {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("jobs-handler")
	}
	return &JobsHandler{
		service:      service,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		tracer:       tracer,
		maxMemory:    defaultMaxMemory,
		logger:       logger.With(slog.String("handler", "jobs")),
	}
}

// Routes returns the job routes, mounted at /api/jobs
func (h *JobsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).Post("/", h.CreateJob)
	r.Get("/", h.ListJobs)
	r.Get("/{id}", h.GetJob)
	r.Delete("/{id}", h.DeleteJob)
	return r
}

// JobResponse is a job plus polling hints
type JobResponse struct {
	*operations.Job
	IsComplete bool   `json:"is_complete"`
	PollAfter  string `json:"poll_after,omitempty"`
	Duration   string `json:"duration,omitempty"`
}

func newJobResponse(job *operations.Job) JobResponse {
	resp := JobResponse{Job: job, IsComplete: job.Status.Finished()}
	if !resp.IsComplete {
		resp.PollAfter = pollInterval
	}
	if job.StartedAt != nil && job.CompletedAt != nil {
		resp.Duration = job.CompletedAt.Sub(*job.StartedAt).String()
	}
	return resp
}

// CreateJob handles POST /api/jobs. The upload is read into memory and
// the job answers 202 with its location.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "jobs_handler.create_job",
		trace.WithAttributes(attribute.String("http.route", "/api/jobs")))
	defer span.End()
	r = r.WithContext(ctx)

	up, err := parseUpload(r, h.maxMemory, h.validator)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	defer up.Close()

	if up.params.Action == services.ActionCompare && up.params.SKU == "" {
		h.fail(w, r, span, apierrors.ErrValidation("sku", "sku is required for compare jobs"))
		return
	}

	input := &operations.JobInput{
		FileName: up.Name,
		Size:     up.size,
		Params:   up.params.Values(),
	}
	if input.Data, err = up.readBytes(up.Data); err == nil {
		if input.Products, err = up.readBytes(up.Products); err == nil {
			input.Sizes, err = up.readBytes(up.Sizes)
		}
	}
	if err != nil {
		h.fail(w, r, span, apierrors.InvalidRequestWithError(err))
		return
	}

	job := &operations.Job{ID: uuid.New().String(), Input: input}
	if err := h.service.Enqueue(ctx, job); err != nil {
		h.fail(w, r, span, mapJobError(err))
		return
	}

	span.SetAttributes(attribute.String("job.id", job.ID), attribute.Int64("job.size", input.Size))
	h.logger.InfoContext(ctx, "ingest job created",
		slog.String("job_id", job.ID),
		slog.String("file_name", input.FileName),
		slog.Int64("size", input.Size))

	w.Header().Set("Location", "/api/jobs/"+job.ID)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, newJobResponse(job))
}

// ListJobs handles GET /api/jobs?status=&limit=
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	statuses := []string{
		string(operations.JobStatusPending), string(operations.JobStatusRunning),
		string(operations.JobStatusCompleted), string(operations.JobStatusFailed),
		string(operations.JobStatusCancelled),
	}
	status, ok := h.query.ValidateEnum(w, r, "status", statuses, "")
	if !ok {
		return
	}
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, 1000, 50)
	if !ok {
		return
	}

	jobs, err := h.service.ListJobs(operations.JobFilter{Status: operations.JobStatus(status), Limit: limit})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	list := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		job.Result = nil
		list = append(list, newJobResponse(job))
	}

	render.JSON(w, r, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
		"stats": h.service.GetQueueStats(),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapJobError(err))
		return
	}
	render.JSON(w, r, newJobResponse(job))
}

// DeleteJob handles DELETE /api/jobs/{id}. Unfinished jobs are cancelled
// (202); finished jobs are removed (204).
func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.service.GetJob(id)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapJobError(err))
		return
	}
	finished := job.Status.Finished()

	if err := h.service.RemoveJob(id); err != nil {
		h.errorHandler.HandleError(w, r, mapJobError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "job removed",
		slog.String("job_id", id),
		slog.Bool("cancelled", !finished))

	if finished {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"id": id, "status": "cancelling"})
}

func (h *JobsHandler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	h.errorHandler.HandleError(w, r, err)
}

// mapJobError converts job queue errors to API errors
func mapJobError(err error) error {
	switch {
	case errors.Is(err, operations.ErrJobNotFound):
		return apierrors.ErrJobNotFound
	case errors.Is(err, operations.ErrQueueFull):
		return apierrors.ErrQueueFull
	case errors.Is(err, operations.ErrQueueStopped):
		return apierrors.ErrServiceUnavailable
	case errors.Is(err, operations.ErrJobFinished):
		return apierrors.NewWithDetails(http.StatusConflict, "CONFLICT", "Job already finished", err.Error())
	default:
		return err
	}
}
