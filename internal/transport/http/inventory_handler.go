package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/exporter"
	"stockpulse/internal/infrastructure"
	"stockpulse/internal/middleware"
	"stockpulse/internal/services"
	"stockpulse/pkg/contracts/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// InventoryHandler runs synchronous ingests over uploaded spreadsheets
type InventoryHandler struct {
	service      InventoryServiceInterface
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	maxMemory    int64
	logger       *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service InventoryServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:      service,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		maxMemory:    defaultMaxMemory,
		logger:       logger.With(slog.String("component", "inventory_handler")),
	}
}

// Routes returns the inventory routes, mounted at /api/inventory
func (h *InventoryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

	r.Post("/ingest", h.Ingest)
	r.Post("/compare", h.Compare)
	r.Post("/sweep", h.Sweep)
	return r
}

// Ingest handles POST /api/inventory/ingest. format=csv streams the
// products (or records with view=records) as a CSV attachment.
func (h *InventoryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{"json", "csv"}, "json")
	if !ok {
		return
	}
	view, ok := h.query.ValidateEnum(w, r, "view", []string{"products", "records"}, "products")
	if !ok {
		return
	}

	result, _, ok := h.ingest(w, r, nil)
	if !ok {
		return
	}

	if format == "csv" {
		headers, rows := exporter.ProductHeaders, exporter.ProductRows(result.Products)
		if view == "records" {
			headers, rows = exporter.RecordHeaders, exporter.RecordRows(result.Records)
		}
		h.writeCSV(w, r, attachmentName(result.Source, view, "csv"), headers, rows)
		return
	}

	render.JSON(w, r, result)
}

// CompareResponse is the per-store view of one product
type CompareResponse struct {
	SKU    string                   `json:"sku"`
	Source string                   `json:"source,omitempty"`
	Stores []domain.StoreComparison `json:"stores"`
}

// Compare handles POST /api/inventory/compare?sku=...
func (h *InventoryHandler) Compare(w http.ResponseWriter, r *http.Request) {
	requireSKU := func(p services.IngestParams) error {
		if p.SKU == "" {
			return apierrors.ErrValidation("sku", "sku is required")
		}
		return nil
	}
	result, params, ok := h.ingest(w, r, requireSKU)
	if !ok {
		return
	}

	stores, err := h.service.Compare(r.Context(), result, params.SKU)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, CompareResponse{SKU: params.SKU, Source: result.Source, Stores: stores})
}

// SweepResponse lists the sizes to request from the distribution center
type SweepResponse struct {
	Store    string                        `json:"store,omitempty"`
	Source   string                        `json:"source,omitempty"`
	Count    int                           `json:"count"`
	Requests []domain.ReplenishmentRequest `json:"requests"`
}

// Sweep handles POST /api/inventory/sweep. format=xlsx returns the
// request workbook as an attachment.
func (h *InventoryHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{"json", "xlsx"}, "json")
	if !ok {
		return
	}

	result, params, ok := h.ingest(w, r, nil)
	if !ok {
		return
	}

	store := params.Store
	requests := h.service.Sweep(r.Context(), result, store)

	if format == "xlsx" {
		w.Header().Set("Content-Type", contentTypeXLSX)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName(result.Source, "requests", "xlsx")))
		if err := exporter.WriteRequestWorkbook(w, requests, result.Records); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to write request workbook",
				slog.String("error", err.Error()),
				slog.String("trace_id", infrastructure.GetTraceID(r.Context())))
		}
		return
	}

	if requests == nil {
		requests = []domain.ReplenishmentRequest{}
	}
	render.JSON(w, r, SweepResponse{Store: store, Source: result.Source, Count: len(requests), Requests: requests})
}

// ingest parses the upload, applies check to its parameters and runs the
// pipeline. On failure it writes the error response itself.
func (h *InventoryHandler) ingest(w http.ResponseWriter, r *http.Request, check func(services.IngestParams) error) (*services.IngestResult, services.IngestParams, bool) {
	ctx := r.Context()
	start := time.Now()

	up, err := parseUpload(r, h.maxMemory, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, services.IngestParams{}, false
	}
	defer up.Close()

	if check != nil {
		if err := check(up.params); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return nil, up.params, false
		}
	}

	result, err := h.service.IngestUpload(ctx, up.Upload, up.params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, up.params, false
	}

	h.logger.InfoContext(ctx, "upload ingested",
		slog.String("file_name", up.Name),
		slog.Int64("size", up.size),
		slog.Int("records", len(result.Records)),
		slog.Int("products", len(result.Products)),
		slog.Duration("duration", time.Since(start)))
	return result, up.params, true
}

func (h *InventoryHandler) writeCSV(w http.ResponseWriter, r *http.Request, name string, headers []string, rows [][]string) {
	w.Header().Set("Content-Type", contentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	err := exporter.WriteTo(w, exporter.WriteOptions{Headers: headers, Records: rows, BOMPrefix: true})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write csv",
			slog.String("error", err.Error()),
			slog.String("trace_id", infrastructure.GetTraceID(r.Context())))
	}
}

// attachmentName derives a download name from the uploaded file name
func attachmentName(source, suffix, ext string) string {
	base := source
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "inventory"
	}
	return fmt.Sprintf("%s-%s.%s", base, suffix, ext)
}
