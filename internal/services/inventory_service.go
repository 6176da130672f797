package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/files"
	"stockpulse/internal/infrastructure"
	"stockpulse/internal/inventory"
	"stockpulse/internal/operations"
	"stockpulse/pkg/contracts/domain"
)

// Job actions
const (
	ActionIngest  = "ingest"
	ActionCompare = "compare"
	ActionSweep   = "sweep"
)

// IngestParams are the per-request overrides of the configured ingest defaults
type IngestParams struct {
	Action        string `json:"action,omitempty" validate:"omitempty,oneof=ingest compare sweep"`
	Mode          string `json:"mode,omitempty" validate:"omitempty,oneof=grouped breakdown"`
	Convention    string `json:"convention,omitempty" validate:"omitempty,oneof=unknown zero"`
	SuppressEmpty *bool  `json:"suppress_empty,omitempty"`
	Sheet         string `json:"sheet,omitempty" validate:"omitempty,max=31"`
	SKU           string `json:"sku,omitempty" validate:"omitempty,max=64"`
	Store         string `json:"store,omitempty" validate:"omitempty,max=64"`
}

// ParseIngestParams reads params from string values such as query
// parameters or job metadata. Unknown keys are ignored.
func ParseIngestParams(values map[string]string) (IngestParams, error) {
	p := IngestParams{
		Action:     strings.ToLower(strings.TrimSpace(values["action"])),
		Mode:       strings.ToLower(strings.TrimSpace(values["mode"])),
		Convention: strings.ToLower(strings.TrimSpace(values["convention"])),
		Sheet:      strings.TrimSpace(values["sheet"]),
		SKU:        strings.TrimSpace(values["sku"]),
		Store:      strings.TrimSpace(values["store"]),
	}
	if raw := strings.TrimSpace(values["suppress_empty"]); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return IngestParams{}, apperrors.NewAppValidationError(
				fmt.Sprintf("suppress_empty must be a boolean, got %q", raw))
		}
		p.SuppressEmpty = &v
	}
	return p, nil
}

// Values is the inverse of ParseIngestParams
func (p IngestParams) Values() map[string]string {
	out := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("action", p.Action)
	set("mode", p.Mode)
	set("convention", p.Convention)
	set("sheet", p.Sheet)
	set("sku", p.SKU)
	set("store", p.Store)
	if p.SuppressEmpty != nil {
		out["suppress_empty"] = strconv.FormatBool(*p.SuppressEmpty)
	}
	return out
}

// Upload is an inventory file with optional per-request dictionaries
type Upload struct {
	Name     string
	Format   files.Format
	Data     io.Reader
	Products io.Reader
	Sizes    io.Reader
}

// IngestResult is the outcome of one ingest
type IngestResult struct {
	Source  string            `json:"source,omitempty"`
	Options inventory.Options `json:"options"`
	*inventory.Result
}

// JobResult is what an async job stores on completion
type JobResult struct {
	Action     string                        `json:"action"`
	Ingest     *IngestResult                 `json:"ingest,omitempty"`
	Comparison []domain.StoreComparison      `json:"comparison,omitempty"`
	Requests   []domain.ReplenishmentRequest `json:"requests,omitempty"`
}

// InventoryService runs the ingest pipeline for the transport and CLI layers
type InventoryService struct {
	defaults inventory.Options
	products inventory.ProductDictionary
	sizes    inventory.SizeDictionary
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewInventoryService creates the service. products and sizes are the
// default dictionaries, replaced per request when an upload carries its own.
// tracer and metrics may be nil.
func NewInventoryService(defaults inventory.Options, products inventory.ProductDictionary, sizes inventory.SizeDictionary,
	tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *InventoryService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}
	return &InventoryService{
		defaults: defaults,
		products: products,
		sizes:    sizes,
		tracer:   tracer,
		metrics:  metrics,
		validate: validator.New(),
		logger:   infrastructure.WithComponent(logger, "inventory_service"),
	}
}

// Defaults returns the options applied when a request sets none
func (s *InventoryService) Defaults() inventory.Options {
	return s.defaults
}

// Options merges params over the service defaults after validating them
func (s *InventoryService) Options(params IngestParams) (inventory.Options, error) {
	if err := s.validate.Struct(params); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return inventory.Options{}, apperrors.NewAppValidationError(
				fmt.Sprintf("invalid %s: %q", strings.ToLower(fe.Field()), fe.Value())).
				WithContext("field", strings.ToLower(fe.Field()))
		}
		return inventory.Options{}, apperrors.NewAppValidationError(err.Error())
	}

	opts := s.defaults
	if params.Mode != "" {
		opts.Mode = inventory.Mode(params.Mode)
	}
	if params.Convention != "" {
		opts.Convention = inventory.NumericConvention(params.Convention)
	}
	if params.SuppressEmpty != nil {
		opts.SuppressEmpty = *params.SuppressEmpty
	}
	return opts, nil
}

// Ingest runs the pipeline over an in-memory grid
func (s *InventoryService) Ingest(ctx context.Context, grid [][]string, params IngestParams) (*IngestResult, error) {
	return s.ingest(ctx, "", grid, params, s.products, s.sizes)
}

// IngestUpload reads an uploaded grid and optional dictionaries, then ingests it
func (s *InventoryService) IngestUpload(ctx context.Context, up Upload, params IngestParams) (*IngestResult, error) {
	if up.Data == nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "no inventory file uploaded", ErrEmptyUpload)
	}
	format := up.Format
	if format == files.FormatUnknown {
		format = files.DetectFormat(up.Name)
	}
	if format == files.FormatUnknown {
		return nil, apperrors.NewFormatError(fmt.Sprintf("cannot read %q", up.Name), ErrUnsupportedFormat).
			WithContext("file_name", up.Name)
	}

	products, sizes, err := s.dictionaries(up)
	if err != nil {
		return nil, err
	}

	grid, err := files.ReadGrid(up.Data, format, files.LoadOptions{Sheet: params.Sheet})
	if err != nil {
		return nil, s.readError(up.Name, err)
	}
	if len(grid) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "uploaded file has no rows", ErrEmptyUpload).
			WithContext("file_name", up.Name)
	}
	return s.ingest(ctx, up.Name, grid, params, products, sizes)
}

// IngestFile loads a grid from disk and ingests it
func (s *InventoryService) IngestFile(ctx context.Context, path string, params IngestParams) (*IngestResult, error) {
	grid, err := files.LoadGrid(path, files.LoadOptions{Sheet: params.Sheet})
	if err != nil {
		return nil, s.readError(path, err)
	}
	return s.ingest(ctx, path, grid, params, s.products, s.sizes)
}

// Compare builds the per-store view of one product from an ingest result
func (s *InventoryService) Compare(ctx context.Context, result *IngestResult, sku string) ([]domain.StoreComparison, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "sku is required", ErrMissingSKU)
	}
	base := inventory.BaseSKU(sku)

	_, span := s.tracer.Start(ctx, "inventory.compare", trace.WithAttributes(attribute.String("inventory.base_sku", base)))
	defer span.End()

	rows := inventory.Compare(result.Records, base)
	if len(rows) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound, fmt.Sprintf("product %s not found", base), ErrProductNotFound).
			WithContext("base_sku", base)
	}
	span.SetAttributes(attribute.Int("inventory.stores", len(rows)))
	return rows, nil
}

// Sweep lists the sizes to request from the DC, optionally for one store
func (s *InventoryService) Sweep(ctx context.Context, result *IngestResult, store string) []domain.ReplenishmentRequest {
	_, span := s.tracer.Start(ctx, "inventory.sweep", trace.WithAttributes(attribute.String("inventory.store", store)))
	defer span.End()

	requests := inventory.Sweep(result.Records, store)
	span.SetAttributes(attribute.Int("inventory.requests", len(requests)))
	s.logger.DebugContext(ctx, "sweep completed",
		slog.String("store", store),
		slog.Int("requests", len(requests)))
	return requests
}

// IngestJobHandler returns the handler async jobs run with. The job's
// params select the action; compare needs a sku.
func (s *InventoryService) IngestJobHandler() operations.Handler {
	return func(ctx context.Context, job *operations.Job) (interface{}, error) {
		if job.Input == nil || len(job.Input.Data) == 0 {
			return nil, ErrEmptyUpload
		}
		params, err := ParseIngestParams(job.Input.Params)
		if err != nil {
			return nil, err
		}

		up := Upload{Name: job.Input.FileName, Data: bytes.NewReader(job.Input.Data)}
		if len(job.Input.Products) > 0 {
			up.Products = bytes.NewReader(job.Input.Products)
		}
		if len(job.Input.Sizes) > 0 {
			up.Sizes = bytes.NewReader(job.Input.Sizes)
		}

		result, err := s.IngestUpload(ctx, up, params)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out := &JobResult{Action: params.Action}
		switch params.Action {
		case ActionCompare:
			if out.Comparison, err = s.Compare(ctx, result, params.SKU); err != nil {
				return nil, err
			}
		case ActionSweep:
			out.Requests = s.Sweep(ctx, result, params.Store)
		default:
			out.Action = ActionIngest
			out.Ingest = result
		}
		return out, nil
	}
}

func (s *InventoryService) ingest(ctx context.Context, source string, grid [][]string, params IngestParams,
	products inventory.ProductDictionary, sizes inventory.SizeDictionary) (*IngestResult, error) {
	opts, err := s.Options(params)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "inventory.ingest", trace.WithAttributes(
		attribute.String("inventory.source", source),
		attribute.String("inventory.mode", string(opts.Mode)),
		attribute.String("inventory.convention", string(opts.Convention)),
		attribute.Int("inventory.grid_rows", len(grid)),
	))
	defer span.End()

	logger := s.logger
	start := time.Now()

	result, err := inventory.NewPipeline(opts).Run(grid, products, sizes)
	s.recordRun(ctx, opts, result, err, time.Since(start))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		logger.WarnContext(ctx, "inventory ingest rejected",
			slog.String("source", source),
			slog.String("error", err.Error()))
		if errors.Is(err, inventory.ErrStructural) {
			return nil, apperrors.NewStructureError("unrecognized inventory layout", err).
				WithContext("source", source)
		}
		return nil, fmt.Errorf("inventory ingest: %w", err)
	}

	span.SetAttributes(
		attribute.Int("inventory.stores", len(result.Stores)),
		attribute.Int("inventory.records", len(result.Records)),
		attribute.Int("inventory.groups", len(result.Products)),
	)
	logger.InfoContext(ctx, "inventory ingested",
		slog.String("source", source),
		slog.Int("stores", len(result.Stores)),
		slog.Int("rows_scanned", result.Diagnostics.RowsScanned),
		slog.Int("rows_skipped", result.Diagnostics.RowsSkipped),
		slog.Int("cells_defaulted", result.Diagnostics.CellsDefaulted),
		slog.Int("records", len(result.Records)),
		slog.Int("groups", len(result.Products)),
		slog.Duration("duration", time.Since(start)))

	return &IngestResult{Source: source, Options: opts, Result: result}, nil
}

func (s *InventoryService) recordRun(ctx context.Context, opts inventory.Options, result *inventory.Result, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "rejected"
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", string(opts.Mode)),
		attribute.String("outcome", outcome),
	)
	s.metrics.IngestTotal.Add(ctx, 1, attrs)
	s.metrics.IngestDuration.Record(ctx, elapsed.Seconds(), attrs)
	if result == nil {
		return
	}

	modeAttr := metric.WithAttributes(attribute.String("mode", string(opts.Mode)))
	s.metrics.IngestRows.Add(ctx, int64(result.Diagnostics.RowsScanned), modeAttr)
	s.metrics.IngestRowsSkipped.Add(ctx, int64(result.Diagnostics.RowsSkipped), modeAttr)
	s.metrics.IngestCellsDefaulted.Add(ctx, int64(result.Diagnostics.CellsDefaulted), modeAttr)
	s.metrics.IngestRecords.Add(ctx, int64(len(result.Records)), modeAttr)
	s.metrics.IngestGroups.Add(ctx, int64(len(result.Products)), modeAttr)
}

// dictionaries returns the upload's dictionaries, falling back to the defaults
func (s *InventoryService) dictionaries(up Upload) (inventory.ProductDictionary, inventory.SizeDictionary, error) {
	products, sizes := s.products, s.sizes
	if up.Products != nil {
		d, err := files.ReadProductDictionary(up.Products)
		if err != nil {
			return nil, nil, apperrors.NewParsingError("cannot read product dictionary", err)
		}
		products = d
	}
	if up.Sizes != nil {
		d, err := files.ReadSizeDictionary(up.Sizes)
		if err != nil {
			return nil, nil, apperrors.NewParsingError("cannot read size dictionary", err)
		}
		sizes = d
	}
	return products, sizes, nil
}

func (s *InventoryService) readError(name string, err error) error {
	if errors.Is(err, files.ErrUnsupportedFormat) {
		return apperrors.NewFormatError(fmt.Sprintf("cannot read %q", name), err).WithContext("file_name", name)
	}
	return apperrors.NewParsingError(fmt.Sprintf("cannot read %q", name), err).WithContext("file_name", name)
}
