package app

import (
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"stockpulse/internal/config"
	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/files"
	"stockpulse/internal/infrastructure"
	"stockpulse/internal/inventory"
	"stockpulse/internal/services"
)

// IngestDefaults converts the ingest configuration into pipeline options
func IngestDefaults(cfg config.IngestConfig) inventory.Options {
	opts := inventory.DefaultOptions()
	if c := inventory.NumericConvention(strings.ToLower(cfg.Convention)); c.Valid() {
		opts.Convention = c
	}
	if m := inventory.Mode(strings.ToLower(cfg.Mode)); m.Valid() {
		opts.Mode = m
	}
	opts.SuppressEmpty = cfg.SuppressEmpty
	return opts
}

// LoadDictionaries reads the configured product and size dictionaries.
// Unset paths yield nil dictionaries.
func LoadDictionaries(cfg config.IngestConfig, logger *slog.Logger) (inventory.ProductDictionary, inventory.SizeDictionary, error) {
	var (
		products inventory.ProductDictionary
		sizes    inventory.SizeDictionary
		err      error
	)

	if cfg.ProductsFile != "" {
		if products, err = files.LoadProductDictionary(cfg.ProductsFile); err != nil {
			return nil, nil, apperrors.NewConfigError("failed to load product dictionary", err).
				WithContext("path", cfg.ProductsFile)
		}
		logger.Info("product dictionary loaded",
			slog.String("path", cfg.ProductsFile),
			slog.Int("entries", len(products)))
	}

	if cfg.SizesFile != "" {
		if sizes, err = files.LoadSizeDictionary(cfg.SizesFile); err != nil {
			return nil, nil, apperrors.NewConfigError("failed to load size dictionary", err).
				WithContext("path", cfg.SizesFile)
		}
		logger.Info("size dictionary loaded",
			slog.String("path", cfg.SizesFile),
			slog.Int("entries", len(sizes)))
	}

	return products, sizes, nil
}

// NewInventoryService builds the inventory service from configuration.
// tracer and metrics may be nil.
func NewInventoryService(cfg *config.Config, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*services.InventoryService, error) {
	products, sizes, err := LoadDictionaries(cfg.Ingest, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionaries: %w", err)
	}
	return services.NewInventoryService(IngestDefaults(cfg.Ingest), products, sizes, tracer, metrics, logger), nil
}
