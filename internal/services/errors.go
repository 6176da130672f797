package services

import (
	"errors"

	"stockpulse/internal/files"
	"stockpulse/internal/operations"
)

// Inventory service errors
var (
	// Upload errors
	ErrEmptyUpload       = errors.New("uploaded file is empty")
	ErrUnsupportedFormat = files.ErrUnsupportedFormat

	// Request errors
	ErrInvalidInput = errors.New("invalid input")
	ErrMissingSKU   = errors.New("sku is required")

	// Lookup errors
	ErrProductNotFound = errors.New("product not found")
	ErrJobNotFound     = operations.ErrJobNotFound

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
