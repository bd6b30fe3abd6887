package entity

import "errors"

// Domain errors
var (
	// Ranking errors
	ErrNoData      = errors.New("no data available")
	ErrNoMeasure   = errors.New("no numeric measure detected")
	ErrNoRows      = errors.New("no rows to rank")
	ErrNoWorksheet = errors.New("no matching worksheet found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session is processing another query")
	ErrNoAdapter       = errors.New("no adapter available")
	ErrNoResult        = errors.New("no chart result available")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Validation errors
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
