package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("allergen name already exists for this owner")
	ErrExtractionFailed    = errors.New("text extraction failed")
	ErrGatewayUnavailable  = errors.New("reasoning gateway unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
