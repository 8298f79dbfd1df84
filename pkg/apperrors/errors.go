package apperrors

import "errors"

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMappingShape  = errors.New("barcode mapping needs at least two columns")
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrUnsupported   = errors.New("unsupported file format")
)
