package unitconv

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownUnit     = errors.New("unknown unit")
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrUnknownRule     = errors.New("unknown conversion rule")
)
