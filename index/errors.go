package index

import "errors"

var (
	// ErrInvalidSchema is returned when a schema fails validation.
	ErrInvalidSchema = errors.New("invalid index schema")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the schema's vector dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidTopK is returned when a query requests a non-positive
	// result count.
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrUnknownFilterField is returned when a filter references a field
	// the schema does not declare filterable.
	ErrUnknownFilterField = errors.New("unknown filter field")

	// ErrInvalidFilter is returned for structurally malformed filters.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrSchemaNotEnsured is returned when records are written before
	// EnsureSchema has run.
	ErrSchemaNotEnsured = errors.New("index schema not ensured")
)
