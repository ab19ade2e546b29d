package record

import "context"

// Store is the query interface of the external record store. Implementations
// live under pkg/store; the accessor never assumes anything about table
// shapes beyond what this interface reports.
type Store interface {
	// TableExists reports whether the table is valid and queryable.
	TableExists(ctx context.Context, table string) bool

	// FieldExists reports whether the field is defined on the table schema.
	FieldExists(ctx context.Context, table, field string) bool

	// ListFields returns the ordered field names defined on the table schema.
	ListFields(ctx context.Context, table string) ([]string, error)

	// GetByID fetches a single record by its opaque 32-character key.
	// Returns ErrNotFound when no record has that key.
	GetByID(ctx context.Context, table, sysID string) (Record, error)

	// FindByField fetches the first record whose field equals value.
	// Returns ErrNotFound when nothing matches.
	FindByField(ctx context.Context, table, field, value string) (Record, error)

	// QueryByField returns every record whose field equals value, in the
	// store's natural iteration order. An empty slice means no matches.
	QueryByField(ctx context.Context, table, field, value string) ([]Record, error)
}

// Record is a handle for one fetched record.
type Record interface {
	// SysID returns the record's opaque unique key.
	SysID() string

	// DisplayValue returns the record's overall display string.
	DisplayValue() string

	// Value returns the raw value of a field, "" when unset.
	Value(field string) string

	// FieldDisplay returns the best-effort display string for a field,
	// possibly equal to the raw value.
	FieldDisplay(field string) string
}

// AccessError represents a record access error.
type AccessError struct {
	Message string
}

func (e *AccessError) Error() string {
	return e.Message
}

// Errors
var (
	ErrInvalidArgument = &AccessError{"invalid argument"}
	ErrInvalidTable    = &AccessError{"table is not queryable"}
	ErrInvalidField    = &AccessError{"field not defined on table"}
	ErrNotFound        = &AccessError{"record not found"}
	ErrSerialization   = &AccessError{"serialization failed"}
)
