package api

import (
	"context"

	"flatrec/pkg/record"
)

// RecordService is the accessor surface the HTTP layer depends on. All
// methods are fail-soft: absent/empty results, never errors.
type RecordService interface {
	// GetFields returns the flattened snapshot of one record or nil.
	GetFields(ctx context.Context, table, identifier string, excludeEmpty bool) *record.FlattenedRecord

	// GetShortText returns the record's short_description raw value.
	GetShortText(ctx context.Context, table, identifier string) (string, bool)

	// FindReferencing returns every record whose referenceField holds the
	// target's opaque key.
	FindReferencing(ctx context.Context, table, referenceField, targetIdentifier, targetTable string, excludeEmpty bool) []*record.FlattenedRecord

	// InteractionsForUser returns every interaction opened for the user.
	InteractionsForUser(ctx context.Context, userIdentifier string, excludeEmpty bool) []*record.FlattenedRecord
}
