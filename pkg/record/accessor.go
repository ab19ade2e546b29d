// Package record implements a read-only facade over an external tabular
// record store. Records are addressed by table name plus either an opaque
// 32-character key or a human-readable business key, and are returned as
// flattened field -> {value, display_value} snapshots.
//
// Every public lookup is fail-soft: validation failures, missing records
// and store faults all come back as an absent/empty result with a leveled
// log entry, never as an error. Only the log stream distinguishes "invalid
// input" from "legitimately no data".
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Well-known field names on the external store.
const (
	// NumberField is the business-key field used to resolve human-readable
	// identifiers (e.g. "INC0010042").
	NumberField = "number"

	// ShortTextField is the conventional one-line description field.
	ShortTextField = "short_description"
)

// Fixed table/field pair for the user-interaction convenience lookups.
const (
	interactionTable = "interaction"
	openedForField   = "opened_for"
	userTable        = "sys_user"
	userNameField    = "user_name"
)

// Fixed literals returned by the AsText variants when there is nothing to
// serialize or serialization fails.
const (
	emptyObjectText = "{}"
	emptyListText   = "[]"
)

// sysIDLength is the fixed length of opaque keys. Any identifier of exactly
// this length is treated as a sys_id, even if it happens to be a business
// key; there is deliberately no fallback lookup.
const sysIDLength = 32

// RecordAccessor resolves identifiers against a Store and produces
// FlattenedRecord snapshots. It is stateless and safe for concurrent use.
type RecordAccessor struct {
	store  Store
	logger *zap.Logger

	// IsSysID classifies an identifier as an opaque key. The default is the
	// fixed-length check; callers with 32-character business keys may
	// replace it before first use.
	IsSysID func(identifier string) bool
}

// NewRecordAccessor creates an accessor over the given store.
func NewRecordAccessor(store Store, logger *zap.Logger) *RecordAccessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordAccessor{
		store:  store,
		logger: logger,
		IsSysID: func(identifier string) bool {
			return len(identifier) == sysIDLength
		},
	}
}

// Resolve looks up a single record. Identifiers of exactly 32 characters are
// treated as opaque keys; anything else is matched against the table's
// number field. Returns ErrInvalidArgument, ErrInvalidTable or ErrNotFound;
// store faults are returned wrapped.
func (a *RecordAccessor) Resolve(ctx context.Context, table, identifier string) (Record, error) {
	if table == "" {
		return nil, fmt.Errorf("table name: %w", ErrInvalidArgument)
	}
	if identifier == "" {
		return nil, fmt.Errorf("identifier: %w", ErrInvalidArgument)
	}
	if !a.store.TableExists(ctx, table) {
		return nil, fmt.Errorf("table %q: %w", table, ErrInvalidTable)
	}

	if a.IsSysID(identifier) {
		a.logger.Debug("resolving by sys_id",
			zap.String("table", table),
			zap.String("sys_id", identifier))
		return a.store.GetByID(ctx, table, identifier)
	}

	a.logger.Debug("resolving by business key",
		zap.String("table", table),
		zap.String("field", NumberField),
		zap.String("value", identifier))
	return a.store.FindByField(ctx, table, NumberField, identifier)
}

// GetFields returns the flattened snapshot of one record, or nil when the
// record cannot be resolved for any reason.
func (a *RecordAccessor) GetFields(ctx context.Context, table, identifier string, excludeEmpty bool) *FlattenedRecord {
	rec, err := a.Resolve(ctx, table, identifier)
	if err != nil {
		a.logFailure("get fields", table, identifier, err)
		return nil
	}

	fields, err := a.store.ListFields(ctx, table)
	if err != nil {
		a.logFailure("get fields", table, identifier, err)
		return nil
	}

	return flatten(rec, fields, excludeEmpty)
}

// GetFieldsCompact is GetFields with empty fields omitted.
func (a *RecordAccessor) GetFieldsCompact(ctx context.Context, table, identifier string) *FlattenedRecord {
	return a.GetFields(ctx, table, identifier, true)
}

// GetShortText returns the raw short_description of one record. The schema
// check runs before resolution: tables without the field fail immediately.
func (a *RecordAccessor) GetShortText(ctx context.Context, table, identifier string) (string, bool) {
	if table == "" || identifier == "" {
		a.logFailure("get short text", table, identifier, ErrInvalidArgument)
		return "", false
	}
	if !a.store.TableExists(ctx, table) {
		a.logFailure("get short text", table, identifier, fmt.Errorf("table %q: %w", table, ErrInvalidTable))
		return "", false
	}
	if !a.store.FieldExists(ctx, table, ShortTextField) {
		a.logFailure("get short text", table, identifier,
			fmt.Errorf("field %q on table %q: %w", ShortTextField, table, ErrInvalidField))
		return "", false
	}

	rec, err := a.Resolve(ctx, table, identifier)
	if err != nil {
		a.logFailure("get short text", table, identifier, err)
		return "", false
	}
	return rec.Value(ShortTextField), true
}

// FindReferencing returns one snapshot per record in table whose
// referenceField holds the target's opaque key. The target may be given as
// a sys_id, or as a business key together with targetTable to resolve it
// against. Any validation or resolution failure yields an empty slice.
func (a *RecordAccessor) FindReferencing(ctx context.Context, table, referenceField, targetIdentifier, targetTable string, excludeEmpty bool) []*FlattenedRecord {
	if table == "" || targetIdentifier == "" {
		a.logFailure("find referencing", table, targetIdentifier, ErrInvalidArgument)
		return []*FlattenedRecord{}
	}
	if !a.store.TableExists(ctx, table) {
		a.logFailure("find referencing", table, targetIdentifier, fmt.Errorf("table %q: %w", table, ErrInvalidTable))
		return []*FlattenedRecord{}
	}
	if referenceField == "" || !a.store.FieldExists(ctx, table, referenceField) {
		a.logFailure("find referencing", table, targetIdentifier,
			fmt.Errorf("reference field %q on table %q: %w", referenceField, table, ErrInvalidField))
		return []*FlattenedRecord{}
	}

	targetID := targetIdentifier
	if !a.IsSysID(targetIdentifier) {
		// A business key cannot be matched against a reference field
		// directly; it has to be resolved to an opaque key first, which
		// requires knowing which table it belongs to.
		if targetTable == "" {
			a.logFailure("find referencing", table, targetIdentifier,
				fmt.Errorf("target table required for business key: %w", ErrInvalidArgument))
			return []*FlattenedRecord{}
		}
		target, err := a.Resolve(ctx, targetTable, targetIdentifier)
		if err != nil {
			a.logger.Warn("target record did not resolve",
				zap.String("target_table", targetTable),
				zap.String("target", targetIdentifier),
				zap.Error(err))
			return []*FlattenedRecord{}
		}
		targetID = target.SysID()
	}

	return a.queryReferencing(ctx, table, referenceField, targetID, excludeEmpty)
}

// InteractionsForUser returns every interaction record opened for the given
// user. The user may be identified by sys_id or by user name.
func (a *RecordAccessor) InteractionsForUser(ctx context.Context, userIdentifier string, excludeEmpty bool) []*FlattenedRecord {
	if userIdentifier == "" {
		a.logFailure("interactions for user", interactionTable, userIdentifier, ErrInvalidArgument)
		return []*FlattenedRecord{}
	}
	if !a.store.TableExists(ctx, interactionTable) {
		a.logFailure("interactions for user", interactionTable, userIdentifier,
			fmt.Errorf("table %q: %w", interactionTable, ErrInvalidTable))
		return []*FlattenedRecord{}
	}

	userID := userIdentifier
	if !a.IsSysID(userIdentifier) {
		user, err := a.store.FindByField(ctx, userTable, userNameField, userIdentifier)
		if err != nil {
			a.logger.Warn("user did not resolve",
				zap.String("user_name", userIdentifier),
				zap.Error(err))
			return []*FlattenedRecord{}
		}
		userID = user.SysID()
	}

	return a.queryReferencing(ctx, interactionTable, openedForField, userID, excludeEmpty)
}

// queryReferencing runs the equality query and flattens each match. The
// result order is whatever the store iterates in; no sort is applied.
func (a *RecordAccessor) queryReferencing(ctx context.Context, table, field, sysID string, excludeEmpty bool) []*FlattenedRecord {
	a.logger.Debug("querying references",
		zap.String("table", table),
		zap.String("field", field),
		zap.String("sys_id", sysID))

	matches, err := a.store.QueryByField(ctx, table, field, sysID)
	if err != nil {
		a.logFailure("query referencing", table, sysID, err)
		return []*FlattenedRecord{}
	}

	fields, err := a.store.ListFields(ctx, table)
	if err != nil {
		a.logFailure("query referencing", table, sysID, err)
		return []*FlattenedRecord{}
	}

	out := make([]*FlattenedRecord, 0, len(matches))
	for _, rec := range matches {
		out = append(out, flatten(rec, fields, excludeEmpty))
	}
	return out
}

// GetFieldsAsText serializes GetFields to canonical JSON. Absent records and
// encoding failures both come back as "{}".
func (a *RecordAccessor) GetFieldsAsText(ctx context.Context, table, identifier string, excludeEmpty bool) string {
	rec := a.GetFields(ctx, table, identifier, excludeEmpty)
	if rec == nil {
		return emptyObjectText
	}
	return a.encodeObject(rec)
}

// GetFieldsCompactAsText is GetFieldsAsText with empty fields omitted.
func (a *RecordAccessor) GetFieldsCompactAsText(ctx context.Context, table, identifier string) string {
	return a.GetFieldsAsText(ctx, table, identifier, true)
}

// GetShortTextAsText serializes GetShortText as a JSON string, "{}" when
// absent.
func (a *RecordAccessor) GetShortTextAsText(ctx context.Context, table, identifier string) string {
	text, ok := a.GetShortText(ctx, table, identifier)
	if !ok {
		return emptyObjectText
	}
	data, err := json.Marshal(text)
	if err != nil {
		a.logger.Error("serializing short text failed",
			zap.String("table", table),
			zap.Error(fmt.Errorf("%w: %v", ErrSerialization, err)))
		return emptyObjectText
	}
	return string(data)
}

// FindReferencingAsText serializes FindReferencing to a JSON array, "[]" on
// encoding failure.
func (a *RecordAccessor) FindReferencingAsText(ctx context.Context, table, referenceField, targetIdentifier, targetTable string, excludeEmpty bool) string {
	return a.encodeList(a.FindReferencing(ctx, table, referenceField, targetIdentifier, targetTable, excludeEmpty))
}

// InteractionsForUserAsText serializes InteractionsForUser to a JSON array.
func (a *RecordAccessor) InteractionsForUserAsText(ctx context.Context, userIdentifier string, excludeEmpty bool) string {
	return a.encodeList(a.InteractionsForUser(ctx, userIdentifier, excludeEmpty))
}

func (a *RecordAccessor) encodeObject(rec *FlattenedRecord) string {
	data, err := json.Marshal(rec)
	if err != nil {
		a.logger.Error("serializing record failed",
			zap.String("sys_id", rec.SysID),
			zap.Error(fmt.Errorf("%w: %v", ErrSerialization, err)))
		return emptyObjectText
	}
	return string(data)
}

func (a *RecordAccessor) encodeList(recs []*FlattenedRecord) string {
	data, err := json.Marshal(recs)
	if err != nil {
		a.logger.Error("serializing record list failed",
			zap.Error(fmt.Errorf("%w: %v", ErrSerialization, err)))
		return emptyListText
	}
	return string(data)
}

// logFailure maps the error taxonomy onto log severities: warn for invalid
// input, table or field, info for not-found, error for anything unexpected
// out of the store.
func (a *RecordAccessor) logFailure(op, table, identifier string, err error) {
	fields := []zap.Field{
		zap.String("table", table),
		zap.String("identifier", identifier),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, ErrNotFound):
		a.logger.Info(op+": no matching record", fields...)
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidTable), errors.Is(err, ErrInvalidField):
		a.logger.Warn(op+": rejected", fields...)
	default:
		a.logger.Error(op+": store failure", fields...)
	}
}
