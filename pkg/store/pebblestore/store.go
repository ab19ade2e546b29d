// Package pebblestore implements the record.Store query interface on top of
// a local pebble database. Tables are key prefixes: each table keeps one
// schema document plus one JSON document per record, keyed by sys_id.
//
// Layout:
//
//	t!<table>!s            -> {"fields": [...], "display_field": "..."}
//	t!<table>!r!<sys_id>   -> {"<field>": {"value": "...", "display_value": "..."}, ...}
package pebblestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"flatrec/pkg/record"
)

// Config holds configuration for the pebble-backed store.
type Config struct {
	DataDir string // Directory for the pebble database
}

// Store is a pebble-backed record store. All read methods satisfy
// record.Store; the write methods exist for seeding and fixtures.
type Store struct {
	db     *pebble.DB
	logger *zap.Logger
}

type tableSchema struct {
	Fields       []string `json:"fields"`
	DisplayField string   `json:"display_field"`
}

type fieldDoc struct {
	Value   string `json:"value"`
	Display string `json:"display_value,omitempty"`
}

// Open opens (or creates) the database under cfg.DataDir.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := pebble.Open(cfg.DataDir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble db: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func schemaKey(table string) []byte {
	return []byte("t!" + table + "!s")
}

func recordKey(table, sysID string) []byte {
	return []byte("t!" + table + "!r!" + sysID)
}

func recordPrefix(table string) []byte {
	return []byte("t!" + table + "!r!")
}

// keyUpperBound returns the smallest key greater than every key with the
// given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// CreateTable registers a table schema. The sys_id field is always part of
// the schema even when the caller leaves it out. displayField names the
// field whose display value labels whole records; it defaults to the first
// non-sys_id field.
func (s *Store) CreateTable(table string, fields []string, displayField string) error {
	if table == "" || strings.Contains(table, "!") {
		return fmt.Errorf("invalid table name %q", table)
	}
	if len(fields) == 0 {
		return fmt.Errorf("table %q needs at least one field", table)
	}

	schema := tableSchema{DisplayField: displayField}
	hasSysID := false
	for _, f := range fields {
		if f == record.SysIDField {
			hasSysID = true
		}
	}
	if !hasSysID {
		schema.Fields = append(schema.Fields, record.SysIDField)
	}
	schema.Fields = append(schema.Fields, fields...)
	if schema.DisplayField == "" {
		for _, f := range schema.Fields {
			if f != record.SysIDField {
				schema.DisplayField = f
				break
			}
		}
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode schema for %q: %w", table, err)
	}
	if err := s.db.Set(schemaKey(table), data, pebble.Sync); err != nil {
		return fmt.Errorf("write schema for %q: %w", table, err)
	}
	s.logger.Debug("table created",
		zap.String("table", table),
		zap.Strings("fields", schema.Fields))
	return nil
}

// PutRecord stores one record. An empty sysID mints a fresh 32-character
// hex key. Returns the sys_id under which the record was stored.
func (s *Store) PutRecord(table, sysID string, values, displays map[string]string) (string, error) {
	schema, err := s.loadSchema(table)
	if err != nil {
		return "", err
	}

	if sysID == "" {
		sysID = NewSysID()
	}

	doc := make(map[string]fieldDoc, len(values))
	for _, f := range schema.Fields {
		if f == record.SysIDField {
			continue
		}
		doc[f] = fieldDoc{Value: values[f], Display: displays[f]}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	if err := s.db.Set(recordKey(table, sysID), data, pebble.Sync); err != nil {
		return "", fmt.Errorf("write record %s/%s: %w", table, sysID, err)
	}
	return sysID, nil
}

// NewSysID mints a 32-character opaque key.
func NewSysID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TableExists reports whether a schema document is present for the table.
func (s *Store) TableExists(_ context.Context, table string) bool {
	_, err := s.loadSchema(table)
	return err == nil
}

// FieldExists reports whether the field is part of the table schema.
func (s *Store) FieldExists(_ context.Context, table, field string) bool {
	schema, err := s.loadSchema(table)
	if err != nil {
		return false
	}
	for _, f := range schema.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ListFields returns the table's field names in schema order.
func (s *Store) ListFields(_ context.Context, table string) ([]string, error) {
	schema, err := s.loadSchema(table)
	if err != nil {
		return nil, err
	}
	return schema.Fields, nil
}

// GetByID fetches a single record by opaque key.
func (s *Store) GetByID(_ context.Context, table, sysID string) (record.Record, error) {
	schema, err := s.loadSchema(table)
	if err != nil {
		return nil, err
	}

	data, closer, err := s.db.Get(recordKey(table, sysID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("read record %s/%s: %w", table, sysID, err)
	}
	defer closer.Close()

	return decodeRecord(sysID, data, schema)
}

// FindByField returns the first record whose field equals value, scanning
// in key order.
func (s *Store) FindByField(ctx context.Context, table, field, value string) (record.Record, error) {
	recs, err := s.scan(ctx, table, field, value, true)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, record.ErrNotFound
	}
	return recs[0], nil
}

// QueryByField returns every record whose field equals value, in key order.
func (s *Store) QueryByField(ctx context.Context, table, field, value string) ([]record.Record, error) {
	return s.scan(ctx, table, field, value, false)
}

func (s *Store) scan(_ context.Context, table, field, value string, firstOnly bool) ([]record.Record, error) {
	schema, err := s.loadSchema(table)
	if err != nil {
		return nil, err
	}

	prefix := recordPrefix(table)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", table, err)
	}
	defer iter.Close()

	var out []record.Record
	for iter.First(); iter.Valid(); iter.Next() {
		sysID := string(iter.Key()[len(prefix):])
		rec, err := decodeRecord(sysID, iter.Value(), schema)
		if err != nil {
			return nil, err
		}
		if rec.Value(field) != value {
			continue
		}
		out = append(out, rec)
		if firstOnly {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scan %q: %w", table, err)
	}
	return out, nil
}

func (s *Store) loadSchema(table string) (*tableSchema, error) {
	data, closer, err := s.db.Get(schemaKey(table))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, record.ErrInvalidTable
		}
		return nil, fmt.Errorf("read schema for %q: %w", table, err)
	}
	defer closer.Close()

	var schema tableSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decode schema for %q: %w", table, err)
	}
	return &schema, nil
}

func decodeRecord(sysID string, data []byte, schema *tableSchema) (*storedRecord, error) {
	var doc map[string]fieldDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", sysID, err)
	}

	rec := &storedRecord{sysID: sysID, doc: doc}
	rec.display = rec.FieldDisplay(schema.DisplayField)
	if rec.display == "" {
		rec.display = sysID
	}
	return rec, nil
}

// storedRecord is the handle for one decoded pebble record.
type storedRecord struct {
	sysID   string
	display string
	doc     map[string]fieldDoc
}

func (r *storedRecord) SysID() string        { return r.sysID }
func (r *storedRecord) DisplayValue() string { return r.display }

func (r *storedRecord) Value(field string) string {
	if field == record.SysIDField {
		return r.sysID
	}
	return r.doc[field].Value
}

func (r *storedRecord) FieldDisplay(field string) string {
	if fd, ok := r.doc[field]; ok && fd.Display != "" {
		return fd.Display
	}
	return r.Value(field)
}
