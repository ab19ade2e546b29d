// Package sqlitestore implements the record.Store query interface over a
// SQLite database. Tables map directly to SQL tables and the schema is
// introspected at query time, so any database with a sys_id column per
// table works unmodified. SQL holds no separate display values; fields
// display as their raw value, and whole records display as the configured
// display column.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"flatrec/pkg/record"
)

// Config holds configuration for the SQLite-backed store.
type Config struct {
	// Path to the database file.
	Path string

	// DisplayFields maps table name to the column used as the record's
	// overall display string. Tables without an entry fall back to the
	// number column, then to sys_id.
	DisplayFields map[string]string
}

// Store is a SQLite-backed record store.
type Store struct {
	db            *sql.DB
	displayFields map[string]string
	logger        *zap.Logger
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens the database file.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &Store{db: db, displayFields: cfg.DisplayFields, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// TableExists reports whether the table is present in the database.
func (s *Store) TableExists(ctx context.Context, table string) bool {
	if !identPattern.MatchString(table) {
		return false
	}
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	return err == nil
}

// ListFields returns the table's column names in declaration order.
func (s *Store) ListFields(ctx context.Context, table string) ([]string, error) {
	if !identPattern.MatchString(table) || !s.TableExists(ctx, table) {
		return nil, record.ErrInvalidTable
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %q: %w", table, err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("introspect %q: %w", table, err)
		}
		fields = append(fields, name)
	}
	return fields, rows.Err()
}

// FieldExists reports whether the column is defined on the table.
func (s *Store) FieldExists(ctx context.Context, table, field string) bool {
	fields, err := s.ListFields(ctx, table)
	if err != nil {
		return false
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

// GetByID fetches a single record by its sys_id column.
func (s *Store) GetByID(ctx context.Context, table, sysID string) (record.Record, error) {
	return s.selectOne(ctx, table, record.SysIDField, sysID)
}

// FindByField returns the first record whose column equals value.
func (s *Store) FindByField(ctx context.Context, table, field, value string) (record.Record, error) {
	return s.selectOne(ctx, table, field, value)
}

// QueryByField returns every record whose column equals value, in the
// table's natural rowid order.
func (s *Store) QueryByField(ctx context.Context, table, field, value string) ([]record.Record, error) {
	if err := s.checkQuery(ctx, table, field); err != nil {
		return nil, err
	}

	// Identifiers cannot be bound as parameters; both have been validated
	// against identPattern above.
	query := fmt.Sprintf(`SELECT * FROM "%s" WHERE "%s" = ?`, table, field)
	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", table, field, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		rec, err := s.scanRecord(table, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) selectOne(ctx context.Context, table, field, value string) (record.Record, error) {
	if err := s.checkQuery(ctx, table, field); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT * FROM "%s" WHERE "%s" = ? LIMIT 1`, table, field)
	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", table, field, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, record.ErrNotFound
	}
	return s.scanRecord(table, rows)
}

func (s *Store) checkQuery(ctx context.Context, table, field string) error {
	if !identPattern.MatchString(table) || !s.TableExists(ctx, table) {
		return record.ErrInvalidTable
	}
	if !identPattern.MatchString(field) || !s.FieldExists(ctx, table, field) {
		return record.ErrInvalidField
	}
	return nil
}

// scanRecord reads the current row into a record handle, converting every
// column to its string form.
func (s *Store) scanRecord(table string, rows *sql.Rows) (record.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns for %q: %w", table, err)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan %q row: %w", table, err)
	}

	rec := &sqlRecord{values: make(map[string]string, len(cols))}
	for i, col := range cols {
		rec.values[col] = toString(values[i])
	}
	rec.sysID = rec.values[record.SysIDField]
	rec.display = rec.values[s.displayField(table)]
	if rec.display == "" {
		rec.display = rec.sysID
	}
	return rec, nil
}

func (s *Store) displayField(table string) string {
	if f, ok := s.displayFields[table]; ok {
		return f
	}
	return record.NumberField
}

func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// sqlRecord is the handle for one scanned row.
type sqlRecord struct {
	sysID   string
	display string
	values  map[string]string
}

func (r *sqlRecord) SysID() string        { return r.sysID }
func (r *sqlRecord) DisplayValue() string { return r.display }

func (r *sqlRecord) Value(field string) string {
	return r.values[field]
}

// FieldDisplay equals the raw value; SQL columns carry no separate display
// form.
func (r *sqlRecord) FieldDisplay(field string) string {
	return r.values[field]
}
