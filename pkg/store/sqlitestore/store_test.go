package sqlitestore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flatrec/pkg/record"
)

const (
	incidentID = "9d385017c611228701d22104cc95c371"
	userID     = "5137153cc611227c000bbd1bd8cd2005"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE incident (
			sys_id TEXT PRIMARY KEY,
			number TEXT,
			short_description TEXT,
			caller_id TEXT,
			reopen_count INTEGER
		)`,
		`CREATE TABLE sys_user (
			sys_id TEXT PRIMARY KEY,
			user_name TEXT,
			name TEXT
		)`,
		`INSERT INTO sys_user VALUES ('` + userID + `', 'abel.tuter', 'Abel Tuter')`,
		`INSERT INTO incident VALUES ('` + incidentID + `', 'INC0010042', 'Disk full', '` + userID + `', 2)`,
		`INSERT INTO incident (sys_id, number, caller_id)
			VALUES ('8c17a8d1c611228701d22104cc95c000', 'INC0010043', '` + userID + `')`,
	} {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	s, err := Open(Config{
		Path:          path,
		DisplayFields: map[string]string{"sys_user": "name"},
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTableExists(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.True(t, s.TableExists(ctx, "incident"))
	assert.False(t, s.TableExists(ctx, "bogus_table"))
	assert.False(t, s.TableExists(ctx, `incident"; DROP TABLE incident; --`))
}

func TestListFields(t *testing.T) {
	s := setupStore(t)

	fields, err := s.ListFields(context.Background(), "incident")
	require.NoError(t, err)
	assert.Equal(t, []string{"sys_id", "number", "short_description", "caller_id", "reopen_count"}, fields)

	_, err = s.ListFields(context.Background(), "bogus_table")
	assert.ErrorIs(t, err, record.ErrInvalidTable)
}

func TestGetByID(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	rec, err := s.GetByID(ctx, "incident", incidentID)
	require.NoError(t, err)
	assert.Equal(t, incidentID, rec.SysID())
	assert.Equal(t, "INC0010042", rec.DisplayValue())
	assert.Equal(t, "Disk full", rec.Value("short_description"))
	assert.Equal(t, "2", rec.Value("reopen_count"))
	assert.Equal(t, rec.Value("caller_id"), rec.FieldDisplay("caller_id"))

	_, err = s.GetByID(ctx, "incident", "00000000000000000000000000000000")
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestFindByField(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	rec, err := s.FindByField(ctx, "sys_user", "user_name", "abel.tuter")
	require.NoError(t, err)
	assert.Equal(t, userID, rec.SysID())
	assert.Equal(t, "Abel Tuter", rec.DisplayValue())

	_, err = s.FindByField(ctx, "sys_user", "user_name", "nobody")
	assert.ErrorIs(t, err, record.ErrNotFound)

	_, err = s.FindByField(ctx, "sys_user", "no_such_field", "x")
	assert.ErrorIs(t, err, record.ErrInvalidField)
}

func TestQueryByField(t *testing.T) {
	s := setupStore(t)

	matches, err := s.QueryByField(context.Background(), "incident", "caller_id", userID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	// Natural rowid order: insertion order.
	assert.Equal(t, "INC0010042", matches[0].Value("number"))
	assert.Equal(t, "INC0010043", matches[1].Value("number"))
}

func TestNullColumnsScanAsEmpty(t *testing.T) {
	s := setupStore(t)

	rec, err := s.FindByField(context.Background(), "incident", "number", "INC0010043")
	require.NoError(t, err)
	assert.Equal(t, "", rec.Value("short_description"))
	assert.Equal(t, "", rec.Value("reopen_count"))
}

func TestAccessorOverSQLite(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	accessor := record.NewRecordAccessor(s, zap.NewNop())

	flat := accessor.GetFieldsCompact(ctx, "incident", "INC0010043")
	require.NotNil(t, flat)
	assert.NotContains(t, flat.Fields, "short_description")
	assert.Contains(t, flat.Fields, "caller_id")

	text, ok := accessor.GetShortText(ctx, "incident", "INC0010042")
	require.True(t, ok)
	assert.Equal(t, "Disk full", text)
}
