package pebblestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flatrec/pkg/record"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{DataDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedIncidents(t *testing.T, s *Store) (string, string) {
	t.Helper()
	require.NoError(t, s.CreateTable("incident", []string{"number", "short_description", "caller_id"}, "number"))

	callerID := NewSysID()
	id, err := s.PutRecord("incident", "", map[string]string{
		"number":            "INC0010042",
		"short_description": "Disk full",
		"caller_id":         callerID,
	}, map[string]string{
		"caller_id": "Abel Tuter",
	})
	require.NoError(t, err)
	return id, callerID
}

func TestNewSysID(t *testing.T) {
	id := NewSysID()
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, NewSysID())
}

func TestSchemaIntrospection(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedIncidents(t, s)

	assert.True(t, s.TableExists(ctx, "incident"))
	assert.False(t, s.TableExists(ctx, "bogus_table"))

	fields, err := s.ListFields(ctx, "incident")
	require.NoError(t, err)
	assert.Equal(t, []string{"sys_id", "number", "short_description", "caller_id"}, fields)

	assert.True(t, s.FieldExists(ctx, "incident", "short_description"))
	assert.False(t, s.FieldExists(ctx, "incident", "no_such_field"))

	_, err = s.ListFields(ctx, "bogus_table")
	assert.ErrorIs(t, err, record.ErrInvalidTable)
}

func TestGetByID(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	id, _ := seedIncidents(t, s)

	rec, err := s.GetByID(ctx, "incident", id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.SysID())
	assert.Equal(t, "INC0010042", rec.DisplayValue())
	assert.Equal(t, "Disk full", rec.Value("short_description"))
	assert.Equal(t, "Abel Tuter", rec.FieldDisplay("caller_id"))
	assert.Equal(t, id, rec.Value("sys_id"))

	_, err = s.GetByID(ctx, "incident", NewSysID())
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestFindByField(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	id, _ := seedIncidents(t, s)

	rec, err := s.FindByField(ctx, "incident", "number", "INC0010042")
	require.NoError(t, err)
	assert.Equal(t, id, rec.SysID())

	_, err = s.FindByField(ctx, "incident", "number", "INC9999999")
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestQueryByField(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	_, callerID := seedIncidents(t, s)

	_, err := s.PutRecord("incident", "", map[string]string{
		"number":    "INC0010043",
		"caller_id": callerID,
	}, nil)
	require.NoError(t, err)
	_, err = s.PutRecord("incident", "", map[string]string{
		"number":    "INC0010044",
		"caller_id": NewSysID(),
	}, nil)
	require.NoError(t, err)

	matches, err := s.QueryByField(ctx, "incident", "caller_id", callerID)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, callerID, m.Value("caller_id"))
	}
}

func TestLoadFixture(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	err := s.LoadFixture(&Fixture{
		Tables: []FixtureTable{
			{
				Name:         "sys_user",
				DisplayField: "name",
				Fields:       []string{"user_name", "name"},
				Records: []FixtureRecord{
					{Values: map[string]string{"user_name": "abel.tuter", "name": "Abel Tuter"}},
				},
			},
		},
	})
	require.NoError(t, err)

	rec, err := s.FindByField(ctx, "sys_user", "user_name", "abel.tuter")
	require.NoError(t, err)
	assert.Equal(t, "Abel Tuter", rec.DisplayValue())
	assert.Len(t, rec.SysID(), 32)
}

func TestAccessorOverPebble(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedIncidents(t, s)

	accessor := record.NewRecordAccessor(s, zap.NewNop())

	flat := accessor.GetFields(ctx, "incident", "INC0010042", false)
	require.NotNil(t, flat)
	assert.Equal(t, "INC0010042", flat.DisplayValue)
	assert.NotContains(t, flat.Fields, record.SysIDField)

	text, ok := accessor.GetShortText(ctx, "incident", "INC0010042")
	require.True(t, ok)
	assert.Equal(t, "Disk full", text)
}

func TestCreateTable_Validation(t *testing.T) {
	s := setupStore(t)

	assert.Error(t, s.CreateTable("", []string{"number"}, ""))
	assert.Error(t, s.CreateTable("bad!name", []string{"number"}, ""))
	assert.Error(t, s.CreateTable("empty", nil, ""))
}
