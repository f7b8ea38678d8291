package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLiteStorage {
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "swordshop_cart", []byte(`[{"id":1}]`)))
	got, err := s.Load(ctx, "swordshop_cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
}

func TestSQLiteStorage_SaveOverwrites(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", []byte("first")))
	require.NoError(t, s.Save(ctx, "k", []byte("second")))

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestSQLiteStorage_LoadMissing(t *testing.T) {
	s := setupSQLite(t)

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_Delete(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "k"))
}

func TestSQLiteStorage_MigrationsAreIdempotent(t *testing.T) {
	s := setupSQLite(t)
	assert.NoError(t, s.RunMigrations())
}

func TestSQLiteStorage_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO kv").
		WithArgs("k", []byte("v"), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))

	s := NewSQLiteStorageFromDB(db)
	err = s.Save(context.Background(), "k", []byte("v"))
	require.ErrorContains(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_LoadError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs("k").
		WillReturnError(errors.New("database is locked"))

	s := NewSQLiteStorageFromDB(db)
	_, err = s.Load(context.Background(), "k")
	require.ErrorContains(t, err, "database is locked")
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_LoadNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	s := NewSQLiteStorageFromDB(db)
	_, err = s.Load(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
