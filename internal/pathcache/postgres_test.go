package pathcache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
)

func newPostgresStore(t *testing.T) (*pathcache.PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return pathcache.NewPostgresStore(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestPostgresStore_Load(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)

	mock.ExpectQuery("SELECT title, path FROM wiki_paths").
		WillReturnRows(sqlmock.NewRows([]string{"title", "path"}).
			AddRow("Start", []byte(`["Start","Mid","Philosophy"]`)).
			AddRow("Mid", `["Mid","Philosophy"]`))

	paths, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Start", "Mid", "Philosophy"}, paths["Start"])
	assert.Equal(t, domain.Path{"Mid", "Philosophy"}, paths["Mid"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadCorruptRowIsDroppedAlone(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)

	mock.ExpectQuery("SELECT title, path FROM wiki_paths").
		WillReturnRows(sqlmock.NewRows([]string{"title", "path"}).
			AddRow("Bad", []byte(`{`)).
			AddRow("Mid", []byte(`["Mid","Philosophy"]`)))

	cache := pathcache.New(store, nil)

	assert.Equal(t, 1, cache.Load(context.Background()))
	_, ok := cache.Get("Bad")
	assert.False(t, ok)
	got, ok := cache.Get("Mid")
	require.True(t, ok)
	assert.Equal(t, domain.Path{"Mid", "Philosophy"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadQueryFailure(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)

	mock.ExpectQuery("SELECT title, path FROM wiki_paths").WillReturnError(errors.New("connection reset"))

	_, err := store.Load(context.Background())

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReplacesRowsInTransaction(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM wiki_paths").WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO wiki_paths")
	prep.ExpectExec().
		WithArgs("Mid", []byte(`["Mid","Philosophy"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("Start", []byte(`["Start","Mid","Philosophy"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Save(context.Background(), map[string]domain.Path{
		"Start": {"Start", "Mid", "Philosophy"},
		"Mid":   {"Mid", "Philosophy"},
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRollsBackOnInsertFailure(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM wiki_paths").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO wiki_paths").
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), map[string]domain.Path{"A": {"A", "B"}})

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS wiki_paths").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
