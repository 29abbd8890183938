package attributes

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/trusty/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE app (key TEXT PRIMARY KEY, value TEXT NOT NULL);
CREATE TABLE config (key TEXT PRIMARY KEY, value TEXT NOT NULL);
INSERT INTO app (key, value) VALUES ('last_touched', '0');`)
	require.NoError(t, err)
	return db
}

func TestGet_Seeded(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), TableApp, KeyLastTouched)
	require.NoError(t, err)
	require.Equal(t, "0", v)
}

func TestSetAndGet_UpsertPerTable(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, TableApp, "foo", "42"))
	require.NoError(t, r.Set(ctx, TableConfig, "foo", "config-value"))
	require.NoError(t, r.Set(ctx, TableApp, "foo", "99"))

	v, err := r.Get(ctx, TableApp, "foo")
	require.NoError(t, err)
	assert.Equal(t, "99", v)

	v, err = r.Get(ctx, TableConfig, "foo")
	require.NoError(t, err)
	assert.Equal(t, "config-value", v, "tables must not share keys")
}

func TestGet_NotExists_ReturnsNotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), TableApp, "absent")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.Empty(t, v)
}

func TestUpdate_ExistingAndMissing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Update(ctx, TableApp, KeyLastTouched, "7"))
	v, err := r.Get(ctx, TableApp, KeyLastTouched)
	require.NoError(t, err)
	require.Equal(t, "7", v)

	err = r.Update(ctx, TableApp, "absent", "1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, TableConfig, "x", "1"))
	require.NoError(t, r.Delete(ctx, TableConfig, "x"))

	_, err := r.Get(ctx, TableConfig, "x")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.Delete(ctx, TableConfig, "x"))
}

func TestList_ReturnsAllPairs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, TableConfig, "a", "1"))
	require.NoError(t, r.Set(ctx, TableConfig, "b", "2"))

	m, err := r.List(ctx, TableConfig)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, m)
}

func TestUnknownTable_Rejected(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	bad := Table("app; DROP TABLE app")

	_, err := r.Get(ctx, bad, "k")
	require.Error(t, err)
	require.Error(t, r.Set(ctx, bad, "k", "v"))
	require.Error(t, r.Update(ctx, bad, "k", "v"))
	require.Error(t, r.Delete(ctx, bad, "k"))
	_, err = r.List(ctx, bad)
	require.Error(t, err)
}

func TestSetAll_WritesInOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	err := SetAll(ctx, r, []Attribute{
		{Table: TableApp, Key: "a", Value: "1"},
		{Table: TableApp, Key: "b", Value: "2"},
	})
	require.NoError(t, err)

	m, err := r.List(ctx, TableApp)
	require.NoError(t, err)
	assert.Equal(t, "1", m["a"])
	assert.Equal(t, "2", m["b"])
}

func newRepoWithMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestSet_DBErrorWrapped(t *testing.T) {
	r, mock := newRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO app`)).
		WithArgs("k", "v").
		WillReturnError(errors.New("disk I/O error"))

	err := r.Set(context.Background(), TableApp, "k", "v")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to set attribute app[k]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAll_StopsAtFirstFailure(t *testing.T) {
	r, mock := newRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO app`)).
		WithArgs("a", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO app`)).
		WithArgs("b", "2").
		WillReturnError(errors.New("readonly database"))

	err := SetAll(context.Background(), r, []Attribute{
		{Table: TableApp, Key: "a", Value: "1"},
		{Table: TableApp, Key: "b", Value: "2"},
		{Table: TableApp, Key: "c", Value: "3"},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "third write must not be attempted")
}

func TestGet_DBErrorWrapped(t *testing.T) {
	r, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM config WHERE key = ?`)).
		WithArgs("k").
		WillReturnError(errors.New("boom"))

	_, err := r.Get(context.Background(), TableConfig, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrorNotFound)
	require.Contains(t, err.Error(), "failed to get attribute config[k]")
}

func TestList_DBErrorWrapped(t *testing.T) {
	r, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key, value FROM app`)).
		WillReturnError(errors.New("boom"))

	_, err := r.List(context.Background(), TableApp)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to list attributes app")
}
