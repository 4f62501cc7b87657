package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	st := NewPostgresStore(sqlx.NewDb(db, "sqlmock"), nil, nil)
	return st, mock, func() { db.Close() }
}

func TestPostgresStoreGet(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
		AddRow("sub-1", []byte(`{"name":"Matemática","order":1}`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2")).
		WithArgs(CollectionSubjects, "sub-1").
		WillReturnRows(rows)

	doc, err := st.Get(context.Background(), CollectionSubjects, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", doc["id"])
	assert.Equal(t, "Matemática", doc["name"])
	assert.Equal(t, now, doc["createdAt"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetNotFound(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, data, created_at, updated_at FROM documents").
		WithArgs(CollectionSubjects, "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data", "created_at", "updated_at"}))

	_, err := st.Get(context.Background(), CollectionSubjects, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreQueryComposesFilters(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
		AddRow("res-1", []byte(`{"title":"algebra","subjectId":"math","tags":["examen"]}`), now, now)

	expected := "SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1" +
		" AND data->>'subjectId' = $2 AND data->'tags' ?| $3 ORDER BY created_at DESC LIMIT 5"
	mock.ExpectQuery(regexp.QuoteMeta(expected)).
		WithArgs(CollectionResources, "math", sqlmock.AnyArg()).
		WillReturnRows(rows)

	docs, err := st.Query(context.Background(), CollectionResources, Query{
		Equals:  map[string]string{"subjectId": "math"},
		AnyOf:   &AnyOf{Field: "tags", Values: []string{"examen"}},
		OrderBy: OrderBy{Field: "createdAt", Desc: true},
		Limit:   5,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "algebra", docs[0]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreQueryOrdersBySubjectOrder(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	expected := "SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1" +
		" ORDER BY (data->>'order')::numeric ASC"
	mock.ExpectQuery(regexp.QuoteMeta(expected)).
		WithArgs(CollectionSubjects).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data", "created_at", "updated_at"}))

	docs, err := st.Query(context.Background(), CollectionSubjects, Query{
		OrderBy: OrderBy{Field: "order"},
	})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAddStripsMetadata(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)")).
		WithArgs(CollectionSubjects, sqlmock.AnyArg(), []byte(`{"name":"Física"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// id and timestamps in the payload are store-owned and must not persist
	id, err := st.Add(context.Background(), CollectionSubjects, Document{
		"name":      "Física",
		"id":        "spoofed",
		"createdAt": "spoofed",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "spoofed", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateNotFound(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE documents SET data = data").
		WithArgs(CollectionSubjects, "missing", []byte(`{"name":"X"}`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.Update(context.Background(), CollectionSubjects, "missing", Document{"name": "X"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetMergeUsesJSONBConcat(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("ON CONFLICT \\(collection, id\\) DO UPDATE SET data = documents\\.data \\|\\| EXCLUDED\\.data").
		WithArgs(CollectionConfig, DocSchoolInfo, []byte(`{"phone":"555-0199"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.Set(context.Background(), CollectionConfig, DocSchoolInfo, Document{"phone": "555-0199"}, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetReplace(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("ON CONFLICT \\(collection, id\\) DO UPDATE SET data = EXCLUDED\\.data").
		WithArgs(CollectionConfig, DocThemes, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.Set(context.Background(), CollectionConfig, DocThemes, Document{"currentTheme": "navidad"}, false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreIncrementField(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("SET data = jsonb_set").
		WithArgs(CollectionResources, "res-1", "downloads", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.IncrementField(context.Background(), CollectionResources, "res-1", "downloads", 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreIncrementFieldNotFound(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("SET data = jsonb_set").
		WithArgs(CollectionResources, "missing", "downloads", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.IncrementField(context.Background(), CollectionResources, "missing", "downloads", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDeletePublishesOnlyWhenRowExisted(t *testing.T) {
	st, mock, cleanup := newStoreMock(t)
	defer cleanup()

	var events []Event
	_, err := st.Subscribe(context.Background(), CollectionSubjects, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM documents").
		WithArgs(CollectionSubjects, "sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM documents").
		WithArgs(CollectionSubjects, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, st.Delete(context.Background(), CollectionSubjects, "sub-1"))
	require.NoError(t, st.Delete(context.Background(), CollectionSubjects, "ghost"))

	require.Len(t, events, 1)
	assert.Equal(t, "sub-1", events[0].ID)
	assert.Equal(t, OpDelete, events[0].Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}
