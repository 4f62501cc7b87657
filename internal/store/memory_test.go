package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAddGetRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	id, err := st.Add(ctx, CollectionSubjects, Document{"name": "Matemática", "order": 2})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := st.Get(ctx, CollectionSubjects, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc["id"])
	assert.Equal(t, "Matemática", doc["name"])
	assert.NotEmpty(t, doc["createdAt"])
	assert.Equal(t, doc["createdAt"], doc["updatedAt"])

	_, err = st.Get(ctx, CollectionSubjects, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateMerges(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	id, err := st.Add(ctx, CollectionSubjects, Document{"name": "Física", "color": "#fff"})
	require.NoError(t, err)

	require.NoError(t, st.Update(ctx, CollectionSubjects, id, Document{"name": "Física II"}))

	doc, err := st.Get(ctx, CollectionSubjects, id)
	require.NoError(t, err)
	assert.Equal(t, "Física II", doc["name"])
	assert.Equal(t, "#fff", doc["color"])

	assert.ErrorIs(t, st.Update(ctx, CollectionSubjects, "missing", Document{"name": "X"}), ErrNotFound)
}

func TestMemoryStoreSetMergeAndReplace(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, CollectionConfig, DocSchoolInfo, Document{"name": "Colegio", "phone": "555"}, false))
	require.NoError(t, st.Set(ctx, CollectionConfig, DocSchoolInfo, Document{"phone": "556"}, true))

	doc, err := st.Get(ctx, CollectionConfig, DocSchoolInfo)
	require.NoError(t, err)
	assert.Equal(t, "Colegio", doc["name"])
	assert.Equal(t, "556", doc["phone"])

	created := doc["createdAt"]

	// replace drops unknown fields but keeps createdAt
	require.NoError(t, st.Set(ctx, CollectionConfig, DocSchoolInfo, Document{"name": "Otro"}, false))
	doc, err = st.Get(ctx, CollectionConfig, DocSchoolInfo)
	require.NoError(t, err)
	assert.Equal(t, "Otro", doc["name"])
	assert.Nil(t, doc["phone"])
	assert.Equal(t, created, doc["createdAt"])
}

func TestMemoryStoreStripsCallerMetadata(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	// inserts re-stamp id and timestamps no matter what the payload carries
	require.NoError(t, st.Set(ctx, CollectionSubjects, "sub-1", Document{
		"name":      "Física",
		"id":        "forged",
		"createdAt": "1999-01-01T00:00:00.000000000Z",
		"updatedAt": "1999-01-01T00:00:00.000000000Z",
	}, false))

	doc, err := st.Get(ctx, CollectionSubjects, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", doc["id"])
	assert.NotEqual(t, "1999-01-01T00:00:00.000000000Z", doc["createdAt"])
	assert.NotEqual(t, "1999-01-01T00:00:00.000000000Z", doc["updatedAt"])

	created := doc["createdAt"]

	require.NoError(t, st.Set(ctx, CollectionSubjects, "sub-1", Document{
		"name":      "Física II",
		"createdAt": "1999-01-01T00:00:00.000000000Z",
	}, true))
	require.NoError(t, st.Update(ctx, CollectionSubjects, "sub-1", Document{
		"color":     "#fff",
		"createdAt": "1999-01-01T00:00:00.000000000Z",
	}))

	doc, err = st.Get(ctx, CollectionSubjects, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Física II", doc["name"])
	assert.Equal(t, created, doc["createdAt"])
}

func TestMemoryStoreQueryFiltersAndOrder(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Add(ctx, CollectionResources, Document{"title": "a", "subjectId": "math", "tags": []string{"examen"}, "order": 3})
	require.NoError(t, err)
	_, err = st.Add(ctx, CollectionResources, Document{"title": "b", "subjectId": "math", "tags": []string{"tarea"}, "order": 1})
	require.NoError(t, err)
	_, err = st.Add(ctx, CollectionResources, Document{"title": "c", "subjectId": "physics", "tags": []string{"examen"}, "order": 2})
	require.NoError(t, err)

	docs, err := st.Query(ctx, CollectionResources, Query{Equals: map[string]string{"subjectId": "math"}})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = st.Query(ctx, CollectionResources, Query{AnyOf: &AnyOf{Field: "tags", Values: []string{"examen", "tarea"}}})
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	docs, err = st.Query(ctx, CollectionResources, Query{OrderBy: OrderBy{Field: "order"}})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "b", docs[0]["title"])
	assert.Equal(t, "c", docs[1]["title"])
	assert.Equal(t, "a", docs[2]["title"])

	docs, err = st.Query(ctx, CollectionResources, Query{OrderBy: OrderBy{Field: "order", Desc: true}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0]["title"])
}

func TestMemoryStoreIncrementField(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	id, err := st.Add(ctx, CollectionResources, Document{"title": "a", "downloads": 0})
	require.NoError(t, err)

	require.NoError(t, st.IncrementField(ctx, CollectionResources, id, "downloads", 1))
	require.NoError(t, st.IncrementField(ctx, CollectionResources, id, "downloads", 1))

	doc, err := st.Get(ctx, CollectionResources, id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, doc["downloads"])

	assert.ErrorIs(t, st.IncrementField(ctx, CollectionResources, "missing", "downloads", 1), ErrNotFound)
}

func TestMemoryStoreSubscribe(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	var events []Event
	unsub, err := st.Subscribe(ctx, CollectionSubjects, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	id, err := st.Add(ctx, CollectionSubjects, Document{"name": "Arte"})
	require.NoError(t, err)
	require.NoError(t, st.Update(ctx, CollectionSubjects, id, Document{"name": "Artes"}))
	require.NoError(t, st.Delete(ctx, CollectionSubjects, id))
	// deleting an absent id neither errors nor publishes
	require.NoError(t, st.Delete(ctx, CollectionSubjects, id))

	require.Len(t, events, 3)
	assert.Equal(t, OpAdd, events[0].Op)
	assert.Equal(t, OpUpdate, events[1].Op)
	assert.Equal(t, OpDelete, events[2].Op)

	unsub()
	_, err = st.Add(ctx, CollectionSubjects, Document{"name": "Música"})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
