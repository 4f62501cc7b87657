// Package store defines the capability surface the data-access layer needs
// from the backing document database, together with a PostgreSQL/JSONB
// implementation and an in-memory one. The store owns canonical state; the
// data-access layer above only ever holds cache copies.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known collections.
const (
	CollectionSubjects     = "subjects"
	CollectionResources    = "resources"
	CollectionPublications = "publications"
	CollectionConfig       = "config"
	CollectionAdmin        = "admin"
)

// Singleton document ids inside the config collection.
const (
	DocSchoolInfo  = "school"
	DocThemes      = "themes"
	DocAdminConfig = "admin"
)

// ErrNotFound reports a missing document.
var ErrNotFound = errors.New("store: document not found")

// Document is a schemaless record as stored. The id travels inside the
// document under "id"; creation/update timestamps under "createdAt" and
// "updatedAt" are assigned by the store, never by callers.
type Document map[string]interface{}

// OrderBy sorts query results on a single field.
type OrderBy struct {
	Field string
	Desc  bool
}

// AnyOf matches documents whose array field intersects Values.
type AnyOf struct {
	Field  string
	Values []string
}

// Query describes an ordered, filtered collection read. Filters compose
// conjunctively.
type Query struct {
	OrderBy OrderBy
	Equals  map[string]string
	AnyOf   *AnyOf
	Limit   int
}

// Change operations reported to subscribers.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event notifies subscribers that a collection changed. Delivery is
// at-least-once; consumers must treat events as invalidation hints, not as a
// replication log.
type Event struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         string `json:"op"`
}

// Store is the remote-store capability surface required by the data-access
// layer. No cross-collection transactions are offered.
type Store interface {
	// Get returns a document by id or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query returns ordered documents matching the filters.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Add inserts a document, assigns its id and timestamps, and returns the id.
	Add(ctx context.Context, collection string, fields Document) (string, error)
	// Update merges partial fields into an existing document and re-stamps
	// updatedAt. ErrNotFound when the id does not exist.
	Update(ctx context.Context, collection, id string, fields Document) error
	// Set upserts a document under a caller-chosen id. With merge, existing
	// fields not present in fields are preserved.
	Set(ctx context.Context, collection, id string, fields Document, merge bool) error
	// Delete removes a document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error
	// IncrementField atomically adds delta to a numeric field server-side.
	IncrementField(ctx context.Context, collection, id, field string, delta int64) error
	// Subscribe registers fn for change events on one collection and returns
	// its teardown.
	Subscribe(ctx context.Context, collection string, fn func(Event)) (func(), error)
}

// Decode copies a document into a typed destination via JSON.
func Decode(doc Document, dest interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// Encode converts a typed value into a document via JSON.
func Encode(src interface{}) (Document, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return doc, nil
}

// DecodeAll copies a document slice into a slice of typed values.
func DecodeAll(docs []Document, dest interface{}) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	return nil
}
