package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store used by tests and as a
// dependency-free development fallback. Documents are normalised through JSON
// on write so reads always see plain JSON value types, the same shapes the
// Postgres store returns.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]map[string]Document
	notifier *localBroadcaster
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]map[string]Document),
		notifier: newLocalBroadcaster(),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *MemoryStore) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	docs := make([]Document, 0, len(s.data[collection]))
	for _, doc := range s.data[collection] {
		if matches(doc, q) {
			docs = append(docs, copyDoc(doc))
		}
	}
	s.mu.RUnlock()

	if q.OrderBy.Field != "" {
		field, desc := q.OrderBy.Field, q.OrderBy.Desc
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(docs[i][field], docs[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields Document) (string, error) {
	id := uuid.NewString()
	now := timestamp()

	doc := stripMeta(normalise(fields))
	doc["id"] = id
	doc["createdAt"] = now
	doc["updatedAt"] = now

	s.mu.Lock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]Document)
	}
	s.data[collection][id] = doc
	s.mu.Unlock()

	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpAdd})
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	doc, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range stripMeta(normalise(fields)) {
		doc[k] = v
	}
	doc["id"] = id
	doc["updatedAt"] = timestamp()
	s.mu.Unlock()

	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields Document, merge bool) error {
	now := timestamp()
	incoming := stripMeta(normalise(fields))

	s.mu.Lock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]Document)
	}
	existing, ok := s.data[collection][id]

	var doc Document
	switch {
	case ok && merge:
		doc = existing
		for k, v := range incoming {
			doc[k] = v
		}
	case ok:
		doc = incoming
		if created, has := existing["createdAt"]; has {
			doc["createdAt"] = created
		} else {
			doc["createdAt"] = now
		}
	default:
		doc = incoming
		doc["createdAt"] = now
	}
	doc["id"] = id
	doc["updatedAt"] = now
	s.data[collection][id] = doc
	s.mu.Unlock()

	op := OpUpdate
	if !ok {
		op = OpAdd
	}
	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: op})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	_, existed := s.data[collection][id]
	delete(s.data[collection], id)
	s.mu.Unlock()

	if existed {
		s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpDelete})
	}
	return nil
}

func (s *MemoryStore) IncrementField(ctx context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	doc, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	doc[field] = toFloat(doc[field]) + float64(delta)
	doc["updatedAt"] = timestamp()
	s.mu.Unlock()

	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, fn func(Event)) (func(), error) {
	return s.notifier.subscribe(ctx, collection, fn)
}

func matches(doc Document, q Query) bool {
	for field, want := range q.Equals {
		if fmt.Sprintf("%v", doc[field]) != want {
			return false
		}
	}
	if q.AnyOf != nil {
		values, _ := doc[q.AnyOf.Field].([]interface{})
		found := false
		for _, v := range values {
			s, _ := v.(string)
			for _, want := range q.AnyOf.Values {
				if s == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// compareValues orders JSON values: numbers numerically, everything else as
// strings (RFC 3339 timestamps sort correctly that way).
func compareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as := fmt.Sprintf("%v", a)
	bs := fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toFloat(v interface{}) float64 {
	f, _ := asFloat(v)
	return f
}

func normalise(fields Document) Document {
	raw, err := json.Marshal(fields)
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}
	}
	if doc == nil {
		doc = Document{}
	}
	return doc
}

// stripMeta drops the metadata the store stamps itself, the same set
// Postgres marshalData trims, so both backends re-stamp writes identically.
func stripMeta(doc Document) Document {
	delete(doc, "id")
	delete(doc, "createdAt")
	delete(doc, "updatedAt")
	return doc
}

func copyDoc(doc Document) Document {
	return normalise(doc)
}

// Fixed-width fractional seconds so string order equals time order.
// RFC3339Nano trims trailing zeros and breaks that.
func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
