package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PostgresStore keeps every collection in a single JSONB documents table.
// Timestamps live in dedicated columns and are stamped with now() inside the
// statement, so they are server-assigned. Change events travel over redis
// pub/sub when a client is provided, otherwise in-process only.
type PostgresStore struct {
	db       *sqlx.DB
	notifier broadcaster
	logger   *zap.Logger
}

// NewPostgresStore wires the store. redisClient may be nil.
func NewPostgresStore(db *sqlx.DB, redisClient *redis.Client, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	var notifier broadcaster
	if redisClient != nil {
		notifier = newRedisBroadcaster(redisClient, logger)
	} else {
		notifier = newLocalBroadcaster()
	}
	return &PostgresStore{db: db, notifier: notifier, logger: logger}
}

var _ Store = (*PostgresStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text NOT NULL,
	id         text NOT NULL,
	data       jsonb NOT NULL DEFAULT '{}'::jsonb,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_gin ON documents USING gin (data);
`

// Migrate creates the documents table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

type documentRow struct {
	ID        string    `db:"id"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r documentRow) toDocument() (Document, error) {
	var doc Document
	if err := json.Unmarshal(r.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", r.ID, err)
	}
	if doc == nil {
		doc = Document{}
	}
	doc["id"] = r.ID
	doc["createdAt"] = r.CreatedAt.UTC()
	doc["updatedAt"] = r.UpdatedAt.UTC()
	return doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	const query = `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`
	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return row.toDocument()
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := "SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1"
	args := []interface{}{collection}

	// Equality filters iterate in sorted key order so generated SQL is
	// deterministic.
	fields := make([]string, 0, len(q.Equals))
	for field := range q.Equals {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		query += fmt.Sprintf(" AND data->>'%s' = $%d", quoteIdent(field), len(args)+1)
		args = append(args, q.Equals[field])
	}

	if q.AnyOf != nil && len(q.AnyOf.Values) > 0 {
		query += fmt.Sprintf(" AND data->'%s' ?| $%d", quoteIdent(q.AnyOf.Field), len(args)+1)
		args = append(args, pq.Array(q.AnyOf.Values))
	}

	if q.OrderBy.Field != "" {
		dir := "ASC"
		if q.OrderBy.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", orderExpr(q.OrderBy.Field), dir)
	}

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, fields Document) (string, error) {
	id := uuid.NewString()
	payload, err := marshalData(fields)
	if err != nil {
		return "", err
	}

	const query = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, payload); err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}

	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpAdd})
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Document) error {
	payload, err := marshalData(fields)
	if err != nil {
		return err
	}

	const query = `UPDATE documents SET data = data || $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id, payload)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, fields Document, merge bool) error {
	payload, err := marshalData(fields)
	if err != nil {
		return err
	}

	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if merge {
		query = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = now()`
	}

	if _, err := s.db.ExecContext(ctx, query, collection, id, payload); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}

	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpDelete})
	}
	return nil
}

// IncrementField performs the addition inside a single UPDATE, so concurrent
// increments never lose updates the way a client-side read-modify-write
// would.
func (s *PostgresStore) IncrementField(ctx context.Context, collection, id, field string, delta int64) error {
	const query = `UPDATE documents
		SET data = jsonb_set(data, ARRAY[$3], to_jsonb(COALESCE((data->>$3)::bigint, 0) + $4), true),
		    updated_at = now()
		WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id, field, delta)
	if err != nil {
		return fmt.Errorf("increment %s on %s/%s: %w", field, collection, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	s.notifier.publish(ctx, Event{Collection: collection, ID: id, Op: OpUpdate})
	return nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, collection string, fn func(Event)) (func(), error) {
	return s.notifier.subscribe(ctx, collection, fn)
}

// orderExpr maps document field names onto sortable SQL expressions.
// Timestamps sort on their columns; "order" is numeric inside the JSONB.
func orderExpr(field string) string {
	switch field {
	case "createdAt":
		return "created_at"
	case "updatedAt":
		return "updated_at"
	case "order":
		return "(data->>'order')::numeric"
	default:
		return fmt.Sprintf("data->>'%s'", quoteIdent(field))
	}
}

// marshalData serialises caller fields, dropping metadata the store owns.
func marshalData(fields Document) ([]byte, error) {
	trimmed := make(Document, len(fields))
	for k, v := range fields {
		switch k {
		case "id", "createdAt", "updatedAt":
			continue
		}
		trimmed[k] = v
	}
	payload, err := json.Marshal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("encode document fields: %w", err)
	}
	return payload, nil
}

// quoteIdent guards against accidental quoting issues in field names that
// come from code, not users.
func quoteIdent(field string) string {
	return strings.ReplaceAll(field, "'", "''")
}
