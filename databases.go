package quill

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/quillhq/quill/internal/domain/page"
	"github.com/quillhq/quill/internal/domain/schema"
	"github.com/quillhq/quill/internal/retry"
)

// Database is the decoded metadata of one database (collection).
type Database struct {
	ID             string
	Title          string
	CreatedTime    time.Time
	LastEditedTime time.Time
	Schema         Schema
}

// databaseEnvelope mirrors the database metadata response.
type databaseEnvelope struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	CreatedTime    time.Time       `json:"created_time"`
	LastEditedTime time.Time       `json:"last_edited_time"`
	Properties     json.RawMessage `json:"properties"`
}

// DatabaseService exposes one database's metadata and queries.
type DatabaseService struct {
	id     string
	client *Client
}

// Get fetches the database metadata, including its property schema.
func (s *DatabaseService) Get(ctx context.Context) (db *Database, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("database.get", start, err) }()

	path := "/v1/databases/" + url.PathEscape(s.id)
	body, err := retry.Do(ctx, s.client.executor, func(ctx context.Context) ([]byte, error) {
		return s.client.transport.Do(ctx, "GET", path, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("get database %q: %w", s.id, err)
	}

	var env databaseEnvelope
	if err = json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode database %q: %w", s.id, err)
	}
	sch, err := schema.ParseJSON(env.Properties)
	if err != nil {
		return nil, fmt.Errorf("database %q: %w", s.id, err)
	}

	db = &Database{
		ID:             env.ID,
		Title:          env.Title,
		CreatedTime:    env.CreatedTime,
		LastEditedTime: env.LastEditedTime,
		Schema:         newSchema(sch),
	}
	s.client.schemaCache.Set(page.NormalizeID(s.id), db.Schema)
	return db, nil
}

// Schema returns the database's property schema, loading it on first use.
// The loaded schema is cached on the client for the client's lifetime;
// call InvalidateSchema after changing the database structure.
func (s *DatabaseService) Schema(ctx context.Context) (Schema, error) {
	if sch, ok := s.client.schemaCache.Get(page.NormalizeID(s.id)); ok {
		return sch, nil
	}
	db, err := s.Get(ctx)
	if err != nil {
		return Schema{}, err
	}
	return db.Schema, nil
}

// InvalidateSchema drops the cached schema so the next query reloads it.
func (s *DatabaseService) InvalidateSchema() {
	s.client.schemaCache.Invalidate(page.NormalizeID(s.id))
}

// Query starts a fluent query against this database. The schema is loaded
// (or taken from cache) up front so filter expressions validate immediately.
func (s *DatabaseService) Query(ctx context.Context) (*Query, error) {
	sch, err := s.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("query database %q: %w", s.id, err)
	}
	return newQuery(s.client, s.id, sch), nil
}

// QueryWithSchema starts a query using an externally supplied schema,
// avoiding the metadata fetch entirely.
func (s *DatabaseService) QueryWithSchema(sch Schema) *Query {
	return newQuery(s.client, s.id, sch)
}
