// Package mockserver implements a local, in-memory stand-in for the
// Quill workspace API. It serves the same wire surface the client
// speaks (database query with cursor pagination, page fetch, page
// create/update) so examples and integration tests can run without a
// remote account.
package mockserver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Database is the stored database record with its property schema.
type Database struct {
	ID             string                    `json:"id"`
	Title          string                    `json:"title"`
	CreatedTime    time.Time                 `json:"created_time"`
	LastEditedTime time.Time                 `json:"last_edited_time"`
	Properties     map[string]PropertyColumn `json:"properties"`
}

// PropertyColumn declares one schema column.
type PropertyColumn struct {
	Type string `json:"type"`
}

// Page is the stored page record. Property values keep their wire
// shape so responses can echo them verbatim.
type Page struct {
	ID             string                     `json:"id"`
	DatabaseID     string                     `json:"database_id"`
	CreatedTime    time.Time                  `json:"created_time"`
	LastEditedTime time.Time                  `json:"last_edited_time"`
	Archived       bool                       `json:"archived"`
	URL            string                     `json:"url"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

// Store holds databases and pages in memory.
type Store struct {
	mu        sync.RWMutex
	databases map[string]*Database
	pages     map[string]*Page
	// byDB keeps page IDs in insertion order per database so paging is stable.
	byDB map[string][]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		databases: make(map[string]*Database),
		pages:     make(map[string]*Page),
		byDB:      make(map[string][]string),
	}
}

// AddDatabase registers a database.
func (s *Store) AddDatabase(db Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db.CreatedTime.IsZero() {
		db.CreatedTime = time.Now().UTC()
	}
	if db.LastEditedTime.IsZero() {
		db.LastEditedTime = db.CreatedTime
	}
	s.databases[db.ID] = &db
}

// Database returns a database by ID.
func (s *Store) Database(id string) (Database, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.databases[id]
	if !ok {
		return Database{}, false
	}
	return *db, true
}

// AddPage inserts a page, generating an ID when absent.
func (s *Store) AddPage(p Page) Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPageLocked(p)
}

func (s *Store) addPageLocked(p Page) Page {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedTime.IsZero() {
		p.CreatedTime = now
	}
	if p.LastEditedTime.IsZero() {
		p.LastEditedTime = p.CreatedTime
	}
	if p.URL == "" {
		p.URL = "https://quillhq.com/" + strings.ReplaceAll(p.ID, "-", "")
	}
	if p.Properties == nil {
		p.Properties = make(map[string]json.RawMessage)
	}
	s.pages[p.ID] = &p
	s.byDB[p.DatabaseID] = append(s.byDB[p.DatabaseID], p.ID)
	return p
}

// Page returns a page by ID.
func (s *Store) Page(id string) (Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[id]
	if !ok {
		return Page{}, false
	}
	return *p, true
}

// UpdatePage merges the given property values into an existing page.
func (s *Store) UpdatePage(id string, properties map[string]json.RawMessage) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return Page{}, false
	}
	for k, v := range properties {
		p.Properties[k] = v
	}
	p.LastEditedTime = time.Now().UTC()
	return *p, true
}

// QueryResult is one page of query output.
type QueryResult struct {
	Pages      []Page
	NextCursor string
	HasMore    bool
}

// SortKey orders query results by a property value.
type SortKey struct {
	Property  string
	Ascending bool
}

// Query filters, sorts and paginates the pages of a database.
// The filter argument is the raw wire filter (may be nil).
func (s *Store) Query(
	databaseID string,
	filter json.RawMessage,
	sorts []SortKey,
	cursor string,
	pageSize int,
) (QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.databases[databaseID]; !ok {
		return QueryResult{}, fmt.Errorf("database %q: %w", databaseID, errNotFound)
	}

	var pred *filterNode
	if len(filter) > 0 {
		var err error
		pred, err = parseFilter(filter)
		if err != nil {
			return QueryResult{}, fmt.Errorf("parse filter: %w", err)
		}
	}

	matched := make([]Page, 0)
	for _, id := range s.byDB[databaseID] {
		p := s.pages[id]
		if pred != nil && !pred.matches(p.Properties) {
			continue
		}
		matched = append(matched, *p)
	}

	if len(sorts) > 0 {
		sortPages(matched, sorts)
	}

	offset := 0
	if cursor != "" {
		var err error
		offset, err = decodeCursor(cursor)
		if err != nil {
			return QueryResult{}, err
		}
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	res := QueryResult{Pages: matched[offset:end]}
	if end < len(matched) {
		res.HasMore = true
		res.NextCursor = encodeCursor(end)
	}
	return res, nil
}

func sortPages(pages []Page, keys []SortKey) {
	sort.SliceStable(pages, func(i, j int) bool {
		for _, k := range keys {
			a := extractValue(pages[i].Properties[k.Property])
			b := extractValue(pages[j].Properties[k.Property])
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if k.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	return n, nil
}
