package mockserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Fixtures is the JSON seed file format.
type Fixtures struct {
	Databases []Database `json:"databases"`
	Pages     []Page     `json:"pages"`
}

// LoadFixtures reads a fixture file and seeds the store from it.
func LoadFixtures(store *Store, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read fixtures %s: %w", path, err)
	}
	var f Fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}
	Seed(store, f)
	return nil
}

// Seed loads fixture records into the store.
func Seed(store *Store, f Fixtures) {
	for _, db := range f.Databases {
		store.AddDatabase(db)
	}
	for _, p := range f.Pages {
		store.AddPage(p)
	}
}

const demoDatabaseID = "11111111-1111-4111-8111-111111111111"

// SeedDemo fills the store with a small task-tracking workspace used
// when no fixture file is configured.
func SeedDemo(store *Store) {
	store.AddDatabase(Database{
		ID:    demoDatabaseID,
		Title: "Tasks",
		Properties: map[string]PropertyColumn{
			"Name":     {Type: "title"},
			"Status":   {Type: "select"},
			"Priority": {Type: "number"},
			"Done":     {Type: "checkbox"},
			"Due":      {Type: "date"},
			"Tags":     {Type: "multi_select"},
		},
	})

	tasks := []struct {
		name     string
		status   string
		priority float64
		done     bool
		due      string
		tags     []string
	}{
		{"Write launch notes", "In Progress", 3, false, "2026-09-01", []string{"docs"}},
		{"Fix pagination bug", "Done", 8, true, "2026-08-20", []string{"bug", "backend"}},
		{"Review schema draft", "Todo", 5, false, "2026-09-10", []string{"docs", "review"}},
		{"Ship retry budget", "In Progress", 9, false, "2026-08-30", []string{"backend"}},
		{"Archive old boards", "Todo", 1, false, "2026-10-01", nil},
	}
	for _, t := range tasks {
		store.AddPage(Page{
			DatabaseID: demoDatabaseID,
			Properties: map[string]json.RawMessage{
				"Name":     titleValue(t.name),
				"Status":   selectValue(t.status),
				"Priority": numberValue(t.priority),
				"Done":     checkboxValue(t.done),
				"Due":      dateValueJSON(t.due),
				"Tags":     multiSelectValue(t.tags),
			},
			CreatedTime: time.Now().UTC(),
		})
	}
}

func titleValue(s string) json.RawMessage {
	return mustMarshal(map[string]any{
		"type":  "title",
		"title": []map[string]string{{"plain_text": s}},
	})
}

func selectValue(name string) json.RawMessage {
	return mustMarshal(map[string]any{
		"type":   "select",
		"select": map[string]string{"name": name},
	})
}

func numberValue(n float64) json.RawMessage {
	return mustMarshal(map[string]any{"type": "number", "number": n})
}

func checkboxValue(b bool) json.RawMessage {
	return mustMarshal(map[string]any{"type": "checkbox", "checkbox": b})
}

func dateValueJSON(start string) json.RawMessage {
	return mustMarshal(map[string]any{
		"type": "date",
		"date": map[string]string{"start": start},
	})
}

func multiSelectValue(names []string) json.RawMessage {
	opts := make([]map[string]string, len(names))
	for i, n := range names {
		opts[i] = map[string]string{"name": n}
	}
	return mustMarshal(map[string]any{"type": "multi_select", "multi_select": opts})
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
