package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates a temporary store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history", "records.db"))
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	records := []*Record{
		{RunID: "run-1", Group: "core_switches", Kind: "switch", Target: "sw-core-01", CollectedAt: base, Document: json.RawMessage(`{"target":"sw-core-01","ports":{}}`)},
		{RunID: "run-1", Group: "edge_router", Kind: "router", Target: "rt-edge-01", CollectedAt: base.Add(time.Second), Document: json.RawMessage(`{"target":"rt-edge-01","ports":{}}`)},
		{RunID: "run-2", Group: "core_switches", Kind: "switch", Target: "sw-core-01", CollectedAt: base.Add(time.Minute), Document: json.RawMessage(`{"target":"sw-core-01","uptime":"5","ports":{}}`)},
	}
	for _, rec := range records {
		if err := store.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}
		if rec.ID == "" {
			t.Error("SaveRecord() did not assign an ID")
		}
	}

	all, err := store.ListRecords(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListRecords() returned %d records, want 3", len(all))
	}
	if all[0].RunID != "run-2" {
		t.Errorf("newest record run = %q, want run-2", all[0].RunID)
	}

	sw, err := store.ListRecords(ctx, "sw-core-01", 1)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(sw) != 1 {
		t.Fatalf("ListRecords() returned %d records, want 1", len(sw))
	}
	got := sw[0]
	if got.ID != records[2].ID || got.Group != "core_switches" || got.Kind != "switch" {
		t.Errorf("record = %+v", got)
	}
	if !got.CollectedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("CollectedAt = %v, want %v", got.CollectedAt, base.Add(time.Minute))
	}
	if string(got.Document) != `{"target":"sw-core-01","uptime":"5","ports":{}}` {
		t.Errorf("Document = %s", got.Document)
	}
}

func TestSQLiteStore_InvalidRecord(t *testing.T) {
	store := setupTestStore(t)

	tests := []struct {
		name string
		rec  Record
	}{
		{"missing target", Record{Document: json.RawMessage(`{}`)}},
		{"missing document", Record{Target: "sw-core-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveRecord(context.Background(), &tt.rec); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("SaveRecord() error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := store.SaveRecord(context.Background(), &Record{Target: "sw", Document: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}
	store.Close()

	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	records, err := store.ListRecords(context.Background(), "sw", 0)
	if err != nil || len(records) != 1 {
		t.Errorf("ListRecords() after reopen = %d records, %v", len(records), err)
	}
	if store.Path() != path {
		t.Errorf("Path() = %q", store.Path())
	}
}

func TestSQLiteStore_Migrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	steps, err := store.migrations()
	if err != nil {
		t.Fatalf("migrations() error = %v", err)
	}
	want := steps[len(steps)-1].version

	version, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != want {
		t.Errorf("SchemaVersion() = %d, want %d", version, want)
	}
	store.Close()

	// Reopening must not reapply anything
	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	var applied int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if applied != len(steps) {
		t.Errorf("schema_migrations has %d rows, want %d", applied, len(steps))
	}
}

func TestSQLiteStore_PruneRecords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, age := range []time.Duration{48 * time.Hour, 30 * time.Hour, time.Hour} {
		rec := &Record{
			RunID:       "run",
			Target:      "sw-core-01",
			CollectedAt: now.Add(-age),
			Document:    json.RawMessage(`{"n":` + string(rune('0'+i)) + `}`),
		}
		if err := store.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}
	}

	removed, err := store.PruneRecords(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneRecords() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("PruneRecords() removed %d, want 2", removed)
	}

	left, err := store.ListRecords(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(left) != 1 || string(left[0].Document) != `{"n":2}` {
		t.Errorf("remaining records = %+v", left)
	}
}
