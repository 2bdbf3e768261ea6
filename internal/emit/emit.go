// Package emit delivers device records: JSON lines on a writer, the SQLite
// history store, or several sinks at once.
package emit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/martinsuchenak/snmpinfo/internal/storage"
)

// Meta describes where and when a record was collected.
type Meta struct {
	RunID       string
	Group       string
	Kind        model.Kind
	CollectedAt time.Time
}

// Emitter receives every successfully built device record. Implementations
// must be safe for concurrent use.
type Emitter interface {
	Emit(ctx context.Context, meta Meta, record *model.DeviceRecord) error
}

// JSONLines writes one compact JSON document per line.
type JSONLines struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONLines creates an emitter writing to w
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

func (j *JSONLines) Emit(ctx context.Context, meta Meta, record *model.DeviceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.w.Write(data)
	return err
}

// Store saves records in a RecordStore.
type Store struct {
	store storage.RecordStore
}

// NewStore creates an emitter on top of store
func NewStore(store storage.RecordStore) *Store {
	return &Store{store: store}
}

func (s *Store) Emit(ctx context.Context, meta Meta, record *model.DeviceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.store.SaveRecord(ctx, &storage.Record{
		RunID:       meta.RunID,
		Group:       meta.Group,
		Kind:        string(meta.Kind),
		Target:      record.Target,
		CollectedAt: meta.CollectedAt,
		Document:    data,
	})
}

// Multi emits to every emitter and joins their errors.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, meta Meta, record *model.DeviceRecord) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, meta, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
