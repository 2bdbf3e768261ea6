package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidRecord = errors.New("invalid record")

// Record is one emitted device document with the context it was collected in
type Record struct {
	ID          string          `json:"id"`
	RunID       string          `json:"run_id"`
	Group       string          `json:"group"`
	Kind        string          `json:"kind"`
	Target      string          `json:"target"`
	CollectedAt time.Time       `json:"collected_at"`
	Document    json.RawMessage `json:"document"`
}

// RecordStore keeps the history of emitted device records
type RecordStore interface {
	SaveRecord(ctx context.Context, rec *Record) error
	ListRecords(ctx context.Context, target string, limit int) ([]Record, error)
	Close() error
}
