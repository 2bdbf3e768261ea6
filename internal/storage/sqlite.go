package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

var _ RecordStore = (*SQLiteStore)(nil)

// SQLiteStore implements RecordStore with SQLite backend
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the record database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	// Open database with SQLite settings
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer
	db.SetMaxIdleConns(1)

	ss := &SQLiteStore{
		db:   db,
		path: path,
	}

	if err := ss.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return ss, nil
}

// Path returns the database file path
func (ss *SQLiteStore) Path() string {
	return ss.path
}

// Close closes the database connection
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}

// SaveRecord inserts a record, assigning an ID and timestamp when missing
func (ss *SQLiteStore) SaveRecord(ctx context.Context, rec *Record) error {
	if rec.Target == "" || len(rec.Document) == 0 {
		return fmt.Errorf("%w: target and document are required", ErrInvalidRecord)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CollectedAt.IsZero() {
		rec.CollectedAt = time.Now()
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, err := ss.db.ExecContext(ctx, `
		INSERT INTO device_records (id, run_id, group_name, kind, target, collected_at, document)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RunID, rec.Group, rec.Kind, rec.Target, rec.CollectedAt.UnixMilli(), string(rec.Document))
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	return nil
}

// ListRecords returns the newest records first, optionally for one target. A
// limit of zero or less returns all records.
func (ss *SQLiteStore) ListRecords(ctx context.Context, target string, limit int) ([]Record, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := `
		SELECT id, run_id, group_name, kind, target, collected_at, document
		FROM device_records
		WHERE (? = '' OR target = ?)
		ORDER BY collected_at DESC, rowid DESC
	`
	args := []any{target, target}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			collected int64
			document  string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Group, &rec.Kind, &rec.Target, &collected, &document); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.CollectedAt = time.UnixMilli(collected)
		rec.Document = []byte(document)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// PruneRecords deletes records collected before cutoff and returns how many
// were removed.
func (ss *SQLiteStore) PruneRecords(ctx context.Context, cutoff time.Time) (int, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.db.ExecContext(ctx, `
		DELETE FROM device_records
		WHERE collected_at < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("deleting old records: %w", err)
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}
