package storage

import (
	"database/sql"
	"fmt"
)

// migration is one schema step, applied once and recorded in schema_migrations
type migration struct {
	version int
	name    string
	sql     string
}

func (ss *SQLiteStore) migrations() ([]migration, error) {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	return []migration{
		{version: 1, name: "device records", sql: string(schema)},
		{version: 2, name: "run index", sql: `CREATE INDEX IF NOT EXISTS idx_device_records_run ON device_records (run_id)`},
		{version: 3, name: "collected_at index", sql: `CREATE INDEX IF NOT EXISTS idx_device_records_collected ON device_records (collected_at)`},
	}, nil
}

// migrate applies every migration newer than the recorded schema version
func (ss *SQLiteStore) migrate() error {
	_, err := ss.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	current, err := ss.SchemaVersion()
	if err != nil {
		return err
	}

	steps, err := ss.migrations()
	if err != nil {
		return err
	}

	for _, m := range steps {
		if m.version <= current {
			continue
		}
		if err := ss.apply(m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func (ss *SQLiteStore) apply(m migration) error {
	tx, err := ss.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
		return fmt.Errorf("setting migration version: %w", err)
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration, 0 for a new database
func (ss *SQLiteStore) SchemaVersion() (int, error) {
	var version sql.NullInt64
	err := ss.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("checking migration version: %w", err)
	}
	return int(version.Int64), nil
}
