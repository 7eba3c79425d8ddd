package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// migrate brings the schema up to currentSchemaVersion.
func (db *DB) migrate(ctx context.Context) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS schema_meta (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)
		`); err != nil {
			return fmt.Errorf("failed to create schema_meta table: %w", err)
		}

		version, err := schemaVersion(tx)
		if err != nil {
			return err
		}
		if version == currentSchemaVersion {
			db.logger.Debug("Database schema is up to date", "version", version)
			return nil
		}
		if version > currentSchemaVersion {
			return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
		}

		if version < 1 {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS kv_entries (
					scope TEXT NOT NULL,
					key TEXT NOT NULL,
					value_json TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					PRIMARY KEY (scope, key)
				)
			`); err != nil {
				return fmt.Errorf("failed to create kv_entries table: %w", err)
			}
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_meta (key, value) VALUES ('schema_version', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			fmt.Sprintf("%d", currentSchemaVersion),
		); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

func schemaVersion(tx *sql.Tx) (int, error) {
	var raw string
	err := tx.QueryRow(`SELECT value FROM schema_meta WHERE key = 'schema_version'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	var version int
	if _, err := fmt.Sscanf(raw, "%d", &version); err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %w", raw, err)
	}
	return version, nil
}
