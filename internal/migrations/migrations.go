package migrations

import (
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add indices for result kind and status filtering",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_invocations_kind ON invocations(kind);
			CREATE INDEX IF NOT EXISTS idx_invocations_status ON invocations(status_code);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_invocations_kind;
			DROP INDEX IF EXISTS idx_invocations_status;
		`,
	},
	{
		Version: 2,
		Name:    "Add composite index for blocked responses per proxy",
		Up: `
			-- Lets callers find proxies that keep hitting block pages
			CREATE INDEX IF NOT EXISTS idx_invocations_blocked_proxy ON invocations(blocked, proxy, timestamp DESC);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_invocations_blocked_proxy;
		`,
	},
}

// InitSchema creates the tables required by the history store.
// This must be called before running migrations to ensure all tables exist
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		command TEXT NOT NULL,
		method TEXT,
		url TEXT,
		headers TEXT,
		proxy TEXT,
		profile_name TEXT,
		kind TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		blocked INTEGER NOT NULL DEFAULT 0,
		body_size INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_invocations_timestamp ON invocations(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_invocations_url ON invocations(url);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Run executes all pending migrations on the database
func Run(db *sql.DB) error {
	// Initialize schema first to ensure all tables exist
	if err := InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Create migrations tracking table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	// Apply pending migrations
	for _, migration := range AllMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		if _, err := db.Exec(migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		_, err = db.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}
