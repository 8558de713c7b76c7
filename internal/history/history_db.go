package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/mimic/internal/config"
	"github.com/studiowebux/mimic/internal/migrations"
	"github.com/studiowebux/mimic/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// one process, one writer; also keeps :memory: on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save records one invocation
func (m *Manager) Save(inv *types.Invocation) error {
	var method, url, proxy string
	var headersJSON []byte
	if inv.Spec != nil {
		method = inv.Spec.Method
		url = inv.Spec.URL
		proxy = inv.Spec.Proxy

		var err error
		headersJSON, err = json.Marshal(inv.Spec.Headers)
		if err != nil {
			return fmt.Errorf("failed to marshal headers: %w", err)
		}
	}

	result := inv.Result
	if result == nil {
		return fmt.Errorf("invocation %s has no result", inv.ID)
	}

	query := `
		INSERT INTO invocations (
			id, timestamp, command, method, url, headers, proxy, profile_name,
			kind, status_code, blocked, body_size, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		inv.ID,
		inv.Started.UTC().Format(timestampLayout),
		inv.Command,
		method,
		url,
		string(headersJSON),
		proxy,
		inv.Profile,
		result.Kind.String(),
		result.StatusCode,
		result.Blocked,
		len(result.Text),
		inv.Duration.Milliseconds(),
		result.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

// Load returns the most recent entries first; limit <= 0 returns all
func (m *Manager) Load(limit int) ([]types.HistoryEntry, error) {
	query := `
		SELECT id, timestamp, command, COALESCE(method, ''), COALESCE(url, ''),
		       COALESCE(headers, ''), COALESCE(proxy, ''), COALESCE(profile_name, ''),
		       kind, status_code, blocked, body_size, duration_ms, COALESCE(error, '')
		FROM invocations
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

func (m *Manager) scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var entry types.HistoryEntry
		var timestamp string
		var headersJSON string

		err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.Command,
			&entry.Method,
			&entry.URL,
			&headersJSON,
			&entry.Proxy,
			&entry.Profile,
			&entry.Kind,
			&entry.StatusCode,
			&entry.Blocked,
			&entry.BodySize,
			&entry.Duration,
			&entry.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if headersJSON != "" {
			if err := json.Unmarshal([]byte(headersJSON), &entry.Headers); err != nil {
				entry.Headers = nil
			}
		}

		entry.Timestamp = parseTimestamp(timestamp).Format(time.RFC3339)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// parseTimestamp accepts the stored UTC layout and RFC3339, which
// go-sqlite3 returns for DATETIME columns
func parseTimestamp(value string) time.Time {
	if t, err := time.ParseInLocation(timestampLayout, value, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM invocations")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM invocations").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
