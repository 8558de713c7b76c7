package history

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/studiowebux/mimic/internal/types"
)

// WriteJSONLines writes one JSON object per entry
func WriteJSONLines(w io.Writer, entries []types.HistoryEntry) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to write history entry %s: %w", entry.ID, err)
		}
	}
	return nil
}

// ClearAndReport deletes every entry and writes {"cleared":N}
func ClearAndReport(w io.Writer, m *Manager) error {
	count, err := m.GetCount()
	if err != nil {
		return err
	}
	if err := m.Clear(); err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(map[string]int{"cleared": count}); err != nil {
		return fmt.Errorf("failed to write clear report: %w", err)
	}
	return nil
}
