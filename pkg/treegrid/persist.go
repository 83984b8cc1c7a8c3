package treegrid

import (
	"log"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// SavedState is the on-disk form of a grid's expansion state, written to
// <dir>/treegrid-state.json so expand/collapse survives restarts.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "node-1": true,
//	    "node-2": false
//	  }
//	}
//
// Only rows the user has toggled appear; absent rows use the default
// (collapsed). Corrupted or missing files fall back to defaults.
type SavedState struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
}

// SavedStateVersion is the current schema version.
const SavedStateVersion = 1

const stateFileName = "treegrid-state.json"

// StatePath returns the path of the state file inside dir.
func StatePath(dir string) string {
	return filepath.Join(dir, stateFileName)
}

// LoadExpanded reads the persisted expansion map from dir. A missing,
// unreadable or corrupt file yields an empty map; corruption is logged.
func LoadExpanded(dir string) map[string]bool {
	expanded := make(map[string]bool)
	if dir == "" {
		return expanded
	}

	data, err := os.ReadFile(StatePath(dir))
	if err != nil {
		// Missing file = first run
		return expanded
	}

	var state SavedState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("warning: invalid tree-grid state file, using defaults: %v", err)
		return expanded
	}
	if state.Version != SavedStateVersion {
		log.Printf("warning: unsupported tree-grid state version %d, using defaults", state.Version)
		return expanded
	}
	for id, v := range state.Expanded {
		expanded[id] = v
	}
	return expanded
}

// SaveExpanded writes the expansion map to dir.
func SaveExpanded(dir string, expanded map[string]bool) error {
	state := SavedState{
		Version:  SavedStateVersion,
		Expanded: expanded,
	}
	if state.Expanded == nil {
		state.Expanded = map[string]bool{}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(StatePath(dir), data, 0o644)
}

// PersistentStore wraps a Store and saves the expansion map after every
// toggle. Write failures are logged and never interrupt navigation.
type PersistentStore struct {
	Store
	dir string
}

// NewPersistentStore wraps inner. An empty dir disables persistence.
func NewPersistentStore(inner Store, dir string) *PersistentStore {
	return &PersistentStore{Store: inner, dir: dir}
}

// Dir returns the directory the state file is written to.
func (p *PersistentStore) Dir() string { return p.dir }

func (p *PersistentStore) ToggleRowExpanded(id string) {
	p.Store.ToggleRowExpanded(id)
	if p.dir == "" {
		return
	}
	if err := SaveExpanded(p.dir, p.Store.ExpandedRows()); err != nil {
		log.Printf("warning: failed to write tree-grid state to %s: %v", StatePath(p.dir), err)
	}
}
