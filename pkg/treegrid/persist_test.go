package treegrid

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadExpandedRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	if err := SaveExpanded(dir, map[string]bool{"a": true, "b": false}); err != nil {
		t.Fatalf("SaveExpanded: %v", err)
	}
	got := LoadExpanded(dir)
	if !got["a"] || got["b"] || len(got) != 2 {
		t.Errorf("unexpected map: %v", got)
	}
}

func TestLoadExpandedFallbacks(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		if got := LoadExpanded(""); got == nil || len(got) != 0 {
			t.Errorf("got %v", got)
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if got := LoadExpanded(t.TempDir()); len(got) != 0 {
			t.Errorf("got %v", got)
		}
	})
	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(StatePath(dir), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := LoadExpanded(dir); len(got) != 0 {
			t.Errorf("got %v", got)
		}
	})
	t.Run("future version", func(t *testing.T) {
		dir := t.TempDir()
		data := []byte(`{"version": 99, "expanded": {"a": true}}`)
		if err := os.WriteFile(StatePath(dir), data, 0o644); err != nil {
			t.Fatal(err)
		}
		if got := LoadExpanded(dir); len(got) != 0 {
			t.Errorf("got %v", got)
		}
	})
}

func TestPersistentStoreWritesOnToggle(t *testing.T) {
	dir := t.TempDir()
	store := NewPersistentStore(NewLocalStore(InitialState{}), dir)

	store.ToggleRowExpanded("a")
	store.SetActiveRowID("a")

	if !LoadExpanded(dir)["a"] {
		t.Error("toggle was not persisted")
	}
	if store.ActiveRowID() != "a" {
		t.Errorf("active = %q, want a", store.ActiveRowID())
	}
	if store.Dir() != dir {
		t.Errorf("Dir = %q", store.Dir())
	}
}

func TestPersistentStoreDisabled(t *testing.T) {
	store := NewPersistentStore(NewLocalStore(InitialState{}), "")
	store.ToggleRowExpanded("a")
	if !store.ExpandedRows()["a"] {
		t.Error("inner store not updated")
	}
}
