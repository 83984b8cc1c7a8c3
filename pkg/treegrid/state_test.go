package treegrid

import (
	"reflect"
	"testing"
)

type unknownAction struct{}

func (unknownAction) isAction() {}

func TestReduceToggle(t *testing.T) {
	in := State{ExpandedRows: map[string]bool{"a": true}, ActiveRowID: "a"}

	out := Reduce(in, ToggleRowExpanded{RowID: "a"})
	if out.ExpandedRows["a"] {
		t.Error("expected a to be collapsed")
	}
	if !in.ExpandedRows["a"] {
		t.Error("input map was mutated")
	}
	if out.ActiveRowID != "a" {
		t.Errorf("toggle changed active row to %q", out.ActiveRowID)
	}

	out = Reduce(out, ToggleRowExpanded{RowID: "b"})
	if !out.ExpandedRows["b"] {
		t.Error("absent id should toggle to expanded")
	}
}

func TestReduceSetActive(t *testing.T) {
	in := State{ExpandedRows: map[string]bool{"a": true}}
	out := Reduce(in, SetActiveRowID{RowID: "b"})
	if out.ActiveRowID != "b" {
		t.Errorf("active = %q, want b", out.ActiveRowID)
	}
	if !reflect.DeepEqual(out.ExpandedRows, in.ExpandedRows) {
		t.Error("set active changed expansion")
	}
	if in.ActiveRowID != "" {
		t.Error("input state was mutated")
	}
}

func TestReduceUnknownAction(t *testing.T) {
	in := State{ExpandedRows: map[string]bool{"a": true}, ActiveRowID: "a"}
	out := Reduce(in, unknownAction{})
	if !reflect.DeepEqual(in, out) {
		t.Errorf("unknown action changed state: %+v", out)
	}
}

func TestLocalStore(t *testing.T) {
	s := NewLocalStore(InitialState{ExpandedRows: map[string]bool{"x": true}})
	if s.ActiveRowID() != "" {
		t.Errorf("expected no active row, got %q", s.ActiveRowID())
	}
	if !s.ExpandedRows()["x"] {
		t.Error("initial expansion lost")
	}

	Dispatch(s, ToggleRowExpanded{RowID: "x"})
	Dispatch(s, SetActiveRowID{RowID: "y"})
	if s.ExpandedRows()["x"] {
		t.Error("expected x collapsed")
	}
	if s.State().ActiveRowID != "y" {
		t.Errorf("active = %q, want y", s.State().ActiveRowID)
	}
}

func TestNewLocalStoreNilMap(t *testing.T) {
	s := NewLocalStore(InitialState{})
	if s.ExpandedRows() == nil {
		t.Fatal("expected non-nil map")
	}
	s.ToggleRowExpanded("a")
	if !s.ExpandedRows()["a"] {
		t.Error("expected a expanded")
	}
}

func TestFuncStore(t *testing.T) {
	var toggled, activated []string
	s := FuncStore{
		Expanded:    func() map[string]bool { return map[string]bool{"a": true} },
		Active:      func() string { return "a" },
		OnToggle:    func(id string) { toggled = append(toggled, id) },
		OnSetActive: func(id string) { activated = append(activated, id) },
	}
	s.ToggleRowExpanded("a")
	s.SetActiveRowID("b")

	if !reflect.DeepEqual(toggled, []string{"a"}) || !reflect.DeepEqual(activated, []string{"b"}) {
		t.Errorf("callbacks not forwarded: toggled=%v activated=%v", toggled, activated)
	}
	if s.ActiveRowID() != "a" || !s.ExpandedRows()["a"] {
		t.Error("accessors not forwarded")
	}

	var empty FuncStore
	empty.ToggleRowExpanded("a")
	empty.SetActiveRowID("a")
	if empty.ExpandedRows() != nil || empty.ActiveRowID() != "" {
		t.Error("zero FuncStore should read as empty")
	}
}

func TestStateConfigModeSelection(t *testing.T) {
	controlled := FuncStore{}
	tests := []struct {
		name           string
		cfg            StateConfig
		wantControlled bool
	}{
		{"zero value", StateConfig{}, false},
		{"initial only", StateConfig{Initial: &InitialState{}}, false},
		{"controlled only", StateConfig{Controlled: controlled}, true},
		{"initial wins", StateConfig{Initial: &InitialState{}, Controlled: controlled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsControlled(); got != tt.wantControlled {
				t.Errorf("IsControlled = %v, want %v", got, tt.wantControlled)
			}
			store := ResolveStore(tt.cfg)
			_, local := store.(*LocalStore)
			if local == tt.wantControlled {
				t.Errorf("ResolveStore returned %T", store)
			}
		})
	}
}
