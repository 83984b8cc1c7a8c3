package treegrid

import (
	"reflect"
	"testing"
)

var engineColumns = []Column{{ID: "name"}, {ID: "size"}, {ID: "action", ContentFocusable: true}}

// engineForest: a(a1, a2), b. a2 has no size, b has a button.
func engineForest() []TreeNode {
	return []TreeNode{
		{ID: "a", Fields: map[string]string{"name": "A", "size": "10"}, Children: []TreeNode{
			{ID: "a1", Fields: map[string]string{"name": "A1", "size": "4"}},
			{ID: "a2", Fields: map[string]string{"name": "A2"}},
		}},
		{ID: "b", Fields: map[string]string{"name": "B", "size": "1", "action": "[open]"}},
	}
}

func engineContext(expanded map[string]bool, active string, focus Focus) Context {
	rows := Flatten(engineForest(), expanded)
	rendered := make([]FocusTarget, len(rows))
	for i, r := range rows {
		cells := make([]Cell, len(engineColumns))
		for j, c := range engineColumns {
			cells[j] = TextCell(r.Field(c.ID))
		}
		if r.ID == "b" {
			cells[2].Focusables = []string{"open"}
		}
		rendered[i] = RenderedRow{ID: r.ID, Cells: cells}
	}
	return Context{
		Rows:        rows,
		Rendered:    rendered,
		Columns:     engineColumns,
		Expanded:    expanded,
		ActiveRowID: active,
		Focus:       focus,
	}
}

func focusPtr(f Focus) *Focus { return &f }

// TestDecideRightOnExpandedParentFocusesWrapper verifies the first cell
// itself takes focus even when it holds a control.
func TestDecideRightOnExpandedParentFocusesWrapper(t *testing.T) {
	ctx := engineContext(map[string]bool{"a": true}, "a", RowFocus("a"))
	row := ctx.Rendered[0].(RenderedRow)
	row.Cells[0].Focusables = []string{"edit"}
	ctx.Rendered[0] = row

	d := Decide(ctx, KeyRight, 0)
	if d.Focus == nil || *d.Focus != CellFocus("a", 0, "") {
		t.Errorf("focus = %+v, want cell 0 wrapper", d.Focus)
	}
}

func TestDecide(t *testing.T) {
	open := map[string]bool{"a": true}
	tests := []struct {
		name     string
		expanded map[string]bool
		active   string
		focus    Focus
		key      Key
		row      int
		want     Decision
	}{
		{
			name: "right on collapsed parent expands and keeps focus",
			focus: RowFocus("a"), active: "a", key: KeyRight, row: 0,
			want: Decision{Handled: true, Actions: []Action{ToggleRowExpanded{RowID: "a"}}},
		},
		{
			name: "right on expanded parent focuses first cell", expanded: open,
			focus: RowFocus("a"), active: "a", key: KeyRight, row: 0,
			want: Decision{Handled: true, Focus: focusPtr(CellFocus("a", 0, ""))},
		},
		{
			name: "right on leaf focuses first qualifying cell", expanded: open,
			focus: RowFocus("a1"), active: "a1", key: KeyRight, row: 1,
			want: Decision{Handled: true, Focus: focusPtr(CellFocus("a1", 0, ""))},
		},
		{
			name: "left on expanded parent collapses", expanded: open,
			focus: RowFocus("a"), active: "a", key: KeyLeft, row: 0,
			want: Decision{Handled: true, Actions: []Action{ToggleRowExpanded{RowID: "a"}}},
		},
		{
			name: "left on child focuses parent row", expanded: open,
			focus: RowFocus("a2"), active: "a2", key: KeyLeft, row: 2,
			want: Decision{
				Handled: true,
				Actions: []Action{SetActiveRowID{RowID: "a"}},
				Focus:   focusPtr(RowFocus("a")),
			},
		},
		{
			name:  "left on collapsed root does nothing",
			focus: RowFocus("b"), active: "b", key: KeyLeft, row: 1,
			want: Decision{Handled: true},
		},
		{
			name:  "down moves to next row",
			focus: RowFocus("a"), active: "a", key: KeyDown, row: 0,
			want: Decision{
				Handled: true,
				Actions: []Action{SetActiveRowID{RowID: "b"}},
				Focus:   focusPtr(RowFocus("b")),
			},
		},
		{
			name:  "up on first row stays",
			focus: RowFocus("a"), active: "a", key: KeyUp, row: 0,
			want: Decision{Handled: true},
		},
		{
			name:  "down on last row stays",
			focus: RowFocus("b"), active: "b", key: KeyDown, row: 1,
			want: Decision{Handled: true},
		},
		{
			name: "down in cell skips rows without content", expanded: open,
			focus: CellFocus("a1", 1, ""), active: "a1", key: KeyDown, row: 1,
			want: Decision{
				Handled: true,
				Actions: []Action{SetActiveRowID{RowID: "b"}},
				Focus:   focusPtr(CellFocus("b", 1, "")),
			},
		},
		{
			name: "down in cell to a control focuses the control", expanded: open,
			focus: CellFocus("a2", 2, ""), active: "a2", key: KeyDown, row: 2,
			want: Decision{
				Handled: true,
				Actions: []Action{SetActiveRowID{RowID: "b"}},
				Focus:   focusPtr(CellFocus("b", 2, "open")),
			},
		},
		{
			name: "up in cell at top stays", expanded: open,
			focus: CellFocus("a", 0, ""), active: "a", key: KeyUp, row: 0,
			want: Decision{Handled: true},
		},
		{
			name:  "right in cell moves within row",
			focus: CellFocus("b", 0, ""), active: "b", key: KeyRight, row: 1,
			want: Decision{Handled: true, Focus: focusPtr(CellFocus("b", 1, ""))},
		},
		{
			name:  "right in last cell stays",
			focus: CellFocus("b", 2, "open"), active: "b", key: KeyRight, row: 1,
			want: Decision{Handled: true},
		},
		{
			name:  "left in first cell returns to row",
			focus: CellFocus("b", 0, ""), active: "b", key: KeyLeft, row: 1,
			want: Decision{Handled: true, Focus: focusPtr(RowFocus("b"))},
		},
		{
			name:  "enter on row selects row",
			focus: RowFocus("b"), active: "b", key: KeyEnter, row: 1,
			want: Decision{Handled: true, RowSelect: "b"},
		},
		{
			name:  "enter in cell selects cell",
			focus: CellFocus("b", 1, ""), active: "b", key: KeyEnter, row: 1,
			want: Decision{Handled: true, CellSelect: &CellRef{RowID: "b", ColumnID: "size"}},
		},
		{
			name:  "unknown key is not handled",
			focus: RowFocus("a"), active: "a", key: KeyNone, row: 0,
			want: Decision{},
		},
		{
			name:  "out of range row is not handled",
			focus: RowFocus("a"), active: "a", key: KeyDown, row: 7,
			want: Decision{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expanded := tt.expanded
			if expanded == nil {
				expanded = map[string]bool{}
			}
			got := Decide(engineContext(expanded, tt.active, tt.focus), tt.key, tt.row)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestDecideLeftTwice walks the collapse-then-jump-to-parent sequence
func TestDecideLeftTwice(t *testing.T) {
	forest := []TreeNode{{ID: "r", Children: []TreeNode{{ID: "c", Children: []TreeNode{{ID: "g"}}}}}}
	store := NewLocalStore(InitialState{ExpandedRows: map[string]bool{"r": true, "c": true}})
	store.SetActiveRowID("c")

	ctx := func() Context {
		return Context{
			Rows:        Flatten(forest, store.ExpandedRows()),
			Expanded:    store.ExpandedRows(),
			ActiveRowID: store.ActiveRowID(),
			Focus:       RowFocus("c"),
		}
	}

	d := Decide(ctx(), KeyLeft, 1)
	for _, a := range d.Actions {
		Dispatch(store, a)
	}
	if store.ExpandedRows()["c"] {
		t.Fatal("first left should collapse c")
	}

	d = Decide(ctx(), KeyLeft, 1)
	for _, a := range d.Actions {
		Dispatch(store, a)
	}
	if store.ActiveRowID() != "r" {
		t.Errorf("second left: active = %q, want r", store.ActiveRowID())
	}
	if d.Focus == nil || d.Focus.RowID != "r" {
		t.Errorf("second left: focus = %+v, want row r", d.Focus)
	}
}
