package treegrid

// State is the navigation state of a grid.
type State struct {
	ExpandedRows map[string]bool
	ActiveRowID  string // "" until the first keyboard interaction
}

// Action is a state transition. The concrete types are ToggleRowExpanded
// and SetActiveRowID.
type Action interface {
	isAction()
}

// ToggleRowExpanded flips the expansion flag of a row.
type ToggleRowExpanded struct {
	RowID string
}

func (ToggleRowExpanded) isAction() {}

// SetActiveRowID replaces the keyboard-active row.
type SetActiveRowID struct {
	RowID string
}

func (SetActiveRowID) isAction() {}

// Reduce applies an action to a state and returns the new state. The input
// state, including its map, is never modified.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ToggleRowExpanded:
		next := make(map[string]bool, len(s.ExpandedRows)+1)
		for id, v := range s.ExpandedRows {
			next[id] = v
		}
		next[a.RowID] = !s.ExpandedRows[a.RowID]
		return State{ExpandedRows: next, ActiveRowID: s.ActiveRowID}
	case SetActiveRowID:
		return State{ExpandedRows: s.ExpandedRows, ActiveRowID: a.RowID}
	default:
		return s
	}
}

// Store holds navigation state. A grid reads and writes state only through
// this interface, so a caller can own the state (controlled mode) by
// providing its own implementation.
type Store interface {
	ExpandedRows() map[string]bool
	ActiveRowID() string
	ToggleRowExpanded(id string)
	SetActiveRowID(id string)
}

// Dispatch applies an action to any Store.
func Dispatch(s Store, a Action) {
	switch a := a.(type) {
	case ToggleRowExpanded:
		s.ToggleRowExpanded(a.RowID)
	case SetActiveRowID:
		s.SetActiveRowID(a.RowID)
	}
}

// InitialState seeds an internally owned store.
type InitialState struct {
	ExpandedRows map[string]bool
}

// LocalStore is the uncontrolled Store: state lives inside the grid and
// changes only through Reduce.
type LocalStore struct {
	state State
}

// NewLocalStore creates a store with the given initial expansion and no
// active row. A nil map means everything starts collapsed.
func NewLocalStore(initial InitialState) *LocalStore {
	expanded := initial.ExpandedRows
	if expanded == nil {
		expanded = make(map[string]bool)
	}
	return &LocalStore{state: State{ExpandedRows: expanded}}
}

// State returns a snapshot of the current state.
func (s *LocalStore) State() State { return s.state }

func (s *LocalStore) ExpandedRows() map[string]bool { return s.state.ExpandedRows }
func (s *LocalStore) ActiveRowID() string           { return s.state.ActiveRowID }

func (s *LocalStore) ToggleRowExpanded(id string) {
	s.state = Reduce(s.state, ToggleRowExpanded{RowID: id})
}

func (s *LocalStore) SetActiveRowID(id string) {
	s.state = Reduce(s.state, SetActiveRowID{RowID: id})
}

// FuncStore adapts caller-provided accessors into a Store. Nil mutators
// turn the corresponding request into a no-op.
type FuncStore struct {
	Expanded    func() map[string]bool
	Active      func() string
	OnToggle    func(id string)
	OnSetActive func(id string)
}

func (f FuncStore) ExpandedRows() map[string]bool {
	if f.Expanded == nil {
		return nil
	}
	return f.Expanded()
}

func (f FuncStore) ActiveRowID() string {
	if f.Active == nil {
		return ""
	}
	return f.Active()
}

func (f FuncStore) ToggleRowExpanded(id string) {
	if f.OnToggle != nil {
		f.OnToggle(id)
	}
}

func (f FuncStore) SetActiveRowID(id string) {
	if f.OnSetActive != nil {
		f.OnSetActive(id)
	}
}

// StateConfig selects how a grid gets its state. Setting Initial (even to an
// empty InitialState) selects uncontrolled mode; otherwise Controlled is used
// when non-nil. The zero value is uncontrolled with everything collapsed.
type StateConfig struct {
	Initial    *InitialState
	Controlled Store
}

// IsControlled reports whether the config hands state ownership to the caller.
func (c StateConfig) IsControlled() bool {
	return c.Initial == nil && c.Controlled != nil
}

// ResolveStore returns the Store a grid should use for this config.
func ResolveStore(c StateConfig) Store {
	if c.IsControlled() {
		return c.Controlled
	}
	var initial InitialState
	if c.Initial != nil {
		initial = *c.Initial
	}
	return NewLocalStore(initial)
}
