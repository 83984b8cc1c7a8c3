package treegrid

// Focus is a focus location inside the grid. Cell is -1 when the row itself
// has focus; Element names the focused control when a cell's content, not
// the cell wrapper, holds focus.
type Focus struct {
	RowID   string
	Cell    int
	Element string
}

// RowFocus focuses a whole row.
func RowFocus(rowID string) Focus {
	return Focus{RowID: rowID, Cell: -1}
}

// CellFocus focuses a cell, or the named element inside it.
func CellFocus(rowID string, cell int, element string) Focus {
	return Focus{RowID: rowID, Cell: cell, Element: element}
}

// OnCell reports whether focus is inside a cell rather than on a row.
func (f Focus) OnCell() bool {
	return f.RowID != "" && f.Cell >= 0
}

// CellRef identifies a cell by row and column ID.
type CellRef struct {
	RowID    string
	ColumnID string
}

// Context is everything the engine reads to decide on a key press.
type Context struct {
	Rows        []FlatRow
	Rendered    []FocusTarget // committed render output, parallel to Rows
	Columns     []Column
	Expanded    map[string]bool
	ActiveRowID string
	Focus       Focus
}

// Decision is the outcome of one key press. Applying it is the caller's job:
// dispatch Actions in order, move focus, then fire the select callback.
type Decision struct {
	// Handled means the key was consumed (preventDefault).
	Handled    bool
	Actions    []Action
	Focus      *Focus
	RowSelect  string
	CellSelect *CellRef
}

// Decide computes the effect of key pressed while the row at rowIndex (in
// ctx.Rows) holds focus, either on itself or on one of its cells.
func Decide(ctx Context, k Key, rowIndex int) Decision {
	if rowIndex < 0 || rowIndex >= len(ctx.Rows) {
		return Decision{}
	}
	n := navigator{ctx: ctx, rowIndex: rowIndex, row: ctx.Rows[rowIndex]}
	n.onCell = ctx.Focus.OnCell() && ctx.Focus.RowID == n.row.ID

	switch k {
	case KeyUp:
		n.vertical(Previous)
	case KeyDown:
		n.vertical(Next)
	case KeyLeft:
		n.horizontal(Previous)
	case KeyRight:
		n.horizontal(Next)
	case KeyEnter:
		n.enter()
	default:
		return Decision{}
	}
	n.d.Handled = true
	return n.d
}

type navigator struct {
	ctx      Context
	rowIndex int
	row      FlatRow
	onCell   bool
	d        Decision
}

func (n *navigator) rendered(i int) FocusTarget {
	if i < 0 || i >= len(n.ctx.Rendered) {
		return nil
	}
	return n.ctx.Rendered[i]
}

func (n *navigator) focus(target Focus) {
	n.d.Focus = &target
	if target.RowID != n.ctx.ActiveRowID {
		n.d.Actions = append(n.d.Actions, SetActiveRowID{RowID: target.RowID})
	}
}

// focusCell focuses the first control inside the cell, else the cell itself.
func (n *navigator) focusCell(rowIndex, cell int) {
	element, _ := FindFocusableElementForCellIndex(n.rendered(rowIndex), cell)
	n.focus(CellFocus(n.ctx.Rows[rowIndex].ID, cell, element))
}

func (n *navigator) toggle() {
	n.d.Actions = append(n.d.Actions, ToggleRowExpanded{RowID: n.row.ID})
}

func (n *navigator) isExpanded() bool {
	return n.row.HasChildren() && n.ctx.Expanded[n.row.ID]
}

func (n *navigator) vertical(dir Direction) {
	if !n.onCell {
		target := n.rowIndex + dir.step()
		if target < 0 {
			target = 0
		}
		if target > len(n.ctx.Rows)-1 {
			target = len(n.ctx.Rows) - 1
		}
		if target != n.rowIndex {
			n.focus(RowFocus(n.ctx.Rows[target].ID))
		}
		return
	}

	// Walk rows in dir at the same cell index; stop at the first cell that
	// can take focus, or at the table edge.
	cell := n.ctx.Focus.Cell
	for i := n.rowIndex + dir.step(); i >= 0 && i < len(n.ctx.Rows); i += dir.step() {
		row := n.rendered(i)
		if row == nil {
			continue
		}
		if cellQualifies(row, n.ctx.Columns, cell) {
			n.focusCell(i, cell)
			return
		}
	}
}

func (n *navigator) horizontal(dir Direction) {
	if n.onCell {
		target := FindNextFocusableCellIndexInRow(n.rendered(n.rowIndex), n.ctx.Columns, n.ctx.Focus.Cell, dir)
		switch {
		case target != -1:
			n.focusCell(n.rowIndex, target)
		case dir == Previous:
			// Leftmost actionable cell: hand focus back to the row.
			n.focus(RowFocus(n.row.ID))
		}
		return
	}

	if dir == Next {
		switch {
		case n.row.HasChildren() && !n.ctx.Expanded[n.row.ID]:
			n.toggle()
		case n.row.HasChildren():
			// The first cell wrapper, not a control inside it.
			n.focus(CellFocus(n.row.ID, 0, ""))
		default:
			if first := FindNextFocusableCellIndexInRow(n.rendered(n.rowIndex), n.ctx.Columns, -1, Next); first != -1 {
				n.focusCell(n.rowIndex, first)
			}
		}
		return
	}

	switch {
	case n.isExpanded():
		n.toggle()
	case n.row.Depth > 0:
		if parent := IndexOf(n.ctx.Rows, n.row.ParentID); parent != -1 {
			n.focus(RowFocus(n.ctx.Rows[parent].ID))
		}
	}
}

func (n *navigator) enter() {
	if n.onCell {
		cell := n.ctx.Focus.Cell
		if cell < len(n.ctx.Columns) {
			n.d.CellSelect = &CellRef{RowID: n.row.ID, ColumnID: n.ctx.Columns[cell].ID}
		}
		return
	}
	n.d.RowSelect = n.row.ID
}
