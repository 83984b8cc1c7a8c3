package treegrid

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
)

// Options configures a Grid. Only Columns is required; RenderCell defaults
// to DefaultRenderCell and the other renderers to their Default* versions.
type Options struct {
	Data    []TreeNode
	Columns []Column

	RenderCell   CellRenderer
	RenderRow    RowRenderer
	RenderTable  TableRenderer
	RenderHeader HeaderRenderer

	OnRowKeyboardSelect  func(rowID string)
	OnCellKeyboardSelect func(rowID, columnID string)
	// OnFocus is told about every focus move the grid performs.
	OnFocus func(Focus)

	IncludeHeader bool
	State         StateConfig
	KeyMap        *KeyMap
	Theme         *Theme
}

// Grid is an interactive tree-grid component. It is not safe for
// concurrent use; drive it from a bubbletea Update loop.
type Grid struct {
	data    []TreeNode
	columns []Column
	parents map[string]string

	renderCell   CellRenderer
	renderRow    RowRenderer
	renderTable  TableRenderer
	renderHeader HeaderRenderer

	onRowSelect  func(string)
	onCellSelect func(string, string)
	onFocus      func(Focus)

	includeHeader bool
	store         Store
	keys          KeyMap
	theme         Theme

	rows     []FlatRow     // visible rows from the last flatten
	rendered []RenderedRow // committed cell output, parallel to rows
	focus    Focus         // RowID "" = nothing focused yet
	focused  bool

	width, height int
}

// New creates a grid.
func New(opts Options) *Grid {
	g := &Grid{
		columns:       opts.Columns,
		renderCell:    opts.RenderCell,
		renderRow:     opts.RenderRow,
		renderTable:   opts.RenderTable,
		renderHeader:  opts.RenderHeader,
		onRowSelect:   opts.OnRowKeyboardSelect,
		onCellSelect:  opts.OnCellKeyboardSelect,
		onFocus:       opts.OnFocus,
		includeHeader: opts.IncludeHeader,
		store:         ResolveStore(opts.State),
	}
	if g.renderCell == nil {
		g.renderCell = DefaultRenderCell
	}
	if g.renderRow == nil {
		g.renderRow = DefaultRenderRow
	}
	if g.renderTable == nil {
		g.renderTable = DefaultRenderTable
	}
	if g.renderHeader == nil {
		g.renderHeader = DefaultRenderHeader
	}
	if opts.KeyMap != nil {
		g.keys = *opts.KeyMap
	} else {
		g.keys = DefaultKeyMap()
	}
	if opts.Theme != nil {
		g.theme = *opts.Theme
	} else {
		g.theme = DefaultTheme(lipgloss.DefaultRenderer())
	}
	g.SetData(opts.Data)
	return g
}

// SetData replaces the forest. Expansion state, focus and the active row are
// kept where the rows still exist.
func (g *Grid) SetData(forest []TreeNode) {
	g.data = forest
	g.parents = ParentLinks(forest)
	g.refresh()
}

// SetColumns replaces the column definitions.
func (g *Grid) SetColumns(columns []Column) {
	g.columns = columns
}

// SetSize sets the render area. Lines wider than a positive width are
// clipped; the height is kept for callers that scroll the view.
func (g *Grid) SetSize(width, height int) {
	g.width, g.height = width, height
}

// Size returns the render area set by SetSize.
func (g *Grid) Size() (width, height int) { return g.width, g.height }

// Columns returns the column definitions.
func (g *Grid) Columns() []Column { return g.columns }

// IncludeHeader reports whether View starts with a header line.
func (g *Grid) IncludeHeader() bool { return g.includeHeader }

// Store returns the state store in use (internal or caller-supplied).
func (g *Grid) Store() Store { return g.store }

// KeyMap returns the grid's key bindings.
func (g *Grid) KeyMap() KeyMap { return g.keys }

// Rows returns the currently visible rows.
func (g *Grid) Rows() []FlatRow {
	g.refresh()
	return g.rows
}

// ActiveRowID returns the keyboard-active row, or "".
func (g *Grid) ActiveRowID() string {
	return g.store.ActiveRowID()
}

// CurrentFocus returns the focus location inside the grid.
func (g *Grid) CurrentFocus() Focus { return g.focus }

// Focus gives the grid keyboard focus. Focus lands on the previously focused
// location, else on the tabbable row.
func (g *Grid) Focus() {
	g.focused = true
	g.refresh()
	if g.focus.RowID == "" {
		if id := g.TabbableRowID(); id != "" {
			g.moveFocus(RowFocus(id))
		}
	}
}

// Blur removes keyboard focus from the grid. Keys are ignored while blurred.
func (g *Grid) Blur() { g.focused = false }

// Focused reports whether the grid has keyboard focus.
func (g *Grid) Focused() bool { return g.focused }

// TabbableRowID returns the one row carrying tab index 0: the active row if
// set and visible, else the first row.
func (g *Grid) TabbableRowID() string {
	if id := g.store.ActiveRowID(); id != "" && IndexOf(g.rows, id) != -1 {
		return id
	}
	if len(g.rows) > 0 {
		return g.rows[0].ID
	}
	return ""
}

// refresh re-flattens and reconciles the active row and focus against the
// new visible sequence.
func (g *Grid) refresh() {
	g.rows = Flatten(g.data, g.store.ExpandedRows())

	if active := g.store.ActiveRowID(); active != "" && IndexOf(g.rows, active) == -1 {
		next := g.nearestVisibleAncestor(active)
		debug.Log("treegrid: active row %q hidden, moving to %q", active, next)
		g.store.SetActiveRowID(next)
	}

	if g.focus.RowID != "" && IndexOf(g.rows, g.focus.RowID) == -1 {
		if next := g.nearestVisibleAncestor(g.focus.RowID); next != "" {
			g.moveFocus(RowFocus(next))
		} else {
			g.focus = Focus{}
		}
	}
	if g.focused && g.focus.RowID == "" && len(g.rows) > 0 {
		g.moveFocus(RowFocus(g.TabbableRowID()))
	}
}

// nearestVisibleAncestor walks up from id to the first ancestor present in
// the visible rows. Returns "" when id left the forest or no ancestor is
// visible.
func (g *Grid) nearestVisibleAncestor(id string) string {
	parent, ok := g.parents[id]
	for ok && parent != "" {
		if IndexOf(g.rows, parent) != -1 {
			return parent
		}
		parent, ok = g.parents[parent]
	}
	return ""
}

func (g *Grid) moveFocus(f Focus) {
	if f == g.focus {
		return
	}
	g.focus = f
	if g.onFocus != nil {
		g.onFocus(f)
	}
}

// commit renders every visible cell and keeps the result as the tree the
// focus resolver probes.
func (g *Grid) commit() {
	tabbable := g.TabbableRowID()
	expanded := g.store.ExpandedRows()
	g.rendered = make([]RenderedRow, len(g.rows))

	for i, row := range g.rows {
		active := row.ID == tabbable
		cells := make([]Cell, len(g.columns))
		for j, col := range g.columns {
			focused := g.focus.OnCell() && g.focus.RowID == row.ID && g.focus.Cell == j
			cells[j] = g.renderCell(CellContext{
				Row:                 row,
				Column:              col,
				RowDepth:            row.Depth,
				RowIndex:            i,
				ColIndex:            j,
				RowIsKeyboardActive: active,
				RowIsExpanded:       expanded[row.ID],
				Focused:             focused,
				FocusedElement:      focusedElement(g.focus, focused),
				ToggleRowExpanded:   g.toggleRowExpanded,
				CellProps:           cellProps(col, active),
				Theme:               g.theme,
			})
		}
		g.rendered[i] = RenderedRow{ID: row.ID, Cells: cells}
	}
}

func focusedElement(f Focus, focused bool) string {
	if !focused {
		return ""
	}
	return f.Element
}

func (g *Grid) toggleRowExpanded(id string) {
	g.store.ToggleRowExpanded(id)
	g.refresh()
}

func cellProps(col Column, rowActive bool) CellProps {
	props := CellProps{Role: RoleGridCell}
	if col.IsRowHeader {
		props.Role = RoleRowHeader
	}
	if !col.ContentFocusable {
		idx := -1
		if rowActive {
			idx = 0
		}
		props.TabIndex = &idx
	}
	return props
}

// RowProps returns the attribute bundle for the visible row at rowIndex.
func (g *Grid) RowProps(rowIndex int) RowProps {
	if rowIndex < 0 || rowIndex >= len(g.rows) {
		return RowProps{}
	}
	row := g.rows[rowIndex]
	props := RowProps{
		Role:      RoleRow,
		DataID:    row.ID,
		AriaLevel: row.Depth + 1,
		TabIndex:  -1,
		OnKeyDown: func(ev *KeyEvent) { g.HandleKeyDown(ev, rowIndex) },
	}
	if row.HasChildren() {
		expanded := g.store.ExpandedRows()[row.ID]
		props.AriaExpanded = &expanded
	}
	if row.ID == g.TabbableRowID() {
		props.TabIndex = 0
	}
	return props
}

// HandleKeyDown runs the navigation engine for a key raised by the row at
// rowIndex and applies the outcome.
func (g *Grid) HandleKeyDown(ev *KeyEvent, rowIndex int) {
	if !g.focused {
		return
	}
	g.commit()

	targets := make([]FocusTarget, len(g.rendered))
	for i := range g.rendered {
		targets[i] = g.rendered[i]
	}
	d := Decide(Context{
		Rows:        g.rows,
		Rendered:    targets,
		Columns:     g.columns,
		Expanded:    g.store.ExpandedRows(),
		ActiveRowID: g.store.ActiveRowID(),
		Focus:       g.focus,
	}, ev.Key, rowIndex)

	if !d.Handled {
		return
	}
	ev.PreventDefault()
	g.apply(d)
}

// apply performs a decision's effects: state actions first, then the focus
// move, then the select callback.
func (g *Grid) apply(d Decision) {
	for _, a := range d.Actions {
		Dispatch(g.store, a)
	}
	if d.Focus != nil {
		g.moveFocus(*d.Focus)
	}
	g.refresh()

	if d.RowSelect != "" && g.onRowSelect != nil {
		g.onRowSelect(d.RowSelect)
	}
	if d.CellSelect != nil && g.onCellSelect != nil {
		g.onCellSelect(d.CellSelect.RowID, d.CellSelect.ColumnID)
	}
}

// HandleKey routes a key message to the focused row's handler. It reports
// whether the grid consumed the key.
func (g *Grid) HandleKey(msg tea.KeyMsg) bool {
	if !g.focused {
		return false
	}
	k := g.keys.Resolve(msg)
	if k == KeyNone {
		return false
	}
	g.refresh()
	rowIndex := IndexOf(g.rows, g.focus.RowID)
	if rowIndex == -1 {
		return false
	}
	ev := &KeyEvent{Key: k, Msg: msg}
	g.RowProps(rowIndex).OnKeyDown(ev)
	return ev.DefaultPrevented()
}

// Update implements the bubbletea component contract.
func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		g.HandleKey(msg)
	}
	return nil
}

// View renders the grid.
func (g *Grid) View() string {
	defer metrics.Timer(metrics.Render)()

	g.refresh()
	g.commit()
	widths := columnWidths(g.columns, g.rendered)
	tabbable := g.TabbableRowID()
	expanded := g.store.ExpandedRows()

	lines := make([]string, len(g.rows))
	for i, row := range g.rows {
		children := make([]string, len(g.columns))
		for j := range g.columns {
			content := FitWidth(g.rendered[i].Cells[j].Content, widths[j])
			if g.focused && g.focus.OnCell() && g.focus.RowID == row.ID && g.focus.Cell == j {
				content = g.theme.FocusedCell.Render(content)
			}
			children[j] = content
		}
		lines[i] = g.renderRow(RowContext{
			Row:              row,
			RowIndex:         i,
			IsExpanded:       expanded[row.ID],
			IsKeyboardActive: row.ID == tabbable,
			IsFocused:        g.focused && g.focus.RowID == row.ID && !g.focus.OnCell(),
			RowProps:         g.RowProps(i),
			Children:         children,
			Theme:            g.theme,
		})
	}

	header := ""
	if g.includeHeader {
		header = g.renderHeader(HeaderContext{
			Columns:     g.columns,
			Widths:      widths,
			HeaderProps: HeaderProps{Role: RoleColumnHeader},
			Theme:       g.theme,
		})
	}

	out := g.renderTable(TableContext{
		TableProps: TableProps{Role: RoleTreeGrid},
		Header:     header,
		Rows:       lines,
		Theme:      g.theme,
	})
	if g.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(g.width).Render(out)
	}
	return out
}

// FocusedLine returns the line offset of the focused row in View's output,
// counting the header, or -1 when nothing is focused.
func (g *Grid) FocusedLine() int {
	i := IndexOf(g.rows, g.focus.RowID)
	if i == -1 {
		return -1
	}
	if g.includeHeader {
		i++
	}
	return i
}
