package treegrid

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// ARIA roles carried by the grid's props.
const (
	RoleTreeGrid     = "treegrid"
	RoleRow          = "row"
	RoleGridCell     = "gridcell"
	RoleRowHeader    = "rowheader"
	RoleColumnHeader = "columnheader"
)

// TableProps is handed to the table renderer.
type TableProps struct {
	Role string
}

// HeaderProps is handed to the header renderer.
type HeaderProps struct {
	Role string // role of each header cell
}

// RowProps is the attribute bundle for one row.
type RowProps struct {
	Role         string
	DataID       string
	AriaLevel    int   // depth + 1
	AriaExpanded *bool // nil for leaves
	AriaSelected bool
	// TabIndex is 0 for the single tabbable row and -1 for every other row.
	TabIndex  int
	OnKeyDown func(*KeyEvent)
}

// CellProps is the attribute bundle for one cell.
type CellProps struct {
	Role string
	// TabIndex is nil when the column delegates focus to its content.
	TabIndex *int
}

// CellContext is everything a cell renderer gets.
type CellContext struct {
	Row                 FlatRow
	Column              Column
	RowDepth            int
	RowIndex            int
	ColIndex            int
	RowIsKeyboardActive bool
	RowIsExpanded       bool
	// Focused is true when this cell (or an element inside it) has focus.
	Focused           bool
	FocusedElement    string
	ToggleRowExpanded func(id string)
	CellProps         CellProps
	Theme             Theme
}

// RowContext is everything a row renderer gets. Children are the row's
// cells, already laid out to their column widths.
type RowContext struct {
	Row              FlatRow
	RowIndex         int
	IsExpanded       bool
	IsKeyboardActive bool
	IsFocused        bool
	RowProps         RowProps
	Children         []string
	Theme            Theme
}

// HeaderContext is everything a header renderer gets.
type HeaderContext struct {
	Columns     []Column
	Widths      []int
	HeaderProps HeaderProps
	Theme       Theme
}

// TableContext is everything a table renderer gets.
type TableContext struct {
	TableProps TableProps
	Header     string // "" when the header is not included
	Rows       []string
	Theme      Theme
}

type (
	// CellRenderer draws one cell.
	CellRenderer func(CellContext) Cell
	// RowRenderer draws one row from its laid-out cells.
	RowRenderer func(RowContext) string
	// HeaderRenderer draws the header row.
	HeaderRenderer func(HeaderContext) string
	// TableRenderer assembles the header and rows.
	TableRenderer func(TableContext) string
)

// maxAutoWidth caps columns sized from their content.
const maxAutoWidth = 40

// DefaultRenderCell draws row.Fields[column.ID]. The first column carries
// the tree prefix: two columns of indentation per level and an
// expand/collapse indicator.
func DefaultRenderCell(ctx CellContext) Cell {
	content := ctx.Row.Field(ctx.Column.ID)
	if ctx.ColIndex == 0 {
		return Cell{Content: TreePrefix(ctx) + content}
	}
	return Cell{Content: content}
}

// TreePrefix returns the indentation and expand indicator for a row's first
// cell.
func TreePrefix(ctx CellContext) string {
	indicator := "•" // leaf
	if ctx.Row.HasChildren() {
		indicator = "▸"
		if ctx.RowIsExpanded {
			indicator = "▾"
		}
	}
	return strings.Repeat("  ", ctx.RowDepth) + ctx.Theme.TreePrefix.Render(indicator) + " "
}

// DefaultRenderRow joins the cells with a single space and highlights the
// focused row.
func DefaultRenderRow(ctx RowContext) string {
	line := strings.Join(ctx.Children, " ")
	switch {
	case ctx.IsFocused:
		return ctx.Theme.FocusedRow.Render(line)
	case ctx.IsKeyboardActive:
		return ctx.Theme.ActiveRow.Render(line)
	default:
		return ctx.Theme.Base.PaddingLeft(1).Render(line)
	}
}

// DefaultRenderHeader draws the column headers on the header style.
func DefaultRenderHeader(ctx HeaderContext) string {
	parts := make([]string, len(ctx.Columns))
	for i, col := range ctx.Columns {
		width := 0
		if i < len(ctx.Widths) {
			width = ctx.Widths[i]
		}
		parts[i] = FitWidth(col.Header, width)
	}
	return ctx.Theme.Header.PaddingLeft(1).Render(strings.Join(parts, " "))
}

// DefaultRenderTable stacks header and rows, or shows an empty state.
func DefaultRenderTable(ctx TableContext) string {
	var sb strings.Builder
	if ctx.Header != "" {
		sb.WriteString(ctx.Header)
		sb.WriteString("\n")
	}
	if len(ctx.Rows) == 0 {
		sb.WriteString(ctx.Theme.Empty.Render("No rows to display."))
		return sb.String()
	}
	sb.WriteString(strings.Join(ctx.Rows, "\n"))
	return sb.String()
}

// FitWidth pads or truncates s to exactly width display cells. A width of 0
// leaves s unchanged.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w > width {
		return runewidth.Truncate(ansi.Strip(s), width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}

// columnWidths sizes each column from its Width hint, or from the widest of
// its header and rendered cells.
func columnWidths(columns []Column, rows []RenderedRow) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		if col.Width > 0 {
			widths[i] = col.Width
			continue
		}
		w := lipgloss.Width(col.Header)
		for _, r := range rows {
			if i < len(r.Cells) {
				if cw := lipgloss.Width(r.Cells[i].Content); cw > w {
					w = cw
				}
			}
		}
		if w > maxAutoWidth {
			w = maxAutoWidth
		}
		widths[i] = w
	}
	return widths
}
