package treegrid

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Direction is a scan direction along a row or a column.
type Direction int

const (
	Next     Direction = iota // rightward / downward
	Previous                  // leftward / upward
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

func (d Direction) step() int {
	if d == Previous {
		return -1
	}
	return 1
}

// FocusTarget is the read-only view of one committed, rendered row that the
// focus resolver probes.
type FocusTarget interface {
	CellCount() int
	// FocusableElement returns the first focusable control inside the cell,
	// in render order.
	FocusableElement(cell int) (string, bool)
	// CellText returns the cell's rendered text content.
	CellText(cell int) string
}

// Cell is the output of a cell render function. Content is what gets drawn;
// Focusables names the interactive controls inside the cell (buttons,
// links, inputs) in render order.
type Cell struct {
	Content    string
	Focusables []string
}

// TextCell is a cell with plain content and no controls.
func TextCell(content string) Cell {
	return Cell{Content: content}
}

// RenderedRow is a row as last rendered by a grid. It implements FocusTarget.
type RenderedRow struct {
	ID    string
	Cells []Cell
}

func (r RenderedRow) CellCount() int { return len(r.Cells) }

func (r RenderedRow) FocusableElement(cell int) (string, bool) {
	if cell < 0 || cell >= len(r.Cells) || len(r.Cells[cell].Focusables) == 0 {
		return "", false
	}
	return r.Cells[cell].Focusables[0], true
}

func (r RenderedRow) CellText(cell int) string {
	if cell < 0 || cell >= len(r.Cells) {
		return ""
	}
	return r.Cells[cell].Content
}

// FindFocusableElementForCellIndex returns the first focusable element in
// the cell. ok is false when the cell wrapper itself is the focus target.
func FindFocusableElementForCellIndex(row FocusTarget, cellIndex int) (element string, ok bool) {
	if row == nil {
		return "", false
	}
	return row.FocusableElement(cellIndex)
}

// cellQualifies reports whether a cell can receive focus: it holds a
// focusable element, or its column does not delegate focus to content and
// the cell shows some text.
func cellQualifies(row FocusTarget, columns []Column, i int) bool {
	if _, ok := FindFocusableElementForCellIndex(row, i); ok {
		return true
	}
	contentFocusable := i < len(columns) && columns[i].ContentFocusable
	return !contentFocusable && hasContent(row, i)
}

func hasContent(row FocusTarget, i int) bool {
	return strings.TrimSpace(ansi.Strip(row.CellText(i))) != ""
}

// FindNextFocusableCellIndexInRow scans the row from startIndex (exclusive)
// toward the edge in direction and returns the first qualifying cell index,
// or -1 when the edge is reached first.
func FindNextFocusableCellIndexInRow(row FocusTarget, columns []Column, startIndex int, dir Direction) int {
	if row == nil {
		return -1
	}
	count := row.CellCount()
	if startIndex > count {
		startIndex = count
	}
	if startIndex < -1 {
		startIndex = -1
	}
	for i := startIndex + dir.step(); i >= 0 && i < count; i += dir.step() {
		if cellQualifies(row, columns, i) {
			return i
		}
	}
	return -1
}
