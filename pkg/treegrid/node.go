// Package treegrid implements an interactive tree-grid for bubbletea
// programs: a forest of rows rendered as a table, with expand/collapse and
// two-dimensional keyboard navigation over a single roving tab stop.
//
// The pieces are usable on their own:
//
//   - Flatten turns a forest plus an expansion map into the visible rows.
//   - Store holds expansion state and the keyboard-active row; NewLocalStore
//     owns it internally, a caller-supplied Store owns it externally.
//   - FindNextFocusableCellIndexInRow and friends probe committed render
//     output for focus targets.
//   - Decide is the pure keyboard navigation engine.
//   - Grid composes everything into a component with Update and View.
package treegrid

// TreeNode is one node of a caller-owned forest. The empty string is not a
// valid ID; it is used as the "no row" identifier throughout the package.
type TreeNode struct {
	ID       string            `yaml:"id" json:"id"`
	Children []TreeNode        `yaml:"children,omitempty" json:"children,omitempty"`
	Fields   map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// HasChildren reports whether the node can be expanded.
func (n TreeNode) HasChildren() bool {
	return len(n.Children) > 0
}

// Field returns the named payload field, or "" when absent.
func (n TreeNode) Field(name string) string {
	return n.Fields[name]
}

// FlatRow is a visible node annotated with its position in the tree.
// Rows are rebuilt on every flattening pass and never mutated in place.
type FlatRow struct {
	TreeNode
	Depth    int    // 0 for roots
	ParentID string // "" for roots
}

// Column describes one grid column.
type Column struct {
	ID     string
	Header string
	// IsRowHeader gives the column's cells the "rowheader" role.
	IsRowHeader bool
	// ContentFocusable means the cell's interactive content, not the cell
	// wrapper, takes focus. Such cells never get a tab index of their own.
	ContentFocusable bool
	// Width is a layout hint for the default renderers; 0 means auto.
	Width int
}
