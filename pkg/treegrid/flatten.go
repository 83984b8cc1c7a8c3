package treegrid

import (
	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
)

// Flatten returns the visible rows of forest in pre-order. A node's children
// follow it immediately, recursively, only when expanded[node.ID] is true.
func Flatten(forest []TreeNode, expanded map[string]bool) []FlatRow {
	defer metrics.Timer(metrics.Flatten)()

	rows := appendVisible(nil, forest, expanded, 0, "")
	if debug.Enabled() {
		debug.Assert(depthsConsistent(rows), "flattened depth must be parent depth + 1")
	}
	return rows
}

// FlattenFrom flattens forest as if it were nested at depth under parentID.
func FlattenFrom(forest []TreeNode, expanded map[string]bool, depth int, parentID string) []FlatRow {
	return appendVisible(nil, forest, expanded, depth, parentID)
}

// appendVisible adds each node and its visible descendants to rows.
func appendVisible(rows []FlatRow, nodes []TreeNode, expanded map[string]bool, depth int, parentID string) []FlatRow {
	for _, node := range nodes {
		rows = append(rows, FlatRow{TreeNode: node, Depth: depth, ParentID: parentID})
		if node.HasChildren() && expanded[node.ID] {
			rows = appendVisible(rows, node.Children, expanded, depth+1, node.ID)
		}
	}
	return rows
}

// IndexOf returns the index of the row with the given ID, or -1.
func IndexOf(rows []FlatRow, id string) int {
	if id == "" {
		return -1
	}
	for i := range rows {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}

// ParentLinks maps every node ID in forest to its parent ID ("" for roots),
// regardless of expansion. Used to find the nearest visible ancestor of a
// row that has been hidden.
func ParentLinks(forest []TreeNode) map[string]string {
	links := make(map[string]string)
	var walk func(nodes []TreeNode, parentID string)
	walk = func(nodes []TreeNode, parentID string) {
		for _, n := range nodes {
			links[n.ID] = parentID
			walk(n.Children, n.ID)
		}
	}
	walk(forest, "")
	return links
}

// CountNodes returns the number of nodes in forest, expanded or not.
func CountNodes(forest []TreeNode) int {
	total := 0
	for _, n := range forest {
		total += 1 + CountNodes(n.Children)
	}
	return total
}

func depthsConsistent(rows []FlatRow) bool {
	depthByID := make(map[string]int, len(rows))
	for _, r := range rows {
		if r.ParentID == "" {
			if r.Depth != 0 {
				return false
			}
		} else if d, ok := depthByID[r.ParentID]; ok && r.Depth != d+1 {
			return false
		}
		depthByID[r.ID] = r.Depth
	}
	return true
}

// ExpandedToDepth returns an expansion map opening every parent above the
// given depth: 1 opens the roots, 2 opens roots and their children.
func ExpandedToDepth(forest []TreeNode, depth int) map[string]bool {
	expanded := make(map[string]bool)
	var walk func(nodes []TreeNode, level int)
	walk = func(nodes []TreeNode, level int) {
		if level >= depth {
			return
		}
		for _, n := range nodes {
			if n.HasChildren() {
				expanded[n.ID] = true
				walk(n.Children, level+1)
			}
		}
	}
	walk(forest, 0)
	return expanded
}
