package datasource

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/vanderheijden86/treegrid/pkg/treegrid"
)

// ForestDiff describes how a forest changed between two loads.
type ForestDiff struct {
	// Added contains node IDs present only in the new forest
	Added []string
	// Removed contains node IDs present only in the old forest
	Removed []string
	// Changed contains node IDs whose fields or parent differ
	Changed []string
	// CountOld is the number of nodes in the old forest
	CountOld int
	// CountNew is the number of nodes in the new forest
	CountNew int
}

// HasChanges returns true if the forests differ
func (d ForestDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// Summary returns a one-line human-readable summary
func (d ForestDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("no changes (%d nodes)", d.CountNew)
	}
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if n := len(d.Changed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", n))
	}
	return strings.Join(parts, ", ")
}

type nodeInfo struct {
	parent string
	fields map[string]string
}

func index(forest []treegrid.TreeNode) map[string]nodeInfo {
	out := make(map[string]nodeInfo)
	var walk func([]treegrid.TreeNode, string)
	walk = func(nodes []treegrid.TreeNode, parent string) {
		for _, n := range nodes {
			out[n.ID] = nodeInfo{parent: parent, fields: n.Fields}
			walk(n.Children, n.ID)
		}
	}
	walk(forest, "")
	return out
}

// DiffForests compares two forests by node ID. Results are sorted.
func DiffForests(before, after []treegrid.TreeNode) ForestDiff {
	a, b := index(before), index(after)
	diff := ForestDiff{CountOld: len(a), CountNew: len(b)}

	for id, old := range a {
		cur, ok := b[id]
		switch {
		case !ok:
			diff.Removed = append(diff.Removed, id)
		case old.parent != cur.parent || !maps.Equal(old.fields, cur.fields):
			diff.Changed = append(diff.Changed, id)
		}
	}
	for id := range b {
		if _, ok := a[id]; !ok {
			diff.Added = append(diff.Added, id)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	return diff
}
