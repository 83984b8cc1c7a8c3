package ui

import (
	"sort"
	"strings"
	"unicode"

	"github.com/vanderheijden86/treegrid/pkg/treegrid"
)

const (
	// idColumnID is the leading column showing the node id with the tree
	// prefix.
	idColumnID = "@id"
	// descriptionField is shown in the detail pane instead of a column.
	descriptionField = "description"
)

// leadingFields sort before other fields when present.
var leadingFields = []string{"name", "title"}

// linkFields hold URLs; their cells expose a focusable link instead of
// taking focus themselves.
var linkFields = map[string]bool{"url": true, "link": true, "href": true}

// ColumnsFor derives the grid columns from the union of field names in the
// forest.
func ColumnsFor(forest []treegrid.TreeNode) []treegrid.Column {
	seen := make(map[string]bool)
	var walk func([]treegrid.TreeNode)
	walk = func(nodes []treegrid.TreeNode) {
		for _, n := range nodes {
			for k := range n.Fields {
				seen[k] = true
			}
			walk(n.Children)
		}
	}
	walk(forest)
	delete(seen, descriptionField)

	var names []string
	for _, lead := range leadingFields {
		if seen[lead] {
			names = append(names, lead)
			delete(seen, lead)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	names = append(names, rest...)

	columns := []treegrid.Column{{ID: idColumnID, Header: "ID", IsRowHeader: true}}
	for _, name := range names {
		columns = append(columns, treegrid.Column{
			ID:               name,
			Header:           headerFor(name),
			ContentFocusable: linkFields[name],
		})
	}
	return columns
}

func headerFor(field string) string {
	words := strings.FieldsFunc(field, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// renderCell draws the id column with the tree prefix, link cells with a
// focusable link, and everything else through the default renderer.
func renderCell(ctx treegrid.CellContext) treegrid.Cell {
	switch {
	case ctx.Column.ID == idColumnID:
		return treegrid.Cell{Content: treegrid.TreePrefix(ctx) + ctx.Row.ID}
	case ctx.Column.ContentFocusable:
		url := ctx.Row.Field(ctx.Column.ID)
		if url == "" {
			return treegrid.Cell{}
		}
		return treegrid.Cell{Content: "↗ " + url, Focusables: []string{url}}
	default:
		return treegrid.DefaultRenderCell(ctx)
	}
}
