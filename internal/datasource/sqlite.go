package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/treegrid/pkg/treegrid"
)

// SQLiteReader provides read access to a nodes database.
//
// Expected schema:
//
//	CREATE TABLE nodes (
//	    id        TEXT PRIMARY KEY,
//	    parent_id TEXT,             -- NULL or '' for roots
//	    position  INTEGER,          -- sibling order
//	    fields    TEXT              -- JSON object of string values
//	);
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type nodeRow struct {
	id       string
	parentID string
	fields   map[string]string
}

// LoadForest reads every node and rebuilds the tree from parent links.
func (r *SQLiteReader) LoadForest(ctx context.Context) ([]treegrid.TreeNode, error) {
	query := `
		SELECT id, parent_id, fields
		FROM nodes
		ORDER BY COALESCE(position, 0), id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []nodeRow
	for rows.Next() {
		var n nodeRow
		var parentID, fieldsJSON sql.NullString
		if err := rows.Scan(&n.id, &parentID, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if parentID.Valid {
			n.parentID = parentID.String
		}
		if fieldsJSON.Valid {
			n.fields = parseFields(n.id, fieldsJSON.String)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	return buildForest(nodes), nil
}

// CountNodes returns the number of rows in the nodes table.
func (r *SQLiteReader) CountNodes(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// parseFields decodes the fields column. Non-string JSON values are
// re-encoded so nothing is lost; a malformed object is logged and skipped.
func parseFields(id, s string) map[string]string {
	if s == "" || s == "null" {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		log.Printf("warning: node %s has invalid fields JSON: %v", id, err)
		return nil
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			fields[k] = str
			continue
		}
		fields[k] = string(v)
	}
	return fields
}

// buildForest links rows (already in sibling order) into trees. Rows whose
// parent is missing become roots. A parent cycle is broken by promoting its
// earliest member in row order to a root; rows hanging off the cycle keep
// their parent.
func buildForest(nodes []nodeRow) []treegrid.TreeNode {
	byID := make(map[string]nodeRow, len(nodes))
	children := make(map[string][]string)
	var roots []string

	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		byID[n.id] = n
		order[n.id] = i
	}
	for _, n := range nodes {
		if _, ok := byID[n.parentID]; n.parentID == "" || !ok || n.parentID == n.id {
			roots = append(roots, n.id)
			continue
		}
		children[n.parentID] = append(children[n.parentID], n.id)
	}

	visited := make(map[string]bool, len(byID))
	var build func(id string) treegrid.TreeNode
	build = func(id string) treegrid.TreeNode {
		visited[id] = true
		n := byID[id]
		out := treegrid.TreeNode{ID: id, Fields: n.fields}
		for _, child := range children[id] {
			if visited[child] {
				continue
			}
			out.Children = append(out.Children, build(child))
		}
		return out
	}

	var forest []treegrid.TreeNode
	for _, id := range roots {
		forest = append(forest, build(id))
	}
	for _, n := range nodes {
		if visited[n.id] {
			continue
		}
		id := cycleRoot(byID, order, n.id)
		log.Printf("warning: node %s is part of a parent cycle, showing it as a root", id)
		forest = append(forest, build(id))
	}
	return forest
}

// cycleRoot follows parent links from an unreachable row until a row
// repeats, and returns the cycle member that comes first in row order.
func cycleRoot(byID map[string]nodeRow, order map[string]int, start string) string {
	seen := make(map[string]bool)
	id := start
	for !seen[id] {
		seen[id] = true
		id = byID[id].parentID
	}
	best := id
	for cur := byID[id].parentID; cur != id; cur = byID[cur].parentID {
		if order[cur] < order[best] {
			best = cur
		}
	}
	return best
}
