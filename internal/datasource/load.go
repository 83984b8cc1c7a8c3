package datasource

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/treegrid/pkg/metrics"
	"github.com/vanderheijden86/treegrid/pkg/treegrid"
)

// LoadFromSource loads a forest from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(ctx context.Context, source DataSource) ([]treegrid.TreeNode, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadForest(ctx)

	case SourceTypeYAML, SourceTypeJSON:
		return LoadFile(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// LoadForest loads every path concurrently and concatenates the forests in
// argument order. The first failure cancels the rest.
func LoadForest(ctx context.Context, paths ...string) ([]treegrid.TreeNode, error) {
	defer metrics.Timer(metrics.DataLoad)()

	results := make([][]treegrid.TreeNode, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			source, err := DetectSource(path)
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			forest, err := LoadFromSource(ctx, source)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			results[i] = forest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var forest []treegrid.TreeNode
	for _, r := range results {
		forest = append(forest, r...)
	}
	return forest, nil
}

// Validate reports ids that appear more than once anywhere in the forest.
// Duplicate ids make expansion and focus ambiguous.
func Validate(forest []treegrid.TreeNode) error {
	seen := make(map[string]bool)
	var dups []string
	var walk func([]treegrid.TreeNode)
	walk = func(nodes []treegrid.TreeNode) {
		for _, n := range nodes {
			if seen[n.ID] {
				dups = append(dups, n.ID)
			}
			seen[n.ID] = true
			walk(n.Children)
		}
	}
	walk(forest)
	if len(dups) > 0 {
		return fmt.Errorf("duplicate node ids: %s", strings.Join(dups, ", "))
	}
	return nil
}
