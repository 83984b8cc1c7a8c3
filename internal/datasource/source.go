// Package datasource loads tree-grid forests from YAML, JSON and SQLite
// files. The format is picked from the file extension.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeYAML is a nested node list in YAML
	SourceTypeYAML SourceType = "yaml"
	// SourceTypeJSON is a nested node list in JSON
	SourceTypeJSON SourceType = "json"
	// SourceTypeSQLite is a SQLite database with a nodes table
	SourceTypeSQLite SourceType = "sqlite"
)

// ErrUnknownFormat is returned for paths whose extension maps to no reader.
var ErrUnknownFormat = errors.New("unknown data format")

// DataSource is a file that can be turned into a forest.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the path to the source file
	Path string `json:"path"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s, mod=%s, %d bytes)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
}

// TypeForPath maps a file extension to a source type.
func TypeForPath(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SourceTypeYAML, nil
	case ".json":
		return SourceTypeJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// DetectSource stats path and classifies it.
func DetectSource(path string) (DataSource, error) {
	typ, err := TypeForPath(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("source %s is a directory", path)
	}
	return DataSource{
		Type:    typ,
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}
