// Package filestore persists encoded sale records as files on disk,
// one directory per format.
//
// Filenames are the only user-influenceable path into the filesystem
// namespace, so the store applies two independent defenses: names are
// always server-generated on write, and read requests are sanitized
// with any path component rejected as not-found. A traversal attempt
// is deliberately indistinguishable from a missing file.
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/salesrecords/salesd/internal/codec"
)

// ErrNotFound is returned for missing, unreadable, undecodable, or
// path-escaping file requests alike.
var ErrNotFound = errors.New("file not found")

// Storage is a handle to the on-disk data root. Both format
// directories are ensured once at construction, not per call.
type Storage struct {
	root string
}

// New creates a Storage rooted at dataRoot, creating the json/ and
// xml/ subdirectories if absent.
func New(dataRoot string) (*Storage, error) {
	for _, f := range []codec.Format{codec.FormatJSON, codec.FormatXML} {
		dir := filepath.Join(dataRoot, string(f))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	return &Storage{root: dataRoot}, nil
}

// Save encodes the mapping and writes it under a generated name
// {prefix}_{uuid-hex}.{ext} in the format directory. The returned name
// is for user feedback only; nothing is ever re-derived from it.
func (s *Storage) Save(fields map[string]any, format codec.Format, prefix string) (string, error) {
	data, err := codec.Encode(fields, format)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	name := fmt.Sprintf("%s_%s.%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", ""), format.Ext())
	path := filepath.Join(s.root, string(format), name)

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// List returns the sorted filenames stored for one format. An empty
// list is a normal state, not an error.
func (s *Storage) List(format codec.Format) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(format)))
	if err != nil {
		return nil, fmt.Errorf("list %s files: %w", format, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "."+format.Ext()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// File is one stored record, decoded and normalized for presentation.
type File struct {
	Name    string
	Format  codec.Format
	Fields  map[string]any
	Content string // normalized serialized form
}

// Read looks up a file by its user-supplied name. The name is
// sanitized first: any directory component, an unknown extension, a
// missing file, or undecodable content all yield ErrNotFound, with no
// distinction exposed to the caller.
func (s *Storage) Read(requested string) (*File, error) {
	name := filepath.Base(requested)
	if name != requested || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, ErrNotFound
	}

	var format codec.Format
	switch {
	case strings.HasSuffix(name, ".json"):
		format = codec.FormatJSON
	case strings.HasSuffix(name, ".xml"):
		format = codec.FormatXML
	default:
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.root, string(format), name))
	if err != nil {
		return nil, ErrNotFound
	}

	fields, err := codec.Decode(data, format)
	if err != nil {
		// Corrupted content is never served.
		return nil, ErrNotFound
	}

	normalized, err := codec.Encode(fields, format)
	if err != nil {
		return nil, ErrNotFound
	}

	return &File{
		Name:    name,
		Format:  format,
		Fields:  fields,
		Content: string(normalized),
	}, nil
}
