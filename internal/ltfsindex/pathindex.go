package ltfsindex

import (
	"strings"
	"sync"

	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
)

// PathIndex is an in-memory path→node lookup cache layered over an Index
// tree, the same role the teacher's internal/index.Index plays for its
// flat key→*RecordPointer keydir: an O(1) lookup structure rebuilt
// whenever the underlying structure changes, rather than walking the tree
// on every access. Every write operation that mutates the tree (writer
// package) must call Rebuild (or the narrower Put/Remove) afterward to
// keep the cache coherent.
type PathIndex struct {
	mu       sync.RWMutex
	files    map[string]*FileNode
	dirs     map[string]*DirectoryNode
}

// NewPathIndex builds a PathIndex over idx's current tree shape.
func NewPathIndex(idx *Index) *PathIndex {
	pi := &PathIndex{
		files: make(map[string]*FileNode),
		dirs:  make(map[string]*DirectoryNode),
	}
	pi.Rebuild(idx)
	return pi
}

// Rebuild discards the cache and re-walks idx's tree from scratch. Called
// after a bulk mutation (index load, generation replacement) where
// tracking individual changes isn't worth the bookkeeping.
func (pi *PathIndex) Rebuild(idx *Index) {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	pi.files = make(map[string]*FileNode)
	pi.dirs = make(map[string]*DirectoryNode)

	if idx == nil || idx.Root == nil {
		return
	}

	var walk func(d *DirectoryNode, prefix string)
	walk = func(d *DirectoryNode, prefix string) {
		path := prefix
		if d.Name != "" {
			path = joinPath(prefix, d.Name)
		}
		pi.dirs[path] = d

		for _, child := range d.Directories {
			walk(child, path)
		}
		for _, f := range d.Files {
			pi.files[joinPath(path, f.Name)] = f
		}
	}
	walk(idx.Root, "")
}

// LookupFile returns the file node at path, or a PathNotFound
// LTFSIndexError.
func (pi *PathIndex) LookupFile(path string) (*FileNode, error) {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	f, ok := pi.files[normalizePath(path)]
	if !ok {
		return nil, ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodePathNotFound, "file not found in index",
		).WithPath(path).WithOperation("lookup")
	}
	return f, nil
}

// LookupDirectory returns the directory node at path, or a PathNotFound
// LTFSIndexError. The root directory is looked up with path "" or "/".
func (pi *PathIndex) LookupDirectory(path string) (*DirectoryNode, error) {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	d, ok := pi.dirs[normalizePath(path)]
	if !ok {
		return nil, ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodePathNotFound, "directory not found in index",
		).WithPath(path).WithOperation("lookup")
	}
	return d, nil
}

// PutFile registers a newly inserted file node at path without requiring
// a full Rebuild, and fails if an entry (file or directory) already
// occupies that path (spec.md §3: no two children share a name).
func (pi *PathIndex) PutFile(path string, f *FileNode) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	key := normalizePath(path)
	if _, exists := pi.files[key]; exists {
		return ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodePathConflict, "path already occupied by a file",
		).WithPath(path)
	}
	if _, exists := pi.dirs[key]; exists {
		return ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodePathConflict, "path already occupied by a directory",
		).WithPath(path)
	}
	pi.files[key] = f
	return nil
}

// PutDirectory registers a newly inserted directory node at path.
func (pi *PathIndex) PutDirectory(path string, d *DirectoryNode) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	key := normalizePath(path)
	if _, exists := pi.files[key]; exists {
		return ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodePathConflict, "path already occupied by a file",
		).WithPath(path)
	}
	if _, exists := pi.dirs[key]; exists {
		return ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodePathConflict, "path already occupied by a directory",
		).WithPath(path)
	}
	pi.dirs[key] = d
	return nil
}

// Remove drops any file or directory entry at path from the cache.
func (pi *PathIndex) Remove(path string) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	key := normalizePath(path)
	delete(pi.files, key)
	delete(pi.dirs, key)
}

func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	return path
}

func joinPath(prefix, name string) string {
	prefix = normalizePath(prefix)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
