package writer

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
)

// appendFileNode attaches a file node to the index tree at targetPath,
// creating intermediate directories first. UID allocation order matters
// here (spec.md §4.5, step 7): directories along the path are created
// before the file UID is allocated, since reversing the order is a known
// defect that yields duplicate UIDs on nested paths.
func (w *Writer) appendFileNode(targetPath string, length uint64, start ltfsindex.Location, digests map[string]string) error {
	dirPath, name := path.Split(cleanPath(targetPath))
	parent := w.ensureDirectories(strings.TrimSuffix(dirPath, "/"))

	w.idx.HighestFileUID++
	node := &ltfsindex.FileNode{
		Name:          name,
		UID:           w.idx.HighestFileUID,
		Length:        length,
		Timestamps:    freshTimestamps(w.now()),
		ExtendedAttrs: digests,
	}
	if length > 0 {
		node.Extents = []ltfsindex.Extent{{
			FileOffset: 0,
			Partition:  start.Partition,
			StartBlock: start.StartBlock,
			ByteOffset: 0,
			ByteCount:  length,
		}}
	}

	parent.Files = append(parent.Files, node)
	return w.pathIndex.PutFile(cleanPath(targetPath), node)
}

// ensureDirectories walks dirPath from the index root, creating any
// missing DirectoryNode along the way and returning the final directory.
// Directory entries are never added eagerly by the directory walk itself
// (spec.md §4.5) — they appear only as this side effect of inserting a
// file beneath them.
func (w *Writer) ensureDirectories(dirPath string) *ltfsindex.DirectoryNode {
	dirPath = cleanPath(dirPath)
	current := w.idx.Root
	if dirPath == "" {
		return current
	}

	var built string
	for _, component := range strings.Split(dirPath, "/") {
		if component == "" {
			continue
		}
		built = path.Join(built, component)

		var next *ltfsindex.DirectoryNode
		for _, child := range current.Directories {
			if child.Name == component {
				next = child
				break
			}
		}
		if next == nil {
			w.idx.HighestFileUID++
			next = &ltfsindex.DirectoryNode{
				Name:       component,
				UID:        w.idx.HighestFileUID,
				Timestamps: freshTimestamps(w.now()),
			}
			current.Directories = append(current.Directories, next)
			_ = w.pathIndex.PutDirectory(built, next)
		}
		current = next
	}
	return current
}

func cleanPath(p string) string {
	p = strings.TrimPrefix(p, "/")
	return path.Clean(p)
}

func freshTimestamps(now time.Time) ltfsindex.Timestamps {
	return ltfsindex.Timestamps{Creation: now, Change: now, Modify: now, Access: now, Backup: now}
}

// Walk recurses a local directory tree, writing every regular file
// underneath sourceDir to the index under targetPath (spec.md §4.5,
// "Directory walk"). Entries are enumerated in name order; extensions in
// opts.ExcludedExtensions and, if configured, symbolic links are skipped.
func (w *Writer) Walk(sourceDir, targetPath string) error {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		childSource := path.Join(sourceDir, entry.Name())
		childTarget := path.Join(targetPath, entry.Name())

		if entry.IsDir() {
			if err := w.Walk(childSource, childTarget); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if w.opts != nil && w.opts.SkipSymlinks {
				continue
			}
		}
		if w.isExcluded(entry.Name()) {
			continue
		}

		f, err := os.Open(childSource)
		if err != nil {
			return err
		}
		_, writeErr := w.WriteFile(f, childTarget)
		f.Close()
		if writeErr != nil {
			return writeErr
		}
	}
	return nil
}

func (w *Writer) isExcluded(name string) bool {
	if w.opts == nil {
		return false
	}
	ext := path.Ext(name)
	for _, excluded := range w.opts.ExcludedExtensions {
		if ext == excluded {
			return true
		}
	}
	return false
}
