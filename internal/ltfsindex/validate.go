package ltfsindex

import (
	"fmt"
	"strings"

	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
)

// Validate checks the semantic invariants of spec.md §3 against a fully
// parsed Index. A document can be well-formed XML yet still violate any
// of these — this is the boundary between ParseError (malformed markup)
// and LTFSIndexError (ErrorCodeIndexInvalid).
func Validate(idx *Index) error {
	if idx.Root == nil {
		return newInvalid("index has no root directory")
	}
	if !strings.HasPrefix(idx.Version, "2.") {
		return newInvalid(fmt.Sprintf("unsupported index version %q, expected a 2.x schema", idx.Version))
	}
	if idx.VolumeUUID == "" {
		return newInvalid("volume UUID is empty")
	}
	if idx.GenerationNumber == 0 {
		return newInvalid("generation number must be at least 1")
	}
	if idx.Root.Name != "" {
		return newInvalid(fmt.Sprintf("root directory must have an empty name, got %q", idx.Root.Name))
	}

	seenUID := make(map[uint64]string)
	var maxUID uint64

	var walk func(dir *DirectoryNode, pathPrefix string) error
	walk = func(dir *DirectoryNode, pathPrefix string) error {
		names := make(map[string]bool)

		for _, child := range dir.Directories {
			if names[child.Name] {
				return newInvalid(fmt.Sprintf("duplicate child name %q under %q", child.Name, pathPrefix))
			}
			names[child.Name] = true

			if err := checkUID(child.UID, pathPrefix+"/"+child.Name, seenUID, &maxUID); err != nil {
				return err
			}
			if err := walk(child, pathPrefix+"/"+child.Name); err != nil {
				return err
			}
		}

		for _, f := range dir.Files {
			if names[f.Name] {
				return newInvalid(fmt.Sprintf("duplicate child name %q under %q", f.Name, pathPrefix))
			}
			names[f.Name] = true

			if err := checkUID(f.UID, pathPrefix+"/"+f.Name, seenUID, &maxUID); err != nil {
				return err
			}
			if err := validateFile(f, pathPrefix+"/"+f.Name); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(idx.Root, ""); err != nil {
		return err
	}

	if idx.HighestFileUID < maxUID {
		return newInvalid(fmt.Sprintf("highestFileUID %d is less than max UID in tree %d", idx.HighestFileUID, maxUID))
	}

	return nil
}

func checkUID(uid uint64, path string, seen map[uint64]string, maxUID *uint64) error {
	if existing, ok := seen[uid]; ok {
		return newInvalid(fmt.Sprintf("duplicate UID %d used by both %q and %q", uid, existing, path))
	}
	seen[uid] = path
	if uid > *maxUID {
		*maxUID = uid
	}
	return nil
}

func validateFile(f *FileNode, path string) error {
	if f.SymlinkTarget != "" {
		return nil // byte-count/length invariant doesn't apply to symlinks (spec.md §3)
	}

	var total uint64
	var prevEnd uint64
	for i, e := range f.Extents {
		if e.Partition != 0 && e.Partition != 1 {
			return newInvalid(fmt.Sprintf("file %q extent %d has invalid partition %d", path, i, e.Partition))
		}
		if i > 0 && e.FileOffset != prevEnd {
			return newInvalid(fmt.Sprintf("file %q extent %d has gap or overlap: expected fileOffset %d, got %d", path, i, prevEnd, e.FileOffset))
		}
		total += e.ByteCount
		prevEnd = e.FileOffset + e.ByteCount
	}

	if total != f.Length {
		return newInvalid(fmt.Sprintf("file %q extents sum to %d bytes, length is %d", path, total, f.Length))
	}

	return nil
}

func newInvalid(msg string) error {
	return ltfserrors.NewLTFSIndexError(nil, ltfserrors.ErrorCodeIndexInvalid, msg)
}
