// Package indexfile names and discovers the persisted index files the
// engine writes to the local filesystem: the same XML document it writes
// to tape, following the conventional filename
// LTFSIndex_{Load|Write}_YYYYMMDD_HHMMSS.schema (spec.md §6). "Load" marks
// a snapshot taken when the engine opened the volume; "Write" marks a
// snapshot taken after a synchronization. This mirrors the teacher's
// seginfo package, whose GenerateName/ParseSegmentID/GetLastSegmentName
// trio is adapted here from the segment-sequence domain to the
// index-snapshot domain.
package indexfile

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/oplancelot/ltfsgo/pkg/filesys"
)

// Kind distinguishes why a persisted index snapshot was taken.
type Kind string

const (
	KindLoad  Kind = "Load"
	KindWrite Kind = "Write"

	timestampLayout = "20060102_150405"
	extension       = ".schema"
	filePrefix      = "LTFSIndex"
)

// GenerateName builds a persisted-index filename for the given kind at the
// given time, e.g. "LTFSIndex_Write_20260729_143000.schema".
func GenerateName(kind Kind, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s%s", filePrefix, kind, at.Format(timestampLayout), extension)
}

// Find searches dir for persisted index files of the given kind and
// returns their full paths sorted oldest to newest. Sorting works because
// the timestamp component is fixed-width and monotonically formatted, the
// same lexicographic-sort property the teacher's GetLastSegmentName relies
// on for zero-padded segment sequence numbers.
func Find(dir string, kind Kind) ([]string, error) {
	pattern := filepath.Join(dir, fmt.Sprintf("%s_%s_*%s", filePrefix, kind, extension))
	matches, err := filesys.ReadDir(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search for persisted index files with pattern %s: %w", pattern, err)
	}
	slices.Sort(matches)
	return matches, nil
}

// Latest returns the most recently written persisted index file of the
// given kind in dir, or "" if none exist.
func Latest(dir string, kind Kind) (string, error) {
	matches, err := Find(dir, kind)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[len(matches)-1], nil
}

// ParseName extracts the kind and timestamp encoded in a persisted index
// filename, accepting either a bare filename or a full path.
func ParseName(path string) (Kind, time.Time, error) {
	_, name := filepath.Split(path)
	name = strings.TrimSuffix(name, extension)

	parts := strings.SplitN(name, "_", 3)
	if len(parts) < 3 || parts[0] != filePrefix {
		return "", time.Time{}, fmt.Errorf("filename %s does not match LTFSIndex_<kind>_<timestamp>.schema", name)
	}

	kind := Kind(parts[1])
	if kind != KindLoad && kind != KindWrite {
		return "", time.Time{}, fmt.Errorf("filename %s has unrecognized kind %q", name, parts[1])
	}

	ts, err := time.Parse(timestampLayout, parts[2])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse timestamp from %s: %w", name, err)
	}

	return kind, ts, nil
}
