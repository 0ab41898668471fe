// Package ltfsindex implements the LTFS index data model of spec.md §3: a
// rooted tree of directories and files with byte-exact extents, its XML
// (de)serialization (xml.go), and the semantic validation rules that
// catch a well-formed-but-invalid document (validate.go). It is grounded
// on the teacher's internal/index package: the same map-keyed lookup
// cache pattern as index.go's recordPointer map, generalized here from a
// flat key→RecordPointer keydir into a path→*FileNode index over a tree
// (pathindex.go).
package ltfsindex

import "time"

// Location identifies a (partition, block) position on tape, used both
// for the index's own current/previous-generation location and for each
// extent's starting point.
type Location struct {
	Partition  uint8
	StartBlock uint64
}

// Extent describes one contiguous run of a file's bytes on tape (spec.md
// §3). Extents of a single file are ordered by FileOffset with no gaps
// and no overlaps.
type Extent struct {
	FileOffset uint64
	Partition  uint8
	StartBlock uint64
	ByteOffset uint32
	ByteCount  uint64
}

// Timestamps holds the five timestamps every directory and file node
// carries (spec.md §3), each ISO-8601 with nanosecond precision and a
// trailing Z.
type Timestamps struct {
	Creation time.Time
	Change   time.Time
	Modify   time.Time
	Access   time.Time
	Backup   time.Time
}

// FileNode is a leaf in the index tree.
type FileNode struct {
	Name          string
	UID           uint64
	Length        uint64
	Timestamps    Timestamps
	ReadOnly      bool
	OpenForWrite  bool
	SymlinkTarget string // empty unless this node is a symlink
	Extents       []Extent
	ExtendedAttrs map[string]string
}

// DirectoryNode is an interior node in the index tree. The root directory
// has an empty Name.
type DirectoryNode struct {
	Name          string
	UID           uint64
	Timestamps    Timestamps
	ReadOnly      bool
	Directories   []*DirectoryNode
	Files         []*FileNode
}

// Index is the root of one LTFS index generation (spec.md §3).
type Index struct {
	Version                  string
	Creator                  string
	VolumeUUID               string
	GenerationNumber         uint64
	UpdateTime               time.Time
	Location                 Location
	PreviousGenerationLocation *Location
	AllowPolicyUpdate        *bool
	VolumeLockState          string
	HighestFileUID           uint64
	Root                     *DirectoryNode
}

// NewEmpty builds the first-use-mode index of spec.md §3's lifecycle: an
// empty root directory, generation 1, and a freshly minted volume UUID
// left for the caller to assign.
func NewEmpty(creator, volumeUUID string, now time.Time) *Index {
	ts := Timestamps{Creation: now, Change: now, Modify: now, Access: now, Backup: now}
	return &Index{
		Version:          "2.4.0",
		Creator:          creator,
		VolumeUUID:       volumeUUID,
		GenerationNumber: 1,
		UpdateTime:       now,
		Location:         Location{Partition: 0, StartBlock: 0},
		Root: &DirectoryNode{
			Name:       "",
			UID:        0,
			Timestamps: ts,
		},
	}
}
