// Package options provides data structures and functions for configuring the
// LTFS engine. It defines the process-level controls spec.md §6 leaves to the
// surrounding CLI: device path, block size, index-write interval, speed
// limit, concurrency and memory caps, exclusion lists, per-algorithm hash
// enables, and the write-pipeline behavior flags.
package options

import (
	"strings"
)

// hashOptions controls which digest algorithms the write pipeline's hash
// fan-out accumulates per spec.md §4.5 and §3 (extended-attribute keys).
type hashOptions struct {
	SHA1    bool `json:"sha1"`
	MD5     bool `json:"md5"`
	SHA256  bool `json:"sha256"`
	Blake3  bool `json:"blake3"`
	XXH3    bool `json:"xxh3"`
	XXH128  bool `json:"xxh128"`
	OnWrite bool `json:"hashOnWrite"`
}

// Options defines the configuration parameters for the LTFS engine. It
// provides control over device access, block I/O sizing, index
// synchronization cadence, and write-pipeline behavior.
type Options struct {
	// DevicePath is the OS device node for the tape drive (e.g. "/dev/nst0"
	// on Linux). Opening it is an external collaborator per spec.md §1; the
	// engine only records the path for error context and hands it to that
	// collaborator.
	//
	// Default: "/dev/nst0"
	DevicePath string `json:"devicePath"`

	// BlockSize is the fixed logical block size used for I/O. spec.md §3
	// recognizes 65536 (64 KiB, default) and 524288 (512 KiB).
	//
	// Default: 65536
	BlockSize uint32 `json:"blockSize"`

	// IndexWriteInterval is the cumulative unindexed-byte threshold that
	// triggers an automatic index synchronization (spec.md §4.4).
	//
	// Default: 36 GiB
	IndexWriteInterval uint64 `json:"indexWriteInterval"`

	// SpeedLimitMiBps caps write throughput via the sliding-window rate
	// limiter of spec.md §5. Zero disables rate limiting.
	//
	// Default: 0 (unlimited)
	SpeedLimitMiBps uint64 `json:"speedLimitMiBps"`

	// MaxConcurrentAux bounds the auxiliary-operation semaphore: background
	// work that runs off the single tape-pipeline goroutine, such as local
	// index-snapshot persistence.
	//
	// Default: 4
	MaxConcurrentAux int `json:"maxConcurrentAux"`

	// MemoryCapBytes bounds in-flight write-buffer and cached-block memory.
	//
	// Default: 2 GiB
	MemoryCapBytes int64 `json:"memoryCapBytes"`

	// ExcludedExtensions lists file extensions (including the leading dot)
	// skipped during directory-walk writes.
	ExcludedExtensions []string `json:"excludedExtensions"`

	// ForceFlush forces an index synchronization after every write
	// operation, bypassing IndexWriteInterval.
	ForceFlush bool `json:"forceFlush"`

	// SkipDuplicates causes the deduplication hook to skip re-writing bytes
	// that match a prior digest, rather than writing a second index entry.
	SkipDuplicates bool `json:"skipDuplicates"`

	// SkipSymlinks causes directory-walk writes to skip symbolic links
	// instead of following them.
	SkipSymlinks bool `json:"skipSymlinks"`

	// GotoEODOnWrite causes the write pipeline to SPACE to end-of-data
	// before positioning for a new file's first extent.
	GotoEODOnWrite bool `json:"gotoEodOnWrite"`

	// IgnoreVolumeOverflow is stored with the options but not read by the
	// engine: a volume-overflow SCSI condition (sense 0x0D, EOM set) is
	// always classified as fatal, whatever this field holds.
	IgnoreVolumeOverflow bool `json:"ignoreVolumeOverflow"`

	// VerifyOnRead recomputes and compares the stored digest during
	// extraction (spec.md §4.6, Scenario F).
	VerifyOnRead bool `json:"verifyOnRead"`

	// Hashes controls which digest algorithms are computed during write.
	Hashes *hashOptions `json:"hashes"`

	// IndexSnapshotDir, if set, receives a local copy of the index XML
	// document under the LTFSIndex_{Load|Write}_YYYYMMDD_HHMMSS.schema
	// naming convention (spec.md §6): a "Load" snapshot when the volume is
	// opened, a "Write" snapshot after each synchronization. Empty disables
	// local snapshotting entirely.
	IndexSnapshotDir string `json:"indexSnapshotDir"`

	// DiscoverySpillDir, if set, receives a raw copy of every candidate
	// block index discovery reads before attempting to parse it (spec.md
	// §4.3), letting a failed mount be diagnosed without re-threading the
	// cartridge. Empty disables spill-file diagnostics entirely.
	DiscoverySpillDir string `json:"discoverySpillDir"`
}

// OptionFunc is a function type that modifies the engine's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies the predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		*o = opts
	}
}

// WithDevicePath sets the tape device node path.
func WithDevicePath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.DevicePath = path
		}
	}
}

// WithBlockSize sets the logical block size, restricted to the two sizes
// spec.md §3 recognizes (64 KiB and 512 KiB).
func WithBlockSize(size uint32) OptionFunc {
	return func(o *Options) {
		if size == BlockSize64K || size == BlockSize512K {
			o.BlockSize = size
		}
	}
}

// WithIndexWriteInterval sets the cumulative unindexed-byte threshold that
// triggers an automatic index synchronization.
func WithIndexWriteInterval(bytes uint64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.IndexWriteInterval = bytes
		}
	}
}

// WithSpeedLimit sets the target write throughput in MiB/s. Zero disables
// rate limiting.
func WithSpeedLimit(mibps uint64) OptionFunc {
	return func(o *Options) {
		o.SpeedLimitMiBps = mibps
	}
}

// WithMaxConcurrentAux sets the auxiliary-operation semaphore permit count.
func WithMaxConcurrentAux(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.MaxConcurrentAux = n
		}
	}
}

// WithMemoryCap sets the in-flight memory cap in bytes.
func WithMemoryCap(bytes int64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.MemoryCapBytes = bytes
		}
	}
}

// WithExcludedExtensions sets the list of file extensions skipped during
// directory-walk writes.
func WithExcludedExtensions(extensions ...string) OptionFunc {
	return func(o *Options) {
		o.ExcludedExtensions = append([]string{}, extensions...)
	}
}

// WithForceFlush toggles forcing an index synchronization after every write.
func WithForceFlush(force bool) OptionFunc {
	return func(o *Options) {
		o.ForceFlush = force
	}
}

// WithSkipDuplicates toggles skipping re-writes of deduplicated content.
func WithSkipDuplicates(skip bool) OptionFunc {
	return func(o *Options) {
		o.SkipDuplicates = skip
	}
}

// WithSkipSymlinks toggles skipping symbolic links during directory walk.
func WithSkipSymlinks(skip bool) OptionFunc {
	return func(o *Options) {
		o.SkipSymlinks = skip
	}
}

// WithGotoEODOnWrite toggles SPACE-to-EOD before positioning for new writes.
func WithGotoEODOnWrite(goEOD bool) OptionFunc {
	return func(o *Options) {
		o.GotoEODOnWrite = goEOD
	}
}

// WithIgnoreVolumeOverflow sets IgnoreVolumeOverflow; the engine does not
// read it, so volume overflow stays fatal either way.
func WithIgnoreVolumeOverflow(ignore bool) OptionFunc {
	return func(o *Options) {
		o.IgnoreVolumeOverflow = ignore
	}
}

// WithVerifyOnRead toggles digest verification during extraction.
func WithVerifyOnRead(verify bool) OptionFunc {
	return func(o *Options) {
		o.VerifyOnRead = verify
	}
}

// WithIndexSnapshotDir sets the local directory that receives persisted
// index snapshots. Empty disables snapshotting.
func WithIndexSnapshotDir(dir string) OptionFunc {
	return func(o *Options) {
		o.IndexSnapshotDir = strings.TrimSpace(dir)
	}
}

// WithDiscoverySpillDir sets the local directory that receives raw
// discovery-candidate spill files. Empty disables the diagnostic.
func WithDiscoverySpillDir(dir string) OptionFunc {
	return func(o *Options) {
		o.DiscoverySpillDir = strings.TrimSpace(dir)
	}
}

// WithHashes enables or disables specific digest algorithms in the write
// pipeline's hash fan-out. SHA-1, MD5, and SHA-256 are controlled by
// hashOnWrite; blake3/xxh3/xxh128 are controlled individually.
func WithHashes(hashOnWrite, blake3, xxh3, xxh128 bool) OptionFunc {
	return func(o *Options) {
		if o.Hashes == nil {
			o.Hashes = &hashOptions{}
		}
		o.Hashes.OnWrite = hashOnWrite
		o.Hashes.SHA1 = hashOnWrite
		o.Hashes.MD5 = hashOnWrite
		o.Hashes.SHA256 = hashOnWrite
		o.Hashes.Blake3 = blake3
		o.Hashes.XXH3 = xxh3
		o.Hashes.XXH128 = xxh128
	}
}
