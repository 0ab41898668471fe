package options

const (
	// DefaultDevicePath is the tape device node used when none is configured.
	DefaultDevicePath = "/dev/nst0"

	// BlockSize64K is the standard LTFS logical block size (64 KiB).
	BlockSize64K uint32 = 65536

	// BlockSize512K is the large-block LTFS logical block size (512 KiB),
	// used by some LTO generations for higher streaming throughput.
	BlockSize512K uint32 = 524288

	// DefaultBlockSize is applied when no block size is configured.
	DefaultBlockSize = BlockSize64K

	// DefaultIndexWriteInterval is the cumulative unindexed-byte threshold
	// that triggers an automatic index synchronization (36 GiB).
	DefaultIndexWriteInterval uint64 = 36 * 1024 * 1024 * 1024

	// DefaultMaxConcurrentAux bounds the auxiliary-operation semaphore.
	DefaultMaxConcurrentAux = 4

	// DefaultMemoryCapBytes bounds in-flight write-buffer memory (2 GiB).
	DefaultMemoryCapBytes int64 = 2 * 1024 * 1024 * 1024

	// MinSpeedLimitMiBps is the smallest accepted nonzero rate limit; values
	// below this are treated as effectively unlimited rather than a limiter
	// that never lets any bytes through.
	MinSpeedLimitMiBps uint64 = 1

	// MaxSpeedLimitMiBps is the top of the practical rate-limit range
	// (4 GiB/s), above which the limiter is a no-op in practice.
	// WithSpeedLimit does not clamp to it.
	MaxSpeedLimitMiBps uint64 = 4096
)

// defaultOptions holds the baseline configuration for the LTFS engine.
var defaultOptions = Options{
	DevicePath:           DefaultDevicePath,
	BlockSize:            DefaultBlockSize,
	IndexWriteInterval:   DefaultIndexWriteInterval,
	SpeedLimitMiBps:      0,
	MaxConcurrentAux:     DefaultMaxConcurrentAux,
	MemoryCapBytes:       DefaultMemoryCapBytes,
	ExcludedExtensions:   nil,
	ForceFlush:           false,
	SkipDuplicates:       false,
	SkipSymlinks:         false,
	GotoEODOnWrite:       true,
	IgnoreVolumeOverflow: false,
	VerifyOnRead:         false,
	Hashes: &hashOptions{
		SHA1:    true,
		MD5:     true,
		SHA256:  true,
		Blake3:  true,
		XXH3:    true,
		XXH128:  true,
		OnWrite: true,
	},
}

// NewDefaultOptions returns a copy of the baseline configuration. Hashes is
// deep-copied so callers can mutate the returned value's pointer field
// without aliasing the package-level default.
func NewDefaultOptions() Options {
	opts := defaultOptions
	hashes := *defaultOptions.Hashes
	opts.Hashes = &hashes
	return opts
}
