// Package ltfs provides a direct-access engine for LTFS (Linear Tape
// File System) cartridges: writing files and directory trees onto tape,
// extracting them back out, synchronizing the on-tape index, and
// reporting cartridge capacity, all without mounting the cartridge
// through the OS filesystem layer.
//
// Volume is the primary entry point for interacting with a mounted
// cartridge, providing methods for writing, extracting, synchronizing,
// and inspecting capacity.
package ltfs

import (
	"context"
	"io"

	"github.com/oplancelot/ltfsgo/internal/capacity"
	"github.com/oplancelot/ltfsgo/internal/engine"
	"github.com/oplancelot/ltfsgo/internal/indexsync"
	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
	"github.com/oplancelot/ltfsgo/internal/reader"
	"github.com/oplancelot/ltfsgo/internal/writer"
	"github.com/oplancelot/ltfsgo/pkg/logger"
	"github.com/oplancelot/ltfsgo/pkg/options"
)

// Volume represents an open, direct-access handle to one mounted LTFS
// cartridge. It encapsulates the core engine responsible for device
// I/O and the configuration options for this particular open.
type Volume struct {
	engine  *engine.Engine
	options *options.Options
}

// Open opens the configured tape device, discovers (or initializes) its
// index, and returns a ready-to-use Volume. service names the logger
// namespace, matching the convention callers already use for other
// components in an application.
func Open(ctx context.Context, service string, opts ...options.OptionFunc) (*Volume, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts, Dedup: writer.NewMemoryDedupIndex()})
	if err != nil {
		return nil, err
	}

	return &Volume{engine: eng, options: &defaultOpts}, nil
}

// WriteFile streams source onto tape under targetPath, updating the
// in-memory index and triggering a synchronization when the configured
// interval or size threshold is reached (spec.md §4.5).
func (v *Volume) WriteFile(ctx context.Context, source io.ReadSeeker, targetPath string) (writer.WriteResult, error) {
	return v.engine.WriteFile(source, targetPath)
}

// WriteDirectory recursively writes every file under sourceDir to tape
// beneath targetPath, preserving directory structure in the index.
func (v *Volume) WriteDirectory(ctx context.Context, sourceDir, targetPath string) error {
	return v.engine.WriteDirectory(sourceDir, targetPath)
}

// ExtractFile materializes targetPath from tape, writing its contents to
// dest and optionally verifying the recorded digest (spec.md §4.6).
func (v *Volume) ExtractFile(ctx context.Context, targetPath string, dest io.Writer) (reader.FileResult, error) {
	return v.engine.ExtractFile(targetPath, dest)
}

// Sync forces an index synchronization to both tape partitions,
// regardless of the configured interval (spec.md §4.4).
func (v *Volume) Sync(ctx context.Context) (indexsync.Result, error) {
	return v.engine.Sync()
}

// Capacity reports the cartridge's per-partition remaining and maximum
// capacity (spec.md §4.7).
func (v *Volume) Capacity(ctx context.Context) (capacity.Info, error) {
	return v.engine.Capacity()
}

// Index exposes the current in-memory index tree for read-only
// inspection (listing, diagnostics).
func (v *Volume) Index() *ltfsindex.Index {
	return v.engine.Index()
}

// Close performs a final index synchronization and releases the device
// handle. Close is idempotent; a second call returns engine.ErrEngineClosed.
func (v *Volume) Close(ctx context.Context) error {
	return v.engine.Close()
}
