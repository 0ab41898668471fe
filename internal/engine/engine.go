// Package engine provides the core LTFS engine implementation: the
// central coordinator that opens the tape device, discovers or
// initializes the on-tape index, and wires the positioning, write,
// read, synchronization, and capacity subsystems together behind one
// lifecycle-managed handle. It keeps the teacher's engine.go shape —
// a Config{Options, Logger} constructor, atomic closed-flag lifecycle,
// Close() that tears every subsystem down — generalized from
// coordinating a Bitcask keydir/storage/compaction trio to coordinating
// a SCSI device, a tape index, and the write/read pipelines built on
// top of it.
package engine

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oplancelot/ltfsgo/internal/capacity"
	"github.com/oplancelot/ltfsgo/internal/discovery"
	"github.com/oplancelot/ltfsgo/internal/indexsync"
	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
	"github.com/oplancelot/ltfsgo/internal/partition"
	"github.com/oplancelot/ltfsgo/internal/reader"
	"github.com/oplancelot/ltfsgo/internal/scsi"
	"github.com/oplancelot/ltfsgo/internal/tape"
	"github.com/oplancelot/ltfsgo/internal/writer"
	"github.com/oplancelot/ltfsgo/pkg/filesys"
	"github.com/oplancelot/ltfsgo/pkg/indexfile"
	"github.com/oplancelot/ltfsgo/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// Engine coordinates every subsystem needed to read and write one
// mounted LTFS cartridge through an open SCSI device.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	device     *scsi.Device
	partitions *partition.Manager
	positioner *tape.Positioner

	index     *ltfsindex.Index
	pathIndex *ltfsindex.PathIndex

	syncer   *indexsync.Syncer
	writer   *writer.Writer
	reader   *reader.Reader
	capacity *capacity.Reporter

	snapshotDir string

	// aux bounds concurrent auxiliary (non-tape) background work, the
	// buffered-channel-of-empty-structs semaphore pattern spec.md §5 calls
	// for: local index-snapshot persistence runs off the single tape
	// pipeline goroutine but shouldn't fan out unbounded.
	aux   chan struct{}
	auxWG sync.WaitGroup
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
	Dedup   writer.DedupIndex
}

// New opens the configured tape device, determines the partition layout,
// discovers the existing index (falling back to a fresh, empty one if no
// candidate validates, per spec.md §4.3's "first mount" case), and wires
// the write/read/sync/capacity subsystems around it.
func New(ctx context.Context, config *Config) (*Engine, error) {
	device, err := scsi.Open(scsi.Config{DevicePath: config.Options.DevicePath, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	partitions, err := partition.New(partition.Config{Device: device, Logger: config.Logger})
	if err != nil {
		device.Close()
		return nil, err
	}

	positioner := tape.New(tape.Config{
		Device: device, Partitions: partitions, Logger: config.Logger, BlockSize: config.Options.BlockSize,
	})

	idx, err := discovery.New(discovery.Config{
		Positioner: positioner,
		Partitions: partitions,
		Logger:     config.Logger,
		SpillDir:   config.Options.DiscoverySpillDir,
	}).Discover()
	if err != nil {
		if config.Logger != nil {
			config.Logger.Infow("no existing index discovered, initializing an empty volume", "err", err)
		}
		idx = ltfsindex.NewEmpty("ltfsgo", "", time.Now())
	}

	pathIndex := ltfsindex.NewPathIndex(idx)

	syncer := indexsync.New(indexsync.Config{Positioner: positioner, Partitions: partitions, Logger: config.Logger})

	w := writer.New(writer.Config{
		Positioner: positioner, Partitions: partitions, Syncer: syncer,
		Index: idx, PathIndex: pathIndex, Options: config.Options, Dedup: config.Dedup, Logger: config.Logger,
	})

	rd := reader.New(reader.Config{Positioner: positioner, PathIndex: pathIndex, Options: config.Options, Logger: config.Logger})

	cap := capacity.New(capacity.Config{Positioner: positioner, Partitions: partitions, Logger: config.Logger})

	auxPermits := options.DefaultMaxConcurrentAux
	if config.Options.MaxConcurrentAux > 0 {
		auxPermits = config.Options.MaxConcurrentAux
	}

	eng := &Engine{
		options: config.Options, log: config.Logger,
		device: device, partitions: partitions, positioner: positioner,
		index: idx, pathIndex: pathIndex,
		syncer: syncer, writer: w, reader: rd, capacity: cap,
		snapshotDir: config.Options.IndexSnapshotDir,
		aux:         make(chan struct{}, auxPermits),
	}

	eng.snapshotIndex(indexfile.KindLoad)
	return eng, nil
}

// snapshotIndex writes a local copy of the current index XML document
// under the conventional LTFSIndex_{Load|Write}_YYYYMMDD_HHMMSS.schema
// name (spec.md §6), a best-effort diagnostic aid rather than a step the
// write/read pipelines depend on. It runs off the tape pipeline goroutine,
// bounded by the auxiliary-operation semaphore; a disabled or failing
// snapshot never blocks the caller. The index XML is marshaled on the
// caller's goroutine first so a concurrent mutation of e.index by the next
// write can't race the background persist.
func (e *Engine) snapshotIndex(kind indexfile.Kind) {
	if e.snapshotDir == "" {
		return
	}

	xmlBytes, err := ltfsindex.Marshal(e.index)
	if err != nil {
		if e.log != nil {
			e.log.Warnw("failed to marshal index for local snapshot", "err", err)
		}
		return
	}
	name := indexfile.GenerateName(kind, e.index.UpdateTime)

	e.aux <- struct{}{}
	e.auxWG.Add(1)
	go func() {
		defer e.auxWG.Done()
		defer func() { <-e.aux }()
		e.writeSnapshotFile(name, xmlBytes)
	}()
}

func (e *Engine) writeSnapshotFile(name string, xmlBytes []byte) {
	if err := filesys.CreateDir(e.snapshotDir, 0755, true); err != nil {
		if e.log != nil {
			e.log.Warnw("failed to create index snapshot directory", "dir", e.snapshotDir, "err", err)
		}
		return
	}

	path := filepath.Join(e.snapshotDir, name)
	if err := filesys.WriteFile(path, 0644, xmlBytes); err != nil && e.log != nil {
		e.log.Warnw("failed to write local index snapshot", "path", path, "err", err)
	}
}

// WriteFile streams source onto tape under targetPath.
func (e *Engine) WriteFile(source io.ReadSeeker, targetPath string) (writer.WriteResult, error) {
	if e.closed.Load() {
		return writer.WriteResult{}, ErrEngineClosed
	}
	return e.writer.WriteFile(source, targetPath)
}

// WriteDirectory recursively writes every file under sourceDir to tape
// beneath targetPath (spec.md §4.5, "Directory walk").
func (e *Engine) WriteDirectory(sourceDir, targetPath string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.writer.Walk(sourceDir, targetPath)
}

// ExtractFile materializes targetPath from tape to dest.
func (e *Engine) ExtractFile(targetPath string, dest io.Writer) (reader.FileResult, error) {
	if e.closed.Load() {
		return reader.FileResult{}, ErrEngineClosed
	}
	return e.reader.ExtractFile(targetPath, dest)
}

// Sync forces an index synchronization regardless of the configured
// interval (spec.md §4.4).
func (e *Engine) Sync() (indexsync.Result, error) {
	if e.closed.Load() {
		return indexsync.Result{}, ErrEngineClosed
	}
	result, err := e.syncer.Sync(e.index)
	if err == nil {
		e.snapshotIndex(indexfile.KindWrite)
	}
	return result, err
}

// Capacity reports per-partition remaining/maximum capacity (spec.md §4.7).
func (e *Engine) Capacity() (capacity.Info, error) {
	if e.closed.Load() {
		return capacity.Info{}, ErrEngineClosed
	}
	return e.capacity.Refresh()
}

// Index exposes the in-memory index tree for callers (CLI listing,
// diagnostics) that need read-only access beyond the write/read pipelines.
func (e *Engine) Index() *ltfsindex.Index { return e.index }

// Close gracefully shuts down the engine: a final index synchronization,
// then releasing the device handle. Close is idempotent and safe to call
// once; subsequent calls return ErrEngineClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	if _, err := e.syncer.Sync(e.index); err != nil {
		if e.log != nil {
			e.log.Warnw("final index synchronization failed during close", "err", err)
		}
	} else {
		e.snapshotIndex(indexfile.KindWrite)
	}

	// Let any in-flight snapshot writes finish before releasing the device,
	// since Marshal already captured the index contents they need.
	e.auxWG.Wait()

	return e.device.Close()
}
