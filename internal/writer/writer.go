// Package writer implements the streaming write pipeline of spec.md §4.5:
// position at end-of-data, stream a source through a block-sized buffer
// while feeding a hash fan-out and a rate limiter, issue one WRITE(6) per
// block, and fold the result into the in-memory index tree, triggering
// synchronization at the configured interval. It is grounded on the
// teacher's storage.Put path: the same "buffer, checksum, persist,
// update the in-memory structure, maybe rotate" shape, generalized from
// appending a Bitcask record to streaming an arbitrarily large file onto
// tape one fixed-size block at a time.
package writer

import (
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oplancelot/ltfsgo/internal/indexsync"
	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
	"github.com/oplancelot/ltfsgo/internal/partition"
	"github.com/oplancelot/ltfsgo/internal/tape"
	"github.com/oplancelot/ltfsgo/pkg/hashfanout"
	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
	"github.com/oplancelot/ltfsgo/pkg/options"
	"github.com/oplancelot/ltfsgo/pkg/ratelimit"
)

// pauseCheckInterval is how long the write loop sleeps between re-checks
// of the pause flag (spec.md §4.5: "while pause-flag is set, sleep 100 ms
// and re-check").
const pauseCheckInterval = 100 * time.Millisecond

// WriteResult reports the outcome of one file write (spec.md §4.5's
// write(source, target_path) contract).
type WriteResult struct {
	StartPosition ltfsindex.Location
	BlocksWritten uint64
	BytesWritten  uint64
}

// Config carries the constructor dependencies for a Writer.
type Config struct {
	Positioner *tape.Positioner
	Partitions *partition.Manager
	Syncer     *indexsync.Syncer
	Index      *ltfsindex.Index
	PathIndex  *ltfsindex.PathIndex
	Options    *options.Options
	Dedup      DedupIndex
	Logger     *zap.SugaredLogger
	Now        func() time.Time
}

// Writer drives the write pipeline against one open, positioned device.
type Writer struct {
	pos        *tape.Positioner
	partitions *partition.Manager
	syncer     *indexsync.Syncer
	idx        *ltfsindex.Index
	pathIndex  *ltfsindex.PathIndex
	opts       *options.Options
	dedup      DedupIndex
	log        *zap.SugaredLogger
	now        func() time.Time
	limiter    *ratelimit.Limiter

	stop  atomic.Bool
	pause atomic.Bool

	totalBytesUnindexed uint64
	duplicatesSkipped   uint64
	spaceSaved          uint64
}

// New builds a Writer. A nil Dedup disables deduplication entirely,
// distinct from an empty MemoryDedupIndex (which participates but starts
// with no recorded digests).
func New(cfg Config) *Writer {
	w := &Writer{
		pos:        cfg.Positioner,
		partitions: cfg.Partitions,
		syncer:     cfg.Syncer,
		idx:        cfg.Index,
		pathIndex:  cfg.PathIndex,
		opts:       cfg.Options,
		dedup:      cfg.Dedup,
		log:        cfg.Logger,
		now:        cfg.Now,
	}
	if w.now == nil {
		w.now = time.Now
	}
	if cfg.Options != nil && cfg.Options.SpeedLimitMiBps > 0 {
		w.limiter = ratelimit.New(int64(cfg.Options.SpeedLimitMiBps) * 1024 * 1024)
	}
	return w
}

// Stop requests that the in-progress or next write return a cancellation
// error at the next per-block boundary.
func (w *Writer) Stop() { w.stop.Store(true) }

// Pause suspends the write loop between blocks until Resume is called.
func (w *Writer) Pause() { w.pause.Store(true) }

// Resume clears a prior Pause.
func (w *Writer) Resume() { w.pause.Store(false) }

// Stats reports the deduplication counters spec.md §4.5 names.
func (w *Writer) Stats() (duplicatesSkipped, spaceSaved uint64) {
	return w.duplicatesSkipped, w.spaceSaved
}

// WriteFile streams source onto tape at targetPath, following spec.md
// §4.5's algorithm. source must support Seek so an optional dedup quick
// digest can be computed ahead of the main pass without consuming the
// stream the WRITE(6) loop needs.
func (w *Writer) WriteFile(source io.ReadSeeker, targetPath string) (WriteResult, error) {
	var quickDigest string
	if w.dedup != nil {
		digest, err := computeQuickDigest(source)
		if err != nil {
			return WriteResult{}, err
		}
		quickDigest = digest

		if w.opts != nil && w.opts.SkipDuplicates {
			if rec, hit := w.dedup.Lookup(quickDigest); hit {
				return w.recordDeduplicatedFile(targetPath, rec)
			}
		}
	}

	if w.opts != nil && w.opts.GotoEODOnWrite {
		if err := w.pos.Locate(partition.LogicalData, 0); err != nil {
			return WriteResult{}, err
		}
		if err := w.pos.SpaceToEndOfData(); err != nil {
			return WriteResult{}, err
		}
	}

	startPos, err := w.pos.ReadPosition()
	if err != nil {
		return WriteResult{}, err
	}
	start := ltfsindex.Location{Partition: startPos.Partition, StartBlock: startPos.BlockNumber}

	blockSize := options.DefaultBlockSize
	if w.opts != nil && w.opts.BlockSize > 0 {
		blockSize = w.opts.BlockSize
	}

	if err := w.checkMemoryBudget(blockSize); err != nil {
		return WriteResult{}, err
	}

	fanout := hashfanout.New(fanoutEnabled(w.opts))
	buf := make([]byte, blockSize)

	var blocksWritten, bytesWritten uint64

	for {
		if w.stop.Load() {
			return WriteResult{}, ltfserrors.NewOperationCancelledError(
				"write cancelled by stop flag",
			).WithStage("write").WithBlocksComplete(int64(blocksWritten))
		}
		for w.pause.Load() {
			time.Sleep(pauseCheckInterval)
		}

		n, readErr := io.ReadFull(source, buf)
		if n > 0 {
			fanout.Write(buf[:n])

			if w.limiter != nil {
				if sleep := w.limiter.Observe(w.now(), int64(n)); sleep > 0 {
					time.Sleep(sleep)
				}
			}

			if err := w.pos.WriteBlock(buf[:n]); err != nil {
				return WriteResult{}, err
			}
			blocksWritten++
			bytesWritten += uint64(n)
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return WriteResult{}, ltfserrors.NewFileOperationError(
				readErr, ltfserrors.ErrorCodeFileReadFailure, "failed reading write source",
			)
		}
	}

	if err := w.pos.WriteFilemarksCount(1); err != nil {
		return WriteResult{}, err
	}

	digests := fanout.Digests()
	if quickDigest != "" {
		digests["ltfs.dedup.quickdigest"] = quickDigest
	}

	if err := w.appendFileNode(targetPath, bytesWritten, start, digests); err != nil {
		return WriteResult{}, err
	}

	if w.dedup != nil && quickDigest != "" {
		w.dedup.Record(quickDigest, DedupRecord{
			Partition: start.Partition, StartBlock: start.StartBlock,
			UID: w.idx.HighestFileUID, Length: bytesWritten,
		})
	}

	w.totalBytesUnindexed += bytesWritten
	if w.shouldSync() {
		if _, err := w.syncer.Sync(w.idx); err != nil {
			return WriteResult{}, err
		}
		w.totalBytesUnindexed = 0
	}

	return WriteResult{StartPosition: start, BlocksWritten: blocksWritten, BytesWritten: bytesWritten}, nil
}

func (w *Writer) shouldSync() bool {
	if w.opts == nil {
		return false
	}
	if w.opts.ForceFlush {
		return true
	}
	return w.opts.IndexWriteInterval > 0 && w.totalBytesUnindexed >= w.opts.IndexWriteInterval
}

// checkMemoryBudget is an up-front approximation of spec.md §4.5's
// in-flight memory accounting, run once per WriteFile call: it checks that
// 33 block-sized buffers (a 32-block allowance plus the one block buffer
// the loop uses) fit within the cap. There is no running counter, and the
// whole-source read done for the dedup quick digest is not counted.
func (w *Writer) checkMemoryBudget(blockSize uint32) error {
	if w.opts == nil || w.opts.MemoryCapBytes <= 0 {
		return nil
	}
	required := int64(blockSize)*32 + int64(blockSize)
	if required <= w.opts.MemoryCapBytes {
		return nil
	}
	// Cleanup: nothing to reclaim in this single-buffer pipeline. If the
	// requirement still exceeds the cap after that, fail per spec.md §4.5.
	return ltfserrors.NewResourceExhaustedError(
		nil, ltfserrors.ErrorCodeMemoryCapExceeded, "write buffer would exceed the configured memory cap",
	).WithResource("memory").WithBudget(w.opts.MemoryCapBytes, required)
}

func (w *Writer) recordDeduplicatedFile(targetPath string, rec DedupRecord) (WriteResult, error) {
	w.duplicatesSkipped++
	w.spaceSaved += rec.Length

	location := ltfsindex.Location{Partition: rec.Partition, StartBlock: rec.StartBlock}
	digests := map[string]string{}
	if err := w.appendFileNode(targetPath, rec.Length, location, digests); err != nil {
		return WriteResult{}, err
	}

	return WriteResult{StartPosition: location, BytesWritten: rec.Length}, nil
}

func computeQuickDigest(source io.ReadSeeker) (string, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return "", ltfserrors.NewFileOperationError(
			err, ltfserrors.ErrorCodeFileReadFailure, "failed reading source for dedup quick digest",
		)
	}
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return "", ltfserrors.NewFileOperationError(
			err, ltfserrors.ErrorCodeFileReadFailure, "failed rewinding source after dedup quick digest",
		)
	}
	return hashfanout.QuickDigest(data), nil
}

func fanoutEnabled(opts *options.Options) hashfanout.Enabled {
	if opts == nil || opts.Hashes == nil {
		return hashfanout.Enabled{}
	}
	h := opts.Hashes
	return hashfanout.Enabled{
		SHA1: h.OnWrite, MD5: h.OnWrite, SHA256: h.OnWrite,
		Blake3: h.Blake3, XXH3: h.XXH3, XXH128: h.XXH128,
	}
}
