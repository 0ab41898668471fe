// Package indexsync commits an in-memory index generation to tape
// (spec.md §4.4): a WriteCurrentIndex pass on the data partition, an
// optional RefreshIndexPartition pass on the index partition, and a MAM
// Volume Coherency Information update. It is grounded on the teacher's
// internal/storage segment-rotation state machine — both generalize "make
// the in-memory state durable, retry on transient failure, report exactly
// what committed" from rotating a Bitcask segment file to committing an
// LTFS index generation across one or two tape partitions.
package indexsync

import (
	"time"

	"go.uber.org/zap"

	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
	"github.com/oplancelot/ltfsgo/internal/partition"
	"github.com/oplancelot/ltfsgo/internal/scsi"
	"github.com/oplancelot/ltfsgo/internal/tape"
	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
)

// indexPartitionHeaderFilemark is the filemark LOCATE targets on the index
// partition to reach the slot immediately after the VOL1/label filemarks
// by LTFS convention (spec.md §4.4.2.a).
const indexPartitionHeaderFilemark = 3

// retryBackoffs is the progressive backoff schedule for WriteCurrentIndex
// retries (spec.md §4.4: "retry up to three times... 1s, 2s, 5s").
var retryBackoffs = []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second}

// Result reports which half of the dual-partition protocol committed.
type Result struct {
	DataPartitionSynced  bool
	IndexPartitionSynced bool
	Generation           uint64
	Location             ltfsindex.Location
}

// Partial reports whether the data-partition copy alone succeeded while
// the index-partition refresh failed — the data-partition copy remains
// authoritative in that case (spec.md §4.4).
func (r Result) Partial() bool {
	return r.DataPartitionSynced && !r.IndexPartitionSynced
}

// Config carries the constructor dependencies for a Syncer.
type Config struct {
	Positioner *tape.Positioner
	Partitions *partition.Manager
	Logger     *zap.SugaredLogger
	Now        func() time.Time
	Sleep      func(time.Duration)
}

// Syncer commits index generations to tape via the protocol spec.md §4.4
// describes.
type Syncer struct {
	pos        *tape.Positioner
	partitions *partition.Manager
	log        *zap.SugaredLogger
	now        func() time.Time
	sleep      func(time.Duration)
}

// New builds a Syncer. Now and Sleep default to time.Now and time.Sleep;
// callers inject fakes in tests to avoid real backoff delays.
func New(cfg Config) *Syncer {
	s := &Syncer{pos: cfg.Positioner, partitions: cfg.Partitions, log: cfg.Logger, now: cfg.Now, sleep: cfg.Sleep}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	return s
}

// Sync runs the full protocol against idx, mutating it in place
// (GenerationNumber, UpdateTime, PreviousGenerationLocation, Location) as
// each half commits.
func (s *Syncer) Sync(idx *ltfsindex.Index) (Result, error) {
	result := Result{Generation: idx.GenerationNumber}

	if err := s.writeCurrentIndexWithRetry(idx); err != nil {
		return result, err
	}
	result.DataPartitionSynced = true
	result.Generation = idx.GenerationNumber
	result.Location = idx.Location

	if s.partitions.IsDualPartition() {
		if err := s.refreshIndexPartition(idx); err != nil {
			if s.log != nil {
				s.log.Warnw("index-partition refresh failed, data-partition copy remains authoritative", "err", err, "generation", idx.GenerationNumber)
			}
			return result, ltfserrors.NewLTFSIndexError(
				err, ltfserrors.ErrorCodeIndexSyncPartial, "index-partition refresh failed after data-partition commit succeeded",
			).WithOperation("sync_index_refresh").WithGeneration(idx.GenerationNumber)
		}
		result.IndexPartitionSynced = true
	}

	if err := s.updateVCI(idx); err != nil {
		if s.log != nil {
			s.log.Warnw("MAM volume coherency update failed, data-partition copy remains authoritative", "err", err)
		}
	}

	return result, nil
}

// writeCurrentIndexWithRetry performs step 1 of the protocol, retrying up
// to three times with progressive backoff and repositioning to the data
// partition between attempts.
func (s *Syncer) writeCurrentIndexWithRetry(idx *ltfsindex.Index) error {
	var lastErr error

	attempts := len(retryBackoffs) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			s.sleep(retryBackoffs[attempt-1])
			if err := s.pos.Locate(partition.LogicalData, 0); err != nil {
				lastErr = err
				continue
			}
		}

		if err := s.writeCurrentIndex(idx); err != nil {
			lastErr = err
			if s.log != nil {
				s.log.Infow("WriteCurrentIndex attempt failed", "attempt", attempt+1, "err", err)
			}
			continue
		}
		return nil
	}

	return ltfserrors.NewLTFSIndexError(
		lastErr, ltfserrors.ErrorCodeIndexSyncFailed, "WriteCurrentIndex failed after exhausting retries",
	).WithOperation("sync_data").WithGeneration(idx.GenerationNumber)
}

// writeCurrentIndex performs spec.md §4.4.1, steps a-g, once.
func (s *Syncer) writeCurrentIndex(idx *ltfsindex.Index) error {
	if err := s.pos.Locate(partition.LogicalData, 0); err != nil {
		return err
	}
	if err := s.pos.SpaceToEndOfData(); err != nil {
		return err
	}

	pos, err := s.pos.ReadPosition()
	if err != nil {
		return err
	}

	// First-write exception: EOD at block 0 colliding with the recorded
	// index location (also block 0) is only permitted for generation <= 1.
	if pos.BlockNumber == idx.Location.StartBlock && idx.GenerationNumber > 1 {
		return ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodeIndexGenerationConflict,
			"end-of-data collides with the currently recorded index location past the first write",
		).WithGeneration(idx.GenerationNumber).WithOperation("sync_data")
	}

	if err := s.pos.WriteFilemarksCount(1); err != nil {
		return err
	}

	prevLocation := idx.Location
	idx.GenerationNumber++
	idx.UpdateTime = s.now()
	idx.PreviousGenerationLocation = &prevLocation

	writePos, err := s.pos.ReadPosition()
	if err != nil {
		return err
	}
	// writePos.Partition is whatever physical partition the data partition
	// actually maps to (0 on a single-partition cartridge, 1 when dual) —
	// never hardcode partition 1 here.
	idx.Location = ltfsindex.Location{Partition: writePos.Partition, StartBlock: writePos.BlockNumber}

	xmlBytes, err := ltfsindex.Marshal(idx)
	if err != nil {
		return err
	}

	if err := s.pos.WriteBlock(xmlBytes); err != nil {
		return err
	}
	if err := s.pos.WriteFilemarksCount(1); err != nil {
		return err
	}

	return nil
}

// refreshIndexPartition performs spec.md §4.4.2, steps a-d.
func (s *Syncer) refreshIndexPartition(idx *ltfsindex.Index) error {
	if err := s.pos.Locate(partition.LogicalIndex, 0); err != nil {
		return err
	}
	if err := s.pos.SpaceFilemarks(indexPartitionHeaderFilemark); err != nil {
		return err
	}
	if err := s.pos.WriteFilemarksCount(1); err != nil {
		return err
	}

	refreshPos, err := s.pos.ReadPosition()
	if err != nil {
		return err
	}
	idx.Location = ltfsindex.Location{Partition: 0, StartBlock: refreshPos.BlockNumber}

	xmlBytes, err := ltfsindex.Marshal(idx)
	if err != nil {
		return err
	}

	if err := s.pos.WriteBlock(xmlBytes); err != nil {
		return err
	}
	return s.pos.WriteFilemarksCount(1)
}

// updateVCI writes the generation number and volume UUID MAM attributes
// (spec.md §4.4, step 3) to the data partition.
func (s *Syncer) updateVCI(idx *ltfsindex.Index) error {
	physical, err := s.partitions.Map(partition.LogicalData)
	if err != nil {
		return err
	}

	genParam := scsi.BuildMAMAttributeParameter(scsi.MAMAttrGenerationNumber, false, encodeGeneration(idx.GenerationNumber))
	if err := s.pos.WriteMAMAttribute(physical, genParam); err != nil {
		return err
	}

	uuidParam := scsi.BuildMAMAttributeParameter(scsi.MAMAttrVolumeUUID, true, []byte(idx.VolumeUUID))
	return s.pos.WriteMAMAttribute(physical, uuidParam)
}

// encodeGeneration renders a generation number as the 8-byte big-endian
// value MAM attribute 0x080C requires (spec.md §4.4, step 3).
func encodeGeneration(generation uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[7-i] = byte(generation >> (8 * i))
	}
	return buf
}
