// Package discovery implements the multi-strategy index discovery of
// spec.md §4.3: given an initialized drive, try candidate tape locations
// in order until one yields XML that parses and validates. Grounded on
// the teacher's internal/storage.New recovery logic, which also tries a
// preferred path (discover the latest segment) before falling back to a
// bootstrap case — generalized here from "one deterministic location" to
// an ordered list of heuristic candidates, since spec.md §4.3 requires
// trying several historically-used conventions rather than one fixed spot.
package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
	"github.com/oplancelot/ltfsgo/internal/partition"
	"github.com/oplancelot/ltfsgo/internal/tape"
	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
	"github.com/oplancelot/ltfsgo/pkg/filesys"
)

// commonIndexPartitionBlocks are the block numbers prior LTFS writers in
// the wild have conventionally used (spec.md §4.3, strategy 2).
var commonIndexPartitionBlocks = []uint64{10, 2, 5, 6, 20, 100}

// boundedScanBlocks are probed on single-partition cartridges (strategy 4).
var boundedScanBlocks = []uint64{50, 100, 500, 1000, 2000}

// Config carries the constructor dependencies for a Discoverer.
type Config struct {
	Positioner *tape.Positioner
	Partitions *partition.Manager
	Logger     *zap.SugaredLogger

	// SpillDir, if set, receives a raw copy of every candidate block this
	// discoverer reads before it attempts to parse it, the same
	// open-with-explicit-flags-then-write shape the teacher's
	// storage.openSegmentFile uses for its segment files. Best-effort
	// diagnostic aid: a write failure here never fails discovery itself.
	SpillDir string
}

// Discoverer runs the ordered probe strategy against an open, positioned
// device.
type Discoverer struct {
	pos        *tape.Positioner
	partitions *partition.Manager
	log        *zap.SugaredLogger
	spillDir   string
}

// New builds a Discoverer.
func New(cfg Config) *Discoverer {
	return &Discoverer{pos: cfg.Positioner, partitions: cfg.Partitions, log: cfg.Logger, spillDir: cfg.SpillDir}
}

// spillCandidate persists buf to the configured spill directory under a
// name identifying the candidate that produced it, so a failed discovery
// run can be diagnosed after the fact without re-mounting the cartridge.
func (d *Discoverer) spillCandidate(c candidate, buf []byte) {
	if d.spillDir == "" || len(buf) == 0 {
		return
	}

	if err := filesys.CreateDir(d.spillDir, 0755, true); err != nil {
		if d.log != nil {
			d.log.Warnw("failed to create discovery spill directory", "dir", d.spillDir, "err", err)
		}
		return
	}

	name := fmt.Sprintf("candidate_%s_p%d_b%d.raw", c.strategy, c.partition, c.block)
	path := filepath.Join(d.spillDir, name)
	if err := filesys.WriteFile(path, 0644, buf); err != nil && d.log != nil {
		d.log.Warnw("failed to write discovery spill file", "path", path, "err", err)
	}
}

// candidate names one probe attempt for logging/error context.
type candidate struct {
	strategy  string
	partition int
	block     uint64
}

// Discover tries each strategy in spec.md §4.3's order and returns the
// first index that both parses as well-formed XML and passes semantic
// validation.
func (d *Discoverer) Discover() (*ltfsindex.Index, error) {
	var candidates []candidate

	if d.partitions.IsDualPartition() {
		candidates = append(candidates, candidate{strategy: "data_partition_eod", partition: partition.LogicalData})
		for _, b := range commonIndexPartitionBlocks {
			candidates = append(candidates, candidate{strategy: "common_location", partition: partition.LogicalIndex, block: b})
		}
		candidates = append(candidates, candidate{strategy: "volume_label_pointer", partition: partition.LogicalIndex, block: 0})
	} else {
		for _, b := range boundedScanBlocks {
			candidates = append(candidates, candidate{strategy: "bounded_scan", partition: partition.LogicalIndex, block: b})
		}
	}

	var lastErr error
	for _, c := range candidates {
		idx, err := d.tryCandidate(c)
		if err != nil {
			lastErr = err
			if d.log != nil {
				d.log.Infow("discovery candidate failed", "strategy", c.strategy, "partition", c.partition, "block", c.block, "err", err)
			}
			continue
		}
		if d.log != nil {
			d.log.Infow("index discovered", "strategy", c.strategy, "partition", c.partition, "block", c.block, "generation", idx.GenerationNumber)
		}
		return idx, nil
	}

	return nil, ltfserrors.NewLTFSIndexError(
		lastErr, ltfserrors.ErrorCodeIndexNotFound, "exhausted all index discovery strategies",
	).WithOperation("discover")
}

func (d *Discoverer) tryCandidate(c candidate) (*ltfsindex.Index, error) {
	if c.strategy == "data_partition_eod" {
		return d.tryDataPartitionEOD()
	}
	if c.strategy == "volume_label_pointer" {
		return d.tryVolumeLabelPointer()
	}

	if err := d.pos.Locate(c.partition, c.block); err != nil {
		return nil, err
	}
	return d.readAndValidateCandidate(c)
}

// tryDataPartitionEOD implements strategy 1: locate end-of-data on the
// data partition, back up past the trailing filemark pair, and read the
// index that should sit just before EOD on a cleanly closed cartridge.
func (d *Discoverer) tryDataPartitionEOD() (*ltfsindex.Index, error) {
	if err := d.pos.Locate(partition.LogicalData, 0); err != nil {
		return nil, err
	}
	if err := d.pos.SpaceToEndOfData(); err != nil {
		return nil, err
	}
	// Back up past the two filemarks (index filemark + final EOD filemark)
	// separating the last index write from end-of-data.
	if err := d.pos.SpaceFilemarks(-2); err != nil {
		return nil, err
	}
	return d.readAndValidateCandidate(candidate{strategy: "data_partition_eod", partition: partition.LogicalData})
}

// tryVolumeLabelPointer implements strategy 3: read block 0 of the index
// partition, search for the VOL1 label's embedded LTFS tag, and follow
// its current-index-location hint.
func (d *Discoverer) tryVolumeLabelPointer() (*ltfsindex.Index, error) {
	if err := d.pos.Locate(partition.LogicalIndex, 0); err != nil {
		return nil, err
	}

	buf, err := d.pos.ReadToFilemarkLimit(1)
	if err != nil {
		return nil, err
	}
	d.spillCandidate(candidate{strategy: "vol1_label", partition: partition.LogicalIndex, block: 0}, buf)

	if len(buf) < 80 || !strings.Contains(string(buf[:min(80, len(buf))]), "LTFS") {
		return nil, ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodeIndexNotFound, "VOL1 label does not carry an LTFS tag in its first 80 bytes",
		).WithOperation("discover")
	}

	// The embedded pointer's exact byte offset is drive/writer specific;
	// absent a concrete drive to decode against, fall back to the
	// partition's block 1, the conventional first-index slot immediately
	// following the VOL1 label.
	if err := d.pos.Locate(partition.LogicalIndex, 1); err != nil {
		return nil, err
	}
	return d.readAndValidateCandidate(candidate{strategy: "volume_label_pointer", partition: partition.LogicalIndex, block: 1})
}

func (d *Discoverer) readAndValidateCandidate(c candidate) (*ltfsindex.Index, error) {
	buf, err := d.pos.ReadToFilemark()
	if err != nil {
		return nil, err
	}
	d.spillCandidate(c, buf)

	text := string(buf)
	if !strings.Contains(text, "<ltfsindex") || !strings.Contains(text, "</ltfsindex>") {
		return nil, ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodeIndexTruncated, "candidate block does not contain a complete ltfsindex document",
		).WithOperation("discover")
	}

	idx, err := ltfsindex.Unmarshal(buf)
	if err != nil {
		return nil, err
	}

	if err := ltfsindex.Validate(idx); err != nil {
		return nil, err
	}

	return idx, nil
}
