package tape

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/oplancelot/ltfsgo/internal/partition"
	"github.com/oplancelot/ltfsgo/internal/scsi"
	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
)

// safetyBlockLimit caps total blocks read during an index-probe scan
// (spec.md §4.1, "Read-to-filemark contract").
const safetyBlockLimit = 200

// Config carries the constructor dependencies for a Positioner.
type Config struct {
	Device     *scsi.Device
	Partitions *partition.Manager
	Logger     *zap.SugaredLogger
	BlockSize  uint32
}

// Positioner drives LOCATE, SPACE, and READ POSITION against an open tape
// device, always translating the caller's logical partition number
// through partition.Manager before issuing a CDB.
type Positioner struct {
	dev        *scsi.Device
	partitions *partition.Manager
	log        *zap.SugaredLogger
	blockSize  uint32
}

// New builds a Positioner.
func New(cfg Config) *Positioner {
	return &Positioner{
		dev:        cfg.Device,
		partitions: cfg.Partitions,
		log:        cfg.Logger,
		blockSize:  cfg.BlockSize,
	}
}

// Locate positions the tape head at the given block on the given logical
// partition (0 = index, 1 = data), mapping it to its physical target via
// partition.Manager.Map. A single-partition cartridge's logical data
// partition collapses to physical 0 exactly like every other access to it
// — this never fails solely because the cartridge lacks a second
// partition; only an unrecognized logical number is rejected before any
// SCSI call.
func (p *Positioner) Locate(logical int, block uint64) error {
	if err := p.partitions.ValidateLogical(logical); err != nil {
		return err
	}

	physical, err := p.partitions.Map(logical)
	if err != nil {
		return err
	}

	return p.locatePhysical(physical, block, logical)
}

// LocatePhysical positions the tape head at the given block on an
// already-resolved physical partition number, used when the caller holds a
// physical partition taken directly from an on-tape structure (an extent's
// recorded partition) rather than a logical 0/1 the engine chose. Unlike
// Locate, this rejects physical partition 1 on a single-partition
// cartridge (spec.md §8) instead of collapsing it — a stored extent
// pointing at a partition the mounted cartridge doesn't have is a real
// inconsistency, not something to paper over.
func (p *Positioner) LocatePhysical(physical uint8, block uint64) error {
	if err := p.partitions.ValidatePhysical(physical); err != nil {
		return err
	}
	return p.locatePhysical(physical, block, -1)
}

// logicalForLog is -1 when the caller addressed a physical partition
// directly, in which case the log line omits the (meaningless) logical
// partition field.
func (p *Positioner) locatePhysical(physical uint8, block uint64, logicalForLog int) error {
	var cdbBytes []byte
	if block > 0xFFFFFFFF {
		cdb := scsi.Locate16(block, physical, true)
		cdbBytes = cdb[:]
	} else {
		cdb := scsi.Locate10(uint32(block), physical, true)
		cdbBytes = cdb[:]
	}

	result, err := p.dev.Exec(cdbBytes, nil, false)
	if err != nil {
		return err
	}
	if result.Outcome != scsi.OutcomeSuccess {
		return ltfserrors.NewSCSIError(
			nil, ltfserrors.ErrorCodeSCSIIllegalRequest, "LOCATE failed",
		).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).
			WithOperation("locate").
			WithDetail("logicalPartition", logicalForLog).
			WithDetail("physicalPartition", physical).
			WithDetail("block", block)
	}

	if p.log != nil {
		p.log.Infow("located", "logicalPartition", logicalForLog, "physicalPartition", physical, "block", block)
	}
	return nil
}

// SpaceFilemarks moves the head by count filemarks (negative counts move
// backward).
func (p *Positioner) SpaceFilemarks(count int32) error {
	return p.space(scsi.SpaceTypeFileMarks, count)
}

// SpaceToEndOfData moves the head to the end-of-data position on the
// current partition.
func (p *Positioner) SpaceToEndOfData() error {
	return p.space(scsi.SpaceTypeEndOfData, 0)
}

func (p *Positioner) space(spaceType scsi.SpaceType, count int32) error {
	cdb := scsi.Space6(spaceType, count)
	result, err := p.dev.Exec(cdb[:], nil, false)
	if err != nil {
		return err
	}
	if result.Outcome == scsi.OutcomeFatal {
		return ltfserrors.NewSCSIError(
			nil, ltfserrors.ErrorCodeSCSIIllegalRequest, "SPACE failed",
		).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).WithOperation("space")
	}
	return nil
}

// ReadPosition issues READ POSITION and decodes the short-form tape
// position response.
func (p *Positioner) ReadPosition() (Position, error) {
	cdb := scsi.ReadPosition()
	buf := make([]byte, 20)
	result, err := p.dev.Exec(cdb[:], buf, false)
	if err != nil {
		return Position{}, err
	}
	if result.Outcome != scsi.OutcomeSuccess {
		return Position{}, ltfserrors.NewSCSIError(
			nil, ltfserrors.ErrorCodeSCSIIllegalRequest, "READ POSITION failed",
		).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).WithOperation("read_position")
	}

	return decodePosition(buf), nil
}

func decodePosition(buf []byte) Position {
	var pos Position
	if len(buf) < 20 {
		return pos
	}

	flags := buf[0]
	pos.BeginningOfPartition = flags&0x80 != 0
	pos.EndOfData = flags&0x40 != 0
	pos.Partition = buf[1]
	pos.BlockNumber = uint64(binary.BigEndian.Uint32(buf[4:8]))
	pos.FileNumber = uint64(binary.BigEndian.Uint32(buf[8:12]))
	pos.SetNumber = uint64(binary.BigEndian.Uint32(buf[12:16]))
	return pos
}

// WriteBlock issues WRITE(6) for exactly one variable-length block holding
// data, unpadded. Callers writing the LTFS index must pass the exact XML
// byte length here — padding to block size corrupts the index with
// trailing NUL bytes and provokes an ILI warning on the following read.
func (p *Positioner) WriteBlock(data []byte) error {
	cdb := scsi.Write6(uint32(len(data)))
	result, err := p.dev.Exec(cdb[:], data, true)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case scsi.OutcomeSuccess:
		return nil
	case scsi.OutcomeBenignEnd:
		// Early-warning EOM (spec.md §7): the drive is nearing physical
		// end-of-tape but the write itself committed. Log and continue —
		// only a true volume-overflow sense (OutcomeFatal) stops the write.
		if p.log != nil {
			p.log.Warnw("early-warning end-of-medium reached", "bytes", len(data))
		}
		return nil
	default:
		return ltfserrors.NewSCSIError(
			nil, ltfserrors.ErrorCodeSCSIIllegalRequest, "WRITE failed",
		).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).
			WithOperation("write").WithDetail("bytes", len(data))
	}
}

// WriteFilemarksCount writes count filemarks at the current position.
func (p *Positioner) WriteFilemarksCount(count uint32) error {
	cdb := scsi.WriteFilemarks(count)
	result, err := p.dev.Exec(cdb[:], nil, false)
	if err != nil {
		return err
	}
	if result.Outcome != scsi.OutcomeSuccess {
		return ltfserrors.NewSCSIError(
			nil, ltfserrors.ErrorCodeSCSIIllegalRequest, "WRITE FILEMARKS failed",
		).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).WithOperation("write_filemarks")
	}
	return nil
}

// WriteMAMAttribute issues WRITE ATTRIBUTE against the given physical
// partition with a pre-built attribute parameter list (scsi.BuildMAMAttributeParameter).
func (p *Positioner) WriteMAMAttribute(physicalPartition uint8, param []byte) error {
	cdb := scsi.WriteAttribute(physicalPartition, uint32(len(param)))
	result, err := p.dev.Exec(cdb[:], param, true)
	if err != nil {
		return err
	}
	if result.Outcome != scsi.OutcomeSuccess {
		return ltfserrors.NewSCSIError(
			nil, ltfserrors.ErrorCodeSCSIIllegalRequest, "WRITE ATTRIBUTE failed",
		).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).
			WithOperation("write_attribute").WithDetail("partition", physicalPartition)
	}
	return nil
}

// PartitionManager exposes the partition manager this positioner maps
// logical partitions through, for callers that need to resolve a logical
// partition to a physical one without a LOCATE.
func (p *Positioner) PartitionManager() *partition.Manager { return p.partitions }

// Device exposes the underlying SCSI handle for callers (capacity) that
// issue commands outside the LOCATE/SPACE/READ POSITION surface this
// type wraps.
func (p *Positioner) Device() *scsi.Device { return p.dev }

// ReadBytes reads variable-length blocks starting at the current position
// until at least minBytes have been accumulated, returning the
// concatenated bytes. Unlike ReadToFilemark, encountering a filemark (a
// zero-length transfer) before minBytes is satisfied is a truncation
// error rather than a normal stop — this is used to read a known-length
// extent, not to discover where one ends (spec.md §4.6, step 2).
func (p *Positioner) ReadBytes(minBytes int, limit int) ([]byte, error) {
	var out []byte
	var consecutiveErrors int
	var blocksRead int

	for len(out) < minBytes && blocksRead < limit {
		cdb := scsi.Read6(p.blockSize, true)
		buf := make([]byte, p.blockSize)
		result, err := p.dev.Exec(cdb[:], buf, false)

		if err != nil {
			consecutiveErrors++
			if consecutiveErrors >= 3 {
				return nil, err
			}
			continue
		}
		if result.Outcome == scsi.OutcomeFatal {
			return nil, ltfserrors.NewSCSIError(
				nil, ltfserrors.ErrorCodeSCSIMediumError, "read failed while reading an extent",
			).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).WithOperation("read")
		}
		consecutiveErrors = 0

		if result.Transferred == 0 {
			return nil, ltfserrors.NewLTFSIndexError(
				nil, ltfserrors.ErrorCodeIndexTruncated, "hit a filemark before the extent's declared byte count was satisfied",
			).WithOperation("read_extent")
		}

		out = append(out, buf[:result.Transferred]...)
		blocksRead++
	}

	if len(out) < minBytes {
		return nil, ltfserrors.NewLTFSIndexError(
			nil, ltfserrors.ErrorCodeIndexTruncated, "extent block-read limit reached before the declared byte count was satisfied",
		).WithOperation("read_extent")
	}

	return out, nil
}

// ReadToFilemark reads variable-length blocks (up to the configured block
// size each) starting at the current position until a zero-length read
// signals a filemark, returning the concatenated
// bytes. It implements spec.md §4.1's read-to-filemark contract: stop on a
// zero-length read; stop and return what was read if a medium error
// occurs after at least one successful block; fail if three consecutive
// SCSI errors occur with zero blocks read. Total blocks read is capped at
// safetyBlockLimit for index-probe use; callers doing bulk file reads use
// a larger limit via ReadToFilemarkLimit.
func (p *Positioner) ReadToFilemark() ([]byte, error) {
	return p.ReadToFilemarkLimit(safetyBlockLimit)
}

// ReadToFilemarkLimit is ReadToFilemark with a caller-chosen block cap.
func (p *Positioner) ReadToFilemarkLimit(limit int) ([]byte, error) {
	var out []byte
	var consecutiveErrors int
	var blocksRead int

	for blocksRead < limit {
		cdb := scsi.Read6(p.blockSize, true)
		buf := make([]byte, p.blockSize)
		result, err := p.dev.Exec(cdb[:], buf, false)

		if err != nil {
			consecutiveErrors++
			if blocksRead == 0 && consecutiveErrors >= 3 {
				return nil, err
			}
			if blocksRead > 0 {
				return out, nil
			}
			continue
		}

		if result.Outcome == scsi.OutcomeFatal {
			if blocksRead > 0 {
				return out, nil
			}
			consecutiveErrors++
			if consecutiveErrors >= 3 {
				return nil, ltfserrors.NewSCSIError(
					nil, ltfserrors.ErrorCodeSCSIMediumError, "read-to-filemark failed after retries",
				).WithSense(result.Sense.Key, result.Sense.ASC, result.Sense.ASCQ).WithOperation("read")
			}
			continue
		}

		consecutiveErrors = 0

		if result.Transferred == 0 {
			break // filemark
		}

		out = append(out, buf[:result.Transferred]...)
		blocksRead++
	}

	return out, nil
}
