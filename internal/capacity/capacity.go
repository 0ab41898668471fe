// Package capacity implements the capacity and media-identification
// diagnostics of spec.md §4.7: LOG SENSE page 0x31 parsing for
// per-partition remaining/maximum capacity, and MediaType decoding of a
// 16-bit medium-type code (MediaTypeFromCode; no command in this package
// reads that code from the drive). It is grounded on
// original_source/src/scsi/types.rs's MediaType enum and
// tape_ops/core.rs's refresh_capacity, which both generalize cleanly:
// the media-type code table carries over unchanged, and the log-page
// parser follows the standard SSC-3 tape-capacity log page layout that
// implementation reads from (log parameter codes 0x0000-0x0003, one
// 4-byte big-endian kilobyte value per parameter).
package capacity

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/oplancelot/ltfsgo/internal/partition"
	"github.com/oplancelot/ltfsgo/internal/scsi"
	"github.com/oplancelot/ltfsgo/internal/tape"
)

// MediaType identifies the cartridge generation and write-protection
// class identified by a 16-bit medium-type code (spec.md GLOSSARY).
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaLTO3RW
	MediaLTO3WORM
	MediaLTO3RO
	MediaLTO4RW
	MediaLTO4WORM
	MediaLTO4RO
	MediaLTO5RW
	MediaLTO5WORM
	MediaLTO5RO
	MediaLTO6RW
	MediaLTO6WORM
	MediaLTO6RO
	MediaLTO7RW
	MediaLTO7WORM
	MediaLTO7RO
	MediaLTO8RW
	MediaLTO8WORM
	MediaLTO8RO
	MediaLTO9RW
	MediaLTO9WORM
	MediaLTO9RO
	MediaM8RW
	MediaM8WORM
	MediaM8RO
)

// mediaTypeCodes maps the 16-bit medium-type code MODE SENSE page 0x00's
// header carries to a MediaType (original_source/src/scsi/types.rs).
var mediaTypeCodes = map[uint16]MediaType{
	0x0044: MediaLTO3RW, 0x0144: MediaLTO3WORM, 0x0244: MediaLTO3RO,
	0x0046: MediaLTO4RW, 0x0146: MediaLTO4WORM, 0x0246: MediaLTO4RO,
	0x0058: MediaLTO5RW, 0x0158: MediaLTO5WORM, 0x0258: MediaLTO5RO,
	0x005A: MediaLTO6RW, 0x015A: MediaLTO6WORM, 0x025A: MediaLTO6RO,
	0x005C: MediaLTO7RW, 0x015C: MediaLTO7WORM, 0x025C: MediaLTO7RO,
	0x005E: MediaLTO8RW, 0x015E: MediaLTO8WORM, 0x025E: MediaLTO8RO,
	0x0060: MediaLTO9RW, 0x0160: MediaLTO9WORM, 0x0260: MediaLTO9RO,
	0x005D: MediaM8RW, 0x015D: MediaM8WORM, 0x025D: MediaM8RO,
}

// MediaTypeFromCode decodes the 16-bit medium-type code into a MediaType,
// MediaUnknown for any code this engine doesn't recognize.
func MediaTypeFromCode(code uint16) MediaType {
	if mt, ok := mediaTypeCodes[code]; ok {
		return mt
	}
	return MediaUnknown
}

// IsWORM reports whether mt is a write-once generation.
func (mt MediaType) IsWORM() bool {
	switch mt {
	case MediaLTO3WORM, MediaLTO4WORM, MediaLTO5WORM, MediaLTO6WORM, MediaLTO7WORM, MediaLTO8WORM, MediaLTO9WORM, MediaM8WORM:
		return true
	}
	return false
}

// PartitionCapacity is the remaining/maximum pair for one physical
// partition, in kilobytes.
type PartitionCapacity struct {
	RemainingKB uint64
	MaximumKB   uint64
}

// Info is the aggregate capacity report spec.md §4.7 describes.
type Info struct {
	P0 PartitionCapacity
	P1 PartitionCapacity

	// DualPartition indicates whether P1 was populated; single-partition
	// cartridges only carry P0 values.
	DualPartition bool
}

// TotalRemainingKB sums remaining capacity across populated partitions
// (spec.md §4.7: "human-level reporting sums across partitions when
// dual").
func (i Info) TotalRemainingKB() uint64 {
	if i.DualPartition {
		return i.P0.RemainingKB + i.P1.RemainingKB
	}
	return i.P0.RemainingKB
}

// TotalMaximumKB sums maximum capacity across populated partitions.
func (i Info) TotalMaximumKB() uint64 {
	if i.DualPartition {
		return i.P0.MaximumKB + i.P1.MaximumKB
	}
	return i.P0.MaximumKB
}

// Log parameter codes within the tape-capacity log page (0x31).
const (
	paramP0Remaining uint16 = 0x0000
	paramP0Maximum   uint16 = 0x0001
	paramP1Remaining uint16 = 0x0002
	paramP1Maximum   uint16 = 0x0003
)

const capacityLogPage = 0x31
const capacityLogAllocLen = 252

// Config carries the constructor dependencies for a Reporter.
type Config struct {
	Positioner *tape.Positioner
	Partitions *partition.Manager
	Logger     *zap.SugaredLogger
}

// Reporter issues LOG SENSE page 0x31 and exposes decoded capacity
// figures.
type Reporter struct {
	pos        *tape.Positioner
	partitions *partition.Manager
	log        *zap.SugaredLogger
}

// New builds a Reporter.
func New(cfg Config) *Reporter {
	return &Reporter{pos: cfg.Positioner, partitions: cfg.Partitions, log: cfg.Logger}
}

// Refresh issues LOG SENSE page 0x31 against the reporter's device and
// returns the decoded capacity figures.
func (r *Reporter) Refresh() (Info, error) {
	info, err := RefreshCapacity(r.pos.Device(), r.partitions.IsDualPartition())
	if err != nil && r.log != nil {
		r.log.Warnw("capacity refresh failed", "err", err)
	}
	return info, err
}

// LogSense issues a raw LOG SENSE for the given page/subpage and returns
// the parameter data undecoded (spec.md §4.1's general-purpose
// `log_sense(page, subpage)` primitive). Use Refresh for the decoded
// tape-capacity page; this exists for pages this package has no grounded
// decoder for yet, such as the drive error-rate log (0x32/0x0C family).
func (r *Reporter) LogSense(page, subpage byte) ([]byte, error) {
	const allocLen = 252
	cdb := scsi.LogSense(page, subpage, allocLen)
	buf := make([]byte, allocLen)
	result, err := r.pos.Device().Exec(cdb[:], buf, false)
	if err != nil {
		return nil, err
	}
	if result.Outcome != scsi.OutcomeSuccess {
		return nil, nil
	}
	return buf[:result.Transferred], nil
}

// deviceExecer is the subset of scsi.Device a Reporter needs, narrowed so
// tests can substitute a fake without a real tape device.
type deviceExecer interface {
	Exec(cdb []byte, buf []byte, toDevice bool) (scsi.Result, error)
}

// RefreshCapacity issues LOG SENSE (page 0x31) via dev and parses
// per-partition remaining/maximum capacity (spec.md §4.7). For
// single-partition cartridges only P0 is populated.
func RefreshCapacity(dev deviceExecer, dualPartition bool) (Info, error) {
	cdb := scsi.LogSense(capacityLogPage, 0, capacityLogAllocLen)
	buf := make([]byte, capacityLogAllocLen)
	result, err := dev.Exec(cdb[:], buf, false)
	if err != nil {
		return Info{}, err
	}
	if result.Outcome != scsi.OutcomeSuccess {
		return Info{}, nil // degrade to zero-valued capacity rather than fail the caller
	}

	values := parseCapacityLogPage(buf[:result.Transferred])

	info := Info{DualPartition: dualPartition}
	info.P0 = PartitionCapacity{RemainingKB: values[paramP0Remaining], MaximumKB: values[paramP0Maximum]}
	if dualPartition {
		info.P1 = PartitionCapacity{RemainingKB: values[paramP1Remaining], MaximumKB: values[paramP1Maximum]}
	}
	return info, nil
}

// parseCapacityLogPage walks the LOG SENSE page 0x31 parameter list: a
// 4-byte page header followed by a sequence of parameters, each a 2-byte
// parameter code, a control byte, a 1-byte parameter length, and that
// many bytes of value (here, always a 4-byte big-endian kilobyte count).
func parseCapacityLogPage(page []byte) map[uint16]uint64 {
	values := make(map[uint16]uint64, 4)
	if len(page) < 4 {
		return values
	}

	offset := 4 // skip page code/subpage/reserved/page-length header
	for offset+4 <= len(page) {
		code := binary.BigEndian.Uint16(page[offset : offset+2])
		paramLen := int(page[offset+3])
		valueStart := offset + 4
		valueEnd := valueStart + paramLen
		if valueEnd > len(page) {
			break
		}

		if paramLen >= 4 {
			values[code] = uint64(binary.BigEndian.Uint32(page[valueStart : valueStart+4]))
		}

		offset = valueEnd
	}
	return values
}
