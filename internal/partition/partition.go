// Package partition implements the logical-to-physical partition mapping
// of spec.md §4.1: issue MODE SENSE (page 0x11); if byte 3 is at least 1,
// the cartridge has an extra partition and logical 0 maps to physical 0
// (index) while logical 1 maps to physical 1 (data); otherwise the
// cartridge is single-partition and both logical partitions map to
// physical 0. Every LOCATE by logical partition consults this mapping —
// using a raw logical number directly is, per the spec, the single most
// easily introduced bug class in this kind of source, so Map is the only
// logical-to-physical translation. The one LOCATE path that skips Map is
// tape.Positioner.LocatePhysical, which takes a partition number that is
// already physical (an extent's recorded partition) and checks it with
// ValidatePhysical instead.
package partition

import (
	"go.uber.org/zap"

	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
	"github.com/oplancelot/ltfsgo/internal/scsi"
)

// Logical partition numbers as the rest of the engine names them.
const (
	LogicalIndex = 0
	LogicalData  = 1
)

// modeSensePartitionPage is the MODE SENSE page queried to determine
// partition count (spec.md §4.1).
const modeSensePartitionPage = 0x11

// Config carries the constructor dependencies for a Manager.
type Config struct {
	Device *scsi.Device
	Logger *zap.SugaredLogger
}

// Manager holds the discovered logical-to-physical partition mapping for
// one open cartridge. It is immutable after New returns: partition layout
// cannot change while a cartridge is mounted.
type Manager struct {
	dev          *scsi.Device
	log          *zap.SugaredLogger
	dualPartition bool
}

// New issues MODE SENSE (page 0x11) and determines whether the mounted
// cartridge is dual-partition or single-partition.
func New(cfg Config) (*Manager, error) {
	m := &Manager{dev: cfg.Device, log: cfg.Logger}

	cdb := scsi.ModeSense10(modeSensePartitionPage, 64)
	buf := make([]byte, 64)
	result, err := cfg.Device.Exec(cdb[:], buf, false)

	if err != nil || result.Outcome != scsi.OutcomeSuccess {
		// MODE SENSE failure means single-partition, per spec.md §4.1's
		// explicit fallback rule — this is not itself treated as fatal.
		if m.log != nil {
			m.log.Infow("mode sense partition page failed, assuming single-partition cartridge", "err", err)
		}
		m.dualPartition = false
		return m, nil
	}

	if len(buf) < 4 {
		m.dualPartition = false
		return m, nil
	}

	extraPartitionCount := buf[3]
	m.dualPartition = extraPartitionCount >= 1

	if m.log != nil {
		m.log.Infow("partition layout discovered", "dualPartition", m.dualPartition, "modeSenseByte3", extraPartitionCount)
	}

	return m, nil
}

// IsDualPartition reports whether the mounted cartridge has a separate
// index partition.
func (m *Manager) IsDualPartition() bool {
	return m.dualPartition
}

// Map translates a logical partition number (0 = index, 1 = data) to the
// physical partition number a LOCATE/SPACE CDB must carry. On a
// single-partition cartridge both logical partitions map to physical 0.
func (m *Manager) Map(logical int) (uint8, error) {
	switch logical {
	case LogicalIndex:
		return 0, nil
	case LogicalData:
		if m.dualPartition {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, ltfserrors.NewFieldRangeError("logicalPartition", logical, LogicalIndex, LogicalData)
	}
}

// ValidateLogical rejects, before any SCSI call, a logical partition
// number this mapping doesn't recognize. It does not reject LogicalData on
// a single-partition cartridge: Map already collapses that to the correct
// physical target (physical 0), so a logical request is always
// satisfiable once validated here.
func (m *Manager) ValidateLogical(logical int) error {
	if logical != LogicalIndex && logical != LogicalData {
		return ltfserrors.NewFieldRangeError("logicalPartition", logical, LogicalIndex, LogicalData)
	}
	return nil
}

// ValidatePhysical rejects, before any SCSI call, a request to address a
// physical partition this cartridge does not have (spec.md §8: "LOCATE to
// (partition=1, block=0) on a single-partition cartridge is rejected with
// ParameterValidation before any SCSI call"). This guards direct physical
// addressing — e.g. an on-tape extent recorded against a physical
// partition that a mismatched or re-mounted cartridge no longer has —
// which Map's logical collapsing must never silently paper over.
func (m *Manager) ValidatePhysical(physical uint8) error {
	if physical == 1 && !m.dualPartition {
		return ltfserrors.NewParameterValidationError(
			nil, ltfserrors.ErrorCodeOutOfRange,
			"cannot locate to physical partition 1 on a single-partition cartridge",
		).WithField("physicalPartition").WithProvided(int(physical)).WithExpected(0)
	}
	if physical > 1 {
		return ltfserrors.NewFieldRangeError("physicalPartition", int(physical), 0, 1)
	}
	return nil
}
