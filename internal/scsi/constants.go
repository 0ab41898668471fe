package scsi

// Operation codes for the SCSI CDBs this engine issues (spec.md §4.1, "Wire-level").
const (
	OpTestUnitReady  byte = 0x00
	OpRead6          byte = 0x08
	OpWrite6         byte = 0x0A
	OpWriteFilemarks byte = 0x10
	OpSpace6         byte = 0x11
	OpLocate10       byte = 0x2B
	OpReadPosition   byte = 0x34
	OpLogSense       byte = 0x4D
	OpModeSense10    byte = 0x5A
	OpWriteAttribute byte = 0x8D
	OpLocate16       byte = 0x92
)

// Sense keys recognized by the sense decoder (spec.md §4.1).
const (
	SenseNoSense        byte = 0x00
	SenseNotReady       byte = 0x02
	SenseMediumError    byte = 0x03
	SenseHardwareError  byte = 0x04
	SenseIllegalRequest byte = 0x05
	SenseUnitAttention  byte = 0x06
	SenseDataProtect    byte = 0x07
	SenseBlankCheck     byte = 0x08
	SenseVolumeOverflow byte = 0x0D
)

// SpaceType selects what SPACE(6) counts (spec.md GLOSSARY).
type SpaceType uint8

const (
	SpaceTypeFileMarks SpaceType = 1
	SpaceTypeEndOfData SpaceType = 3
)

// Block sizes recognized for fixed-length logical block I/O.
const (
	BlockSize64K  = 65536
	BlockSize512K = 524288
)

// MAM (Medium Auxiliary Memory) attribute identifiers used to persist
// Volume Coherency Information (spec.md §4.4, §6).
const (
	MAMAttrVolumeUUID      uint16 = 0x080B
	MAMAttrGenerationNumber uint16 = 0x080C
)

// defaultTimeoutMillis bounds a single SG_IO call. LOCATE on a full
// cartridge can legitimately take minutes (spec.md §5); the driver-level
// ioctl timeout is set generously rather than per-operation, and
// cancellation is handled cooperatively at the block-loop level instead.
const defaultTimeoutMillis uint32 = 180000

// maxSenseLength is the sense buffer size requested from the HBA.
const maxSenseLength = 64
