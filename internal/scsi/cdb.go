package scsi

import "encoding/binary"

// CDB6 and CDB10 are fixed-length command descriptor blocks, the same
// array-of-bytes construction the teacher's sgio.go uses (CDB6{opcode},
// CDB10{opcode}) before the caller fills in the operation-specific fields.
type CDB6 [6]byte
type CDB10 [10]byte
type CDB16 [16]byte

// TestUnitReady builds the TEST UNIT READY(6) CDB.
func TestUnitReady() CDB6 {
	return CDB6{OpTestUnitReady}
}

// Read6 builds a READ(6) CDB for one variable-length block (FIXED bit
// clear): blockCount is the transfer length in bytes, the size of the
// caller's buffer. sili controls the Suppress Incorrect Length Indicator bit.
func Read6(blockCount uint32, sili bool) CDB6 {
	cdb := CDB6{OpRead6}
	if sili {
		cdb[1] = 0x02
	}
	put24(cdb[2:5], blockCount)
	return cdb
}

// Write6 builds a WRITE(6) CDB for one variable-length block (FIXED bit
// clear): blockCount is the transfer length in bytes, encoded as given.
func Write6(blockCount uint32) CDB6 {
	cdb := CDB6{OpWrite6}
	put24(cdb[2:5], blockCount)
	return cdb
}

// WriteFilemarks builds a WRITE FILEMARKS(6) CDB writing count filemarks.
func WriteFilemarks(count uint32) CDB6 {
	cdb := CDB6{OpWriteFilemarks}
	put24(cdb[2:5], count)
	return cdb
}

// Space6 builds a SPACE(6) CDB. count is a signed two's-complement count
// of the given spaceType's units; negative counts space backward.
func Space6(spaceType SpaceType, count int32) CDB6 {
	cdb := CDB6{OpSpace6}
	cdb[1] = byte(spaceType) & 0x07
	putSigned24(cdb[2:5], count)
	return cdb
}

// Locate10 builds a LOCATE(10) CDB to seek to the given logical block on
// the given physical partition. changePartition selects whether the CP bit
// is set (partition is meaningful) or cleared (stay on current partition).
func Locate10(block uint32, partition uint8, changePartition bool) CDB10 {
	cdb := CDB10{OpLocate10}
	if changePartition {
		cdb[1] = 0x02 // CP bit
	}
	binary.BigEndian.PutUint32(cdb[3:7], block)
	cdb[8] = partition
	return cdb
}

// Locate16 builds a LOCATE(16) CDB, used for 64-bit block addresses beyond
// LOCATE(10)'s 32-bit range.
func Locate16(block uint64, partition uint8, changePartition bool) CDB16 {
	cdb := CDB16{OpLocate16}
	if changePartition {
		cdb[1] = 0x02
	}
	cdb[3] = partition
	binary.BigEndian.PutUint64(cdb[4:12], block)
	return cdb
}

// ReadPosition builds a READ POSITION CDB in short (TAPE POSITION) form.
func ReadPosition() CDB10 {
	return CDB10{OpReadPosition}
}

// LogSense builds a LOG SENSE(10) CDB for the given page/subpage,
// requesting allocLen bytes of response.
func LogSense(page, subpage uint8, allocLen uint16) CDB10 {
	cdb := CDB10{OpLogSense}
	cdb[2] = 0x40 | (page & 0x3f) // PC=01 (current values), page code
	cdb[3] = subpage
	binary.BigEndian.PutUint16(cdb[7:9], allocLen)
	return cdb
}

// ModeSense10 builds a MODE SENSE(10) CDB for the given page, requesting
// allocLen bytes of response.
func ModeSense10(pageNum uint8, allocLen uint16) CDB10 {
	cdb := CDB10{OpModeSense10}
	cdb[2] = pageNum & 0x3f
	binary.BigEndian.PutUint16(cdb[7:9], allocLen)
	return cdb
}

// WriteAttribute builds a WRITE ATTRIBUTE CDB targeting the given MAM
// partition, requesting an immediate write-through of paramLen bytes of
// attribute parameter data.
func WriteAttribute(partition uint8, paramLen uint32) CDB16 {
	cdb := CDB16{OpWriteAttribute}
	cdb[1] = 0x01 // WTC: write through cache, attribute committed before completion
	cdb[7] = partition
	binary.BigEndian.PutUint32(cdb[10:14], paramLen)
	return cdb
}

func put24(dst []byte, v uint32) {
	dst[0] = byte(v >> 16)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v)
}

func putSigned24(dst []byte, v int32) {
	put24(dst, uint32(v)&0xFFFFFF)
}
