package scsi

import "encoding/binary"

// MAM attribute format codes (SSC attribute parameter header, byte 4 bits 7-6).
const (
	mamFormatBinary byte = 0x00
	mamFormatASCII  byte = 0x01
)

// BuildMAMAttributeParameter wraps a single MAM attribute (identifier +
// value) in the attribute parameter list WRITE ATTRIBUTE expects: a 4-byte
// "available data" header followed by one attribute parameter (2-byte ID,
// 1-byte format/reserved, 2-byte length, value).
func BuildMAMAttributeParameter(id uint16, ascii bool, value []byte) []byte {
	format := mamFormatBinary
	if ascii {
		format = mamFormatASCII
	}

	attr := make([]byte, 5+len(value))
	binary.BigEndian.PutUint16(attr[0:2], id)
	attr[2] = format
	binary.BigEndian.PutUint16(attr[3:5], uint16(len(value)))
	copy(attr[5:], value)

	buf := make([]byte, 4+len(attr))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(attr)))
	copy(buf[4:], attr)
	return buf
}
