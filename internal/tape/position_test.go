package tape

import "testing"

func TestDecodePositionParsesFlagsAndCounters(t *testing.T) {
	buf := make([]byte, 20)
	buf[0] = 0xC0 // BOP | EOD
	buf[1] = 1    // partition

	// block number = 42
	buf[4], buf[5], buf[6], buf[7] = 0, 0, 0, 42
	// file number = 3
	buf[8], buf[9], buf[10], buf[11] = 0, 0, 0, 3
	// set number = 7
	buf[12], buf[13], buf[14], buf[15] = 0, 0, 0, 7

	pos := decodePosition(buf)

	if !pos.BeginningOfPartition || !pos.EndOfData {
		t.Fatalf("expected both BOP and EOD flags set, got %+v", pos)
	}
	if pos.Partition != 1 {
		t.Fatalf("expected partition 1, got %d", pos.Partition)
	}
	if pos.BlockNumber != 42 || pos.FileNumber != 3 || pos.SetNumber != 7 {
		t.Fatalf("unexpected counters: %+v", pos)
	}
}

func TestDecodePositionShortBufferReturnsZeroValue(t *testing.T) {
	pos := decodePosition([]byte{1, 2, 3})
	if pos != (Position{}) {
		t.Fatalf("expected zero-value Position for short buffer, got %+v", pos)
	}
}
