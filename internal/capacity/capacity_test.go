package capacity

import (
	"encoding/binary"
	"testing"
)

func buildCapacityPage(params map[uint16]uint32) []byte {
	page := []byte{0x31, 0x00, 0x00, 0x00}
	for code, value := range params {
		entry := make([]byte, 8)
		binary.BigEndian.PutUint16(entry[0:2], code)
		entry[2] = 0x00
		entry[3] = 4
		binary.BigEndian.PutUint32(entry[4:8], value)
		page = append(page, entry...)
	}
	return page
}

func TestParseCapacityLogPageSingleParameter(t *testing.T) {
	page := buildCapacityPage(map[uint16]uint32{paramP0Remaining: 123456})
	values := parseCapacityLogPage(page)
	if values[paramP0Remaining] != 123456 {
		t.Fatalf("expected 123456, got %d", values[paramP0Remaining])
	}
}

func TestParseCapacityLogPageAllFourParameters(t *testing.T) {
	page := buildCapacityPage(map[uint16]uint32{
		paramP0Remaining: 100, paramP0Maximum: 1000,
		paramP1Remaining: 50, paramP1Maximum: 500,
	})
	values := parseCapacityLogPage(page)
	if values[paramP0Remaining] != 100 || values[paramP0Maximum] != 1000 {
		t.Fatalf("unexpected P0 values: %+v", values)
	}
	if values[paramP1Remaining] != 50 || values[paramP1Maximum] != 500 {
		t.Fatalf("unexpected P1 values: %+v", values)
	}
}

func TestParseCapacityLogPageTruncatedHeader(t *testing.T) {
	if values := parseCapacityLogPage([]byte{0x31, 0x00}); len(values) != 0 {
		t.Fatalf("expected empty result for a too-short page, got %+v", values)
	}
}

func TestInfoTotalsSumOnlyWhenDual(t *testing.T) {
	info := Info{
		DualPartition: true,
		P0:            PartitionCapacity{RemainingKB: 100, MaximumKB: 200},
		P1:            PartitionCapacity{RemainingKB: 50, MaximumKB: 75},
	}
	if info.TotalRemainingKB() != 150 {
		t.Fatalf("expected 150, got %d", info.TotalRemainingKB())
	}
	if info.TotalMaximumKB() != 275 {
		t.Fatalf("expected 275, got %d", info.TotalMaximumKB())
	}

	single := Info{DualPartition: false, P0: PartitionCapacity{RemainingKB: 100, MaximumKB: 200}, P1: PartitionCapacity{RemainingKB: 999}}
	if single.TotalRemainingKB() != 100 {
		t.Fatalf("expected single-partition total to ignore P1, got %d", single.TotalRemainingKB())
	}
}

func TestMediaTypeFromCodeKnownAndUnknown(t *testing.T) {
	if MediaTypeFromCode(0x0044) != MediaLTO3RW {
		t.Fatalf("expected LTO3 RW for code 0x0044")
	}
	if MediaTypeFromCode(0x0260) != MediaLTO9RO {
		t.Fatalf("expected LTO9 RO for code 0x0260")
	}
	if MediaTypeFromCode(0xFFFF) != MediaUnknown {
		t.Fatalf("expected MediaUnknown for an unrecognized code")
	}
}

func TestIsWORM(t *testing.T) {
	if !MediaLTO7WORM.IsWORM() {
		t.Fatalf("expected LTO7 WORM to report IsWORM true")
	}
	if MediaLTO7RW.IsWORM() {
		t.Fatalf("expected LTO7 RW to report IsWORM false")
	}
}
