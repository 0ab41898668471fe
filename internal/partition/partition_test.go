package partition

import "testing"

func TestMapSinglePartitionCollapsesBothLogicalsToPhysicalZero(t *testing.T) {
	m := &Manager{dualPartition: false}

	idx, err := m.Map(LogicalIndex)
	if err != nil || idx != 0 {
		t.Fatalf("expected logical index -> physical 0, got %d, err %v", idx, err)
	}

	data, err := m.Map(LogicalData)
	if err != nil || data != 0 {
		t.Fatalf("expected logical data -> physical 0 on single-partition cartridge, got %d, err %v", data, err)
	}
}

func TestMapDualPartitionSeparatesLogicals(t *testing.T) {
	m := &Manager{dualPartition: true}

	idx, err := m.Map(LogicalIndex)
	if err != nil || idx != 0 {
		t.Fatalf("expected logical index -> physical 0, got %d, err %v", idx, err)
	}

	data, err := m.Map(LogicalData)
	if err != nil || data != 1 {
		t.Fatalf("expected logical data -> physical 1 on dual-partition cartridge, got %d, err %v", data, err)
	}
}

func TestMapRejectsUnknownLogicalPartition(t *testing.T) {
	m := &Manager{dualPartition: true}
	if _, err := m.Map(2); err == nil {
		t.Fatalf("expected error for unknown logical partition")
	}
}

func TestValidateLogicalAllowsDataPartitionOnSinglePartitionCartridge(t *testing.T) {
	m := &Manager{dualPartition: false}
	if err := m.ValidateLogical(LogicalData); err != nil {
		t.Fatalf("expected ValidateLogical to allow the logical data partition on a single-partition cartridge (Map collapses it), got %v", err)
	}
}

func TestValidateLogicalRejectsUnknownPartition(t *testing.T) {
	m := &Manager{dualPartition: true}
	if err := m.ValidateLogical(2); err == nil {
		t.Fatalf("expected ValidateLogical to reject an unrecognized logical partition number")
	}
}

func TestValidatePhysicalRejectsPartitionOneOnSinglePartitionCartridge(t *testing.T) {
	m := &Manager{dualPartition: false}
	if err := m.ValidatePhysical(1); err == nil {
		t.Fatalf("expected ValidatePhysical to reject physical partition 1 on a single-partition cartridge")
	}
}

func TestValidatePhysicalAllowsPartitionOneOnDualPartitionCartridge(t *testing.T) {
	m := &Manager{dualPartition: true}
	if err := m.ValidatePhysical(1); err != nil {
		t.Fatalf("expected ValidatePhysical to allow physical partition 1 on a dual-partition cartridge, got %v", err)
	}
}
