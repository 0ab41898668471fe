package discovery

import "testing"

func TestCommonIndexPartitionBlocksMatchSpecOrder(t *testing.T) {
	want := []uint64{10, 2, 5, 6, 20, 100}
	if len(commonIndexPartitionBlocks) != len(want) {
		t.Fatalf("expected %d candidate blocks, got %d", len(want), len(commonIndexPartitionBlocks))
	}
	for i, b := range want {
		if commonIndexPartitionBlocks[i] != b {
			t.Fatalf("block %d: expected %d, got %d", i, b, commonIndexPartitionBlocks[i])
		}
	}
}

func TestBoundedScanBlocksMatchSpecOrder(t *testing.T) {
	want := []uint64{50, 100, 500, 1000, 2000}
	if len(boundedScanBlocks) != len(want) {
		t.Fatalf("expected %d candidate blocks, got %d", len(want), len(boundedScanBlocks))
	}
	for i, b := range want {
		if boundedScanBlocks[i] != b {
			t.Fatalf("block %d: expected %d, got %d", i, b, boundedScanBlocks[i])
		}
	}
}
