package ltfsindex

import "testing"

func TestValidatePassesOnWellFormedIndex(t *testing.T) {
	idx := sampleIndex()
	if err := Validate(idx); err != nil {
		t.Fatalf("expected valid index, got %v", err)
	}
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	idx := sampleIndex()
	idx.Root.Files = append(idx.Root.Files, &FileNode{Name: "report.txt", UID: 99})
	if err := Validate(idx); err == nil {
		t.Fatalf("expected error for duplicate child name")
	}
}

func TestValidateRejectsDuplicateUID(t *testing.T) {
	idx := sampleIndex()
	idx.Root.Files = append(idx.Root.Files, &FileNode{Name: "other.txt", UID: idx.Root.Files[0].UID})
	if err := Validate(idx); err == nil {
		t.Fatalf("expected error for duplicate UID")
	}
}

func TestValidateRejectsLengthMismatch(t *testing.T) {
	idx := sampleIndex()
	idx.Root.Files[0].Length = 999
	if err := Validate(idx); err == nil {
		t.Fatalf("expected error for extent/length mismatch")
	}
}

func TestValidateRejectsExtentGap(t *testing.T) {
	idx := sampleIndex()
	idx.Root.Files[0].Extents = append(idx.Root.Files[0].Extents, Extent{FileOffset: 20, ByteCount: 5})
	idx.Root.Files[0].Length = 15
	if err := Validate(idx); err == nil {
		t.Fatalf("expected error for extent gap")
	}
}

func TestValidateRejectsHighestUIDTooLow(t *testing.T) {
	idx := sampleIndex()
	idx.HighestFileUID = 0
	if err := Validate(idx); err == nil {
		t.Fatalf("expected error when highestFileUID is below max UID in tree")
	}
}

func TestValidateAllowsSymlinkWithoutExtents(t *testing.T) {
	idx := sampleIndex()
	idx.Root.Files = append(idx.Root.Files, &FileNode{
		Name: "link", UID: 3, Length: 0, SymlinkTarget: "/somewhere",
	})
	idx.HighestFileUID = 3
	if err := Validate(idx); err != nil {
		t.Fatalf("expected symlink without extents to be valid, got %v", err)
	}
}
