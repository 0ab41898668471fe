package ltfsindex

import "testing"

func TestPathIndexLookupFile(t *testing.T) {
	idx := sampleIndex()
	pi := NewPathIndex(idx)

	f, err := pi.LookupFile("report.txt")
	if err != nil {
		t.Fatalf("expected to find report.txt, got %v", err)
	}
	if f.UID != 2 {
		t.Fatalf("expected UID 2, got %d", f.UID)
	}
}

func TestPathIndexLookupMissingReturnsPathNotFound(t *testing.T) {
	idx := sampleIndex()
	pi := NewPathIndex(idx)
	if _, err := pi.LookupFile("missing.txt"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPathIndexPutFileRejectsConflict(t *testing.T) {
	idx := sampleIndex()
	pi := NewPathIndex(idx)
	if err := pi.PutFile("report.txt", &FileNode{Name: "report.txt"}); err == nil {
		t.Fatalf("expected conflict error for already-occupied path")
	}
}

func TestPathIndexRebuildReflectsNestedDirectories(t *testing.T) {
	idx := sampleIndex()
	sub := &DirectoryNode{Name: "sub", UID: 10}
	nested := &FileNode{Name: "nested.bin", UID: 11}
	sub.Files = append(sub.Files, nested)
	idx.Root.Directories = append(idx.Root.Directories, sub)

	pi := NewPathIndex(idx)
	if _, err := pi.LookupDirectory("sub"); err != nil {
		t.Fatalf("expected to find sub directory, got %v", err)
	}
	if _, err := pi.LookupFile("sub/nested.bin"); err != nil {
		t.Fatalf("expected to find nested file, got %v", err)
	}
}
