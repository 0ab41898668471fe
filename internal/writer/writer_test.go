package writer

import (
	"testing"
	"time"

	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
	"github.com/oplancelot/ltfsgo/pkg/options"
)

func newTestWriter(t *testing.T, opts *options.Options) *Writer {
	t.Helper()
	idx := ltfsindex.NewEmpty("test-writer", "11111111-1111-1111-1111-111111111111", time.Unix(0, 0))
	return &Writer{
		idx:       idx,
		pathIndex: ltfsindex.NewPathIndex(idx),
		opts:      opts,
		now:       func() time.Time { return time.Unix(0, 0) },
	}
}

func TestUIDAllocationOrderDirectoriesBeforeFiles(t *testing.T) {
	w := newTestWriter(t, nil)

	if err := w.appendFileNode("a/b/report.txt", 10, ltfsindex.Location{}, nil); err != nil {
		t.Fatalf("appendFileNode: %v", err)
	}

	a, err := w.pathIndex.LookupDirectory("a")
	if err != nil {
		t.Fatalf("expected directory a, got %v", err)
	}
	b, err := w.pathIndex.LookupDirectory("a/b")
	if err != nil {
		t.Fatalf("expected directory a/b, got %v", err)
	}
	f, err := w.pathIndex.LookupFile("a/b/report.txt")
	if err != nil {
		t.Fatalf("expected file, got %v", err)
	}

	// Spec scenario: directories are created (and their UIDs allocated)
	// before the file UID, so the file's UID must be the largest.
	if !(a.UID < b.UID && b.UID < f.UID) {
		t.Fatalf("expected a.UID(%d) < b.UID(%d) < f.UID(%d)", a.UID, b.UID, f.UID)
	}
	if w.idx.HighestFileUID != f.UID {
		t.Fatalf("expected highestFileUID %d to equal file UID %d", w.idx.HighestFileUID, f.UID)
	}
}

func TestEnsureDirectoriesReusesExistingDirectory(t *testing.T) {
	w := newTestWriter(t, nil)

	first := w.ensureDirectories("a/b")
	second := w.ensureDirectories("a/b")
	if first != second {
		t.Fatalf("expected ensureDirectories to return the same node on repeat calls")
	}
	if len(w.idx.Root.Directories) != 1 {
		t.Fatalf("expected exactly one top-level directory, got %d", len(w.idx.Root.Directories))
	}
}

func TestAppendFileNodeSkipsExtentForZeroLengthFile(t *testing.T) {
	w := newTestWriter(t, nil)
	if err := w.appendFileNode("empty.txt", 0, ltfsindex.Location{}, nil); err != nil {
		t.Fatalf("appendFileNode: %v", err)
	}
	f, err := w.pathIndex.LookupFile("empty.txt")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(f.Extents) != 0 {
		t.Fatalf("expected no extents for a zero-length file, got %d", len(f.Extents))
	}
}

func TestCheckMemoryBudgetRejectsTooSmallCap(t *testing.T) {
	w := newTestWriter(t, &options.Options{MemoryCapBytes: 10})
	if err := w.checkMemoryBudget(options.BlockSize64K); err == nil {
		t.Fatalf("expected memory cap error for a 64KiB block size against a 10-byte cap")
	}
}

func TestCheckMemoryBudgetAllowsAmpleCap(t *testing.T) {
	w := newTestWriter(t, &options.Options{MemoryCapBytes: 1 << 30})
	if err := w.checkMemoryBudget(options.BlockSize64K); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestShouldSyncHonoursForceFlushAndInterval(t *testing.T) {
	w := newTestWriter(t, &options.Options{ForceFlush: true})
	if !w.shouldSync() {
		t.Fatalf("expected ForceFlush to force a sync regardless of byte count")
	}

	w2 := newTestWriter(t, &options.Options{IndexWriteInterval: 100})
	w2.totalBytesUnindexed = 50
	if w2.shouldSync() {
		t.Fatalf("expected no sync below the interval threshold")
	}
	w2.totalBytesUnindexed = 150
	if !w2.shouldSync() {
		t.Fatalf("expected a sync once the interval threshold is exceeded")
	}
}

func TestIsExcludedMatchesConfiguredExtensions(t *testing.T) {
	w := newTestWriter(t, &options.Options{ExcludedExtensions: []string{".tmp", ".log"}})
	if !w.isExcluded("scratch.tmp") {
		t.Fatalf("expected .tmp to be excluded")
	}
	if w.isExcluded("report.txt") {
		t.Fatalf("expected .txt not to be excluded")
	}
}

func TestRecordDeduplicatedFileIncrementsCounters(t *testing.T) {
	w := newTestWriter(t, nil)
	rec := DedupRecord{Partition: 1, StartBlock: 40, UID: 9, Length: 2048}

	result, err := w.recordDeduplicatedFile("copy.bin", rec)
	if err != nil {
		t.Fatalf("recordDeduplicatedFile: %v", err)
	}
	if result.BytesWritten != rec.Length {
		t.Fatalf("expected BytesWritten %d, got %d", rec.Length, result.BytesWritten)
	}

	dup, saved := w.Stats()
	if dup != 1 || saved != rec.Length {
		t.Fatalf("expected duplicatesSkipped=1 spaceSaved=%d, got dup=%d saved=%d", rec.Length, dup, saved)
	}
}
