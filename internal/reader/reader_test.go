package reader

import (
	"bytes"
	"testing"

	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
)

func TestSortedExtentsOrdersByFileOffset(t *testing.T) {
	f := &ltfsindex.FileNode{
		Extents: []ltfsindex.Extent{
			{FileOffset: 20, ByteCount: 10},
			{FileOffset: 0, ByteCount: 20},
			{FileOffset: 10, ByteCount: 10},
		},
	}
	sorted := sortedExtents(f)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].FileOffset > sorted[i].FileOffset {
			t.Fatalf("expected extents sorted by file offset, got %+v", sorted)
		}
	}
}

func TestSizeThresholdsMatchSpec(t *testing.T) {
	if singleBurstLimit != 64*1024*1024 {
		t.Fatalf("expected single-burst limit of 64MiB, got %d", singleBurstLimit)
	}
	if sequentialExtentsLimit != 256*1024*1024 {
		t.Fatalf("expected sequential-extents limit of 256MiB, got %d", sequentialExtentsLimit)
	}
	if subChunkSize != 8*1024*1024 {
		t.Fatalf("expected 8MiB sub-chunks, got %d", subChunkSize)
	}
	if progressCadence != 32*1024*1024 {
		t.Fatalf("expected 32MiB progress cadence, got %d", progressCadence)
	}
}

func TestCountingWriterTracksBytes(t *testing.T) {
	var buf bytes.Buffer
	cw := &countingWriter{w: &buf}

	n, err := cw.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("unexpected write result: n=%d err=%v", n, err)
	}
	n2, err := cw.Write([]byte(" world"))
	if err != nil || n2 != 6 {
		t.Fatalf("unexpected write result: n=%d err=%v", n2, err)
	}
	if cw.n != 11 {
		t.Fatalf("expected counted 11 bytes, got %d", cw.n)
	}
	if buf.String() != "hello world" {
		t.Fatalf("expected underlying writer to receive all bytes, got %q", buf.String())
	}
}
