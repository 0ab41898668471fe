package indexfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGenerateNameRoundTripsThroughParseName(t *testing.T) {
	at := time.Date(2026, 7, 29, 14, 30, 0, 0, time.UTC)
	name := GenerateName(KindWrite, at)

	if name != "LTFSIndex_Write_20260729_143000.schema" {
		t.Fatalf("unexpected filename: %s", name)
	}

	kind, ts, err := ParseName(name)
	if err != nil {
		t.Fatalf("ParseName failed: %v", err)
	}
	if kind != KindWrite {
		t.Fatalf("expected KindWrite, got %s", kind)
	}
	if !ts.Equal(at) {
		t.Fatalf("expected timestamp %v, got %v", at, ts)
	}
}

func TestParseNameRejectsUnrecognizedKind(t *testing.T) {
	if _, _, err := ParseName("LTFSIndex_Delete_20260729_143000.schema"); err == nil {
		t.Fatalf("expected error for unrecognized kind")
	}
}

func TestLatestReturnsNewestByTimestamp(t *testing.T) {
	dir := t.TempDir()
	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 29, 14, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
	}
	for _, at := range times {
		name := GenerateName(KindLoad, at)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("<ltfsindex/>"), 0644); err != nil {
			t.Fatalf("setup write failed: %v", err)
		}
	}

	latest, err := Latest(dir, KindLoad)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}

	want := GenerateName(KindLoad, times[1])
	if filepath.Base(latest) != want {
		t.Fatalf("expected latest %s, got %s", want, filepath.Base(latest))
	}
}

func TestLatestEmptyDirReturnsEmptyString(t *testing.T) {
	dir := t.TempDir()
	latest, err := Latest(dir, KindWrite)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != "" {
		t.Fatalf("expected empty string for no matches, got %s", latest)
	}
}
