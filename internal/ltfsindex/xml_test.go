package ltfsindex

import (
	"strings"
	"testing"
	"time"
)

func sampleIndex() *Index {
	now := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	ts := Timestamps{Creation: now, Change: now, Modify: now, Access: now, Backup: now}

	file := &FileNode{
		Name:       "report.txt",
		UID:        2,
		Length:     10,
		Timestamps: ts,
		Extents: []Extent{
			{FileOffset: 0, Partition: 1, StartBlock: 100, ByteOffset: 0, ByteCount: 10},
		},
		ExtendedAttrs: map[string]string{"ltfs.hash.sha256sum": "ABCDEF"},
	}

	root := &DirectoryNode{
		Name:       "",
		UID:        0,
		Timestamps: ts,
		Files:      []*FileNode{file},
	}

	return &Index{
		Version:          "2.4.0",
		Creator:          "ltfsgo",
		VolumeUUID:       "11111111-1111-1111-1111-111111111111",
		GenerationNumber: 3,
		UpdateTime:       now,
		Location:         Location{Partition: 0, StartBlock: 5},
		HighestFileUID:   2,
		Root:             root,
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	idx := sampleIndex()

	data, err := Marshal(idx)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "<ltfsindex") || !strings.Contains(string(data), "</ltfsindex>") {
		t.Fatalf("expected root element tags in output: %s", data)
	}
	if !strings.Contains(string(data), "<startblock>100</startblock>") {
		t.Fatalf("expected canonical startblock element in output: %s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.GenerationNumber != idx.GenerationNumber {
		t.Fatalf("generation mismatch: got %d want %d", got.GenerationNumber, idx.GenerationNumber)
	}
	if got.VolumeUUID != idx.VolumeUUID {
		t.Fatalf("volume uuid mismatch")
	}
	if len(got.Root.Files) != 1 || got.Root.Files[0].Name != "report.txt" {
		t.Fatalf("expected round-tripped file node, got %+v", got.Root.Files)
	}
	if got.Root.Files[0].Extents[0].StartBlock != 100 {
		t.Fatalf("expected start block 100, got %d", got.Root.Files[0].Extents[0].StartBlock)
	}
	if got.Root.Files[0].ExtendedAttrs["ltfs.hash.sha256sum"] != "ABCDEF" {
		t.Fatalf("expected extended attribute to round-trip, got %+v", got.Root.Files[0].ExtendedAttrs)
	}
}

func TestUnmarshalAcceptsStartBlockAliases(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<ltfsindex version="2.4.0">
  <creator>test</creator>
  <volumeuuid>u</volumeuuid>
  <generationnumber>1</generationnumber>
  <updatetime>2026-07-29T12:00:00.000000000Z</updatetime>
  <location><partition>a</partition><startblock>0</startblock></location>
  <directory>
    <name></name>
    <fileuid>0</fileuid>
    <creationtime>2026-07-29T12:00:00.000000000Z</creationtime>
    <changetime>2026-07-29T12:00:00.000000000Z</changetime>
    <modifytime>2026-07-29T12:00:00.000000000Z</modifytime>
    <accesstime>2026-07-29T12:00:00.000000000Z</accesstime>
    <backuptime>2026-07-29T12:00:00.000000000Z</backuptime>
    <readonly>false</readonly>
    <contents>
      <file>
        <name>a.bin</name>
        <fileuid>1</fileuid>
        <length>5</length>
        <creationtime>2026-07-29T12:00:00.000000000Z</creationtime>
        <changetime>2026-07-29T12:00:00.000000000Z</changetime>
        <modifytime>2026-07-29T12:00:00.000000000Z</modifytime>
        <accesstime>2026-07-29T12:00:00.000000000Z</accesstime>
        <backuptime>2026-07-29T12:00:00.000000000Z</backuptime>
        <readonly>false</readonly>
        <openforwrite>false</openforwrite>
        <extentinfo>
          <extent>
            <fileoffset>0</fileoffset>
            <partition>b</partition>
            <start_block>42</start_block>
            <byteoffset>0</byteoffset>
            <bytecount>5</bytecount>
          </extent>
        </extentinfo>
      </file>
    </contents>
  </directory>
</ltfsindex>`

	idx, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(idx.Root.Files) != 1 {
		t.Fatalf("expected one file, got %d", len(idx.Root.Files))
	}
	if idx.Root.Files[0].Extents[0].StartBlock != 42 {
		t.Fatalf("expected start_block alias to parse as 42, got %d", idx.Root.Files[0].Extents[0].StartBlock)
	}
}

func TestUnmarshalMissingVolumeUUIDFails(t *testing.T) {
	doc := `<?xml version="1.0"?><ltfsindex version="2.4.0"><creator>x</creator></ltfsindex>`
	if _, err := Unmarshal([]byte(doc)); err == nil {
		t.Fatalf("expected error for missing volumeuuid")
	}
}
