package ltfsindex

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
)

// timestampLayout is the ISO-8601-with-nanoseconds-and-Z form spec.md §6
// requires for every timestamp field.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Wire-format structs mirror the required child-element order of spec.md
// §6 exactly: encoding/xml marshals struct fields in declaration order, so
// the struct definitions below ARE the ordering contract. Domain types in
// types.go are kept separate from these because the wire format uses
// partition letters ("a"/"b") and string timestamps where the domain
// model uses uint8 and time.Time.

type xmlIndex struct {
	XMLName                    xml.Name            `xml:"ltfsindex"`
	Version                    string              `xml:"version,attr"`
	Creator                    string              `xml:"creator"`
	VolumeUUID                 string              `xml:"volumeuuid"`
	GenerationNumber           uint64              `xml:"generationnumber"`
	UpdateTime                 string              `xml:"updatetime"`
	Location                   xmlLocation         `xml:"location"`
	PreviousGenerationLocation *xmlLocation        `xml:"previousgenerationlocation,omitempty"`
	AllowPolicyUpdate          *bool               `xml:"allowpolicyupdate,omitempty"`
	VolumeLockState            string              `xml:"volumelockstate,omitempty"`
	HighestFileUID             *uint64             `xml:"highestfileuid,omitempty"`
	Directory                  xmlDirectory        `xml:"directory"`
}

type xmlLocation struct {
	Partition  string `xml:"partition"`
	StartBlock uint64 `xml:"startblock"`
}

type xmlDirectory struct {
	Name         string         `xml:"name"`
	FileUID      uint64         `xml:"fileuid"`
	CreationTime string         `xml:"creationtime"`
	ChangeTime   string         `xml:"changetime"`
	ModifyTime   string         `xml:"modifytime"`
	AccessTime   string         `xml:"accesstime"`
	BackupTime   string         `xml:"backuptime"`
	ReadOnly     bool           `xml:"readonly"`
	Contents     []xmlDirEntry  `xml:"contents>directory,omitempty"`
	Files        []xmlFile      `xml:"contents>file,omitempty"`
}

// xmlDirEntry exists only so nested directories can recurse through the
// same xmlDirectory shape.
type xmlDirEntry = xmlDirectory

type xmlFile struct {
	Name               string              `xml:"name"`
	FileUID            uint64              `xml:"fileuid"`
	Length             uint64              `xml:"length"`
	CreationTime       string              `xml:"creationtime"`
	ChangeTime         string              `xml:"changetime"`
	ModifyTime         string              `xml:"modifytime"`
	AccessTime         string              `xml:"accesstime"`
	BackupTime         string              `xml:"backuptime"`
	ReadOnly           bool                `xml:"readonly"`
	OpenForWrite       bool                `xml:"openforwrite"`
	SymlinkTarget      string              `xml:"symlink,omitempty"`
	ExtentInfo         []xmlExtent         `xml:"extentinfo>extent,omitempty"`
	ExtendedAttributes *xmlExtendedAttrs   `xml:"extendedattributes,omitempty"`
}

type xmlExtendedAttrs struct {
	Entries []xmlExtendedAttr `xml:"extendedattribute"`
}

type xmlExtendedAttr struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

// xmlExtent has a custom UnmarshalXML because spec.md §6 requires
// accepting the aliases startBlock, start_block, block on read while
// always emitting startblock on write.
type xmlExtent struct {
	FileOffset uint64
	Partition  string
	StartBlock uint64
	ByteOffset uint32
	ByteCount  uint64
}

func (e *xmlExtent) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "extent"}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	fields := []struct {
		name string
		val  any
	}{
		{"fileoffset", e.FileOffset},
		{"partition", e.Partition},
		{"startblock", e.StartBlock},
		{"byteoffset", e.ByteOffset},
		{"bytecount", e.ByteCount},
	}
	for _, f := range fields {
		if err := enc.EncodeElement(f.val, xml.StartElement{Name: xml.Name{Local: f.name}}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func (e *xmlExtent) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var text string
			if err := dec.DecodeElement(&text, &t); err != nil {
				return err
			}
			switch t.Name.Local {
			case "fileoffset":
				fmt.Sscanf(text, "%d", &e.FileOffset)
			case "partition":
				e.Partition = text
			case "startblock", "startBlock", "start_block", "block":
				fmt.Sscanf(text, "%d", &e.StartBlock)
			case "byteoffset":
				fmt.Sscanf(text, "%d", &e.ByteOffset)
			case "bytecount":
				fmt.Sscanf(text, "%d", &e.ByteCount)
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// Marshal serializes idx to the XML document spec.md §6 describes,
// preceded by the standard XML declaration.
func Marshal(idx *Index) ([]byte, error) {
	wire := toWire(idx)

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return nil, ltfserrors.NewParseError(err, ltfserrors.ErrorCodeMalformedXML, "failed to encode LTFS index")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal parses an LTFS index document, returning a ParseError for
// malformed XML or a missing required element.
func Unmarshal(data []byte) (*Index, error) {
	var wire xmlIndex
	if err := xml.Unmarshal(data, &wire); err != nil {
		return nil, ltfserrors.NewParseError(err, ltfserrors.ErrorCodeMalformedXML, "failed to parse LTFS index XML")
	}

	if wire.VolumeUUID == "" {
		return nil, ltfserrors.NewParseError(nil, ltfserrors.ErrorCodeMissingElement, "missing required element volumeuuid").
			WithElement("volumeuuid")
	}
	if wire.UpdateTime == "" {
		return nil, ltfserrors.NewParseError(nil, ltfserrors.ErrorCodeMissingElement, "missing required element updatetime").
			WithElement("updatetime")
	}

	idx, err := fromWire(&wire)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func toWire(idx *Index) *xmlIndex {
	wire := &xmlIndex{
		Version:          idx.Version,
		Creator:          idx.Creator,
		VolumeUUID:       idx.VolumeUUID,
		GenerationNumber: idx.GenerationNumber,
		UpdateTime:       idx.UpdateTime.Format(timestampLayout),
		Location: xmlLocation{
			Partition:  partitionLetter(idx.Location.Partition),
			StartBlock: idx.Location.StartBlock,
		},
		VolumeLockState: idx.VolumeLockState,
		Directory:       toWireDirectory(idx.Root),
	}

	if idx.PreviousGenerationLocation != nil {
		wire.PreviousGenerationLocation = &xmlLocation{
			Partition:  partitionLetter(idx.PreviousGenerationLocation.Partition),
			StartBlock: idx.PreviousGenerationLocation.StartBlock,
		}
	}
	if idx.AllowPolicyUpdate != nil {
		wire.AllowPolicyUpdate = idx.AllowPolicyUpdate
	}
	if idx.HighestFileUID > 0 {
		v := idx.HighestFileUID
		wire.HighestFileUID = &v
	}

	return wire
}

func toWireDirectory(d *DirectoryNode) xmlDirectory {
	wd := xmlDirectory{
		Name:         d.Name,
		FileUID:      d.UID,
		CreationTime: d.Timestamps.Creation.Format(timestampLayout),
		ChangeTime:   d.Timestamps.Change.Format(timestampLayout),
		ModifyTime:   d.Timestamps.Modify.Format(timestampLayout),
		AccessTime:   d.Timestamps.Access.Format(timestampLayout),
		BackupTime:   d.Timestamps.Backup.Format(timestampLayout),
		ReadOnly:     d.ReadOnly,
	}
	for _, child := range d.Directories {
		wd.Contents = append(wd.Contents, toWireDirectory(child))
	}
	for _, f := range d.Files {
		wd.Files = append(wd.Files, toWireFile(f))
	}
	return wd
}

func toWireFile(f *FileNode) xmlFile {
	wf := xmlFile{
		Name:          f.Name,
		FileUID:       f.UID,
		Length:        f.Length,
		CreationTime:  f.Timestamps.Creation.Format(timestampLayout),
		ChangeTime:    f.Timestamps.Change.Format(timestampLayout),
		ModifyTime:    f.Timestamps.Modify.Format(timestampLayout),
		AccessTime:    f.Timestamps.Access.Format(timestampLayout),
		BackupTime:    f.Timestamps.Backup.Format(timestampLayout),
		ReadOnly:      f.ReadOnly,
		OpenForWrite:  f.OpenForWrite,
		SymlinkTarget: f.SymlinkTarget,
	}
	for _, e := range f.Extents {
		wf.ExtentInfo = append(wf.ExtentInfo, xmlExtent{
			FileOffset: e.FileOffset,
			Partition:  partitionLetter(e.Partition),
			StartBlock: e.StartBlock,
			ByteOffset: e.ByteOffset,
			ByteCount:  e.ByteCount,
		})
	}
	if len(f.ExtendedAttrs) > 0 {
		attrs := &xmlExtendedAttrs{}
		for k, v := range f.ExtendedAttrs {
			attrs.Entries = append(attrs.Entries, xmlExtendedAttr{Key: k, Value: v})
		}
		wf.ExtendedAttributes = attrs
	}
	return wf
}

func fromWire(wire *xmlIndex) (*Index, error) {
	updateTime, err := parseTimestamp(wire.UpdateTime)
	if err != nil {
		return nil, err
	}

	partition, err := parsePartitionLetter(wire.Location.Partition)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		Version:          wire.Version,
		Creator:          wire.Creator,
		VolumeUUID:       wire.VolumeUUID,
		GenerationNumber: wire.GenerationNumber,
		UpdateTime:       updateTime,
		Location:         Location{Partition: partition, StartBlock: wire.Location.StartBlock},
		VolumeLockState:  wire.VolumeLockState,
		AllowPolicyUpdate: wire.AllowPolicyUpdate,
	}

	if wire.PreviousGenerationLocation != nil {
		p, err := parsePartitionLetter(wire.PreviousGenerationLocation.Partition)
		if err != nil {
			return nil, err
		}
		idx.PreviousGenerationLocation = &Location{Partition: p, StartBlock: wire.PreviousGenerationLocation.StartBlock}
	}
	if wire.HighestFileUID != nil {
		idx.HighestFileUID = *wire.HighestFileUID
	}

	root, err := fromWireDirectory(&wire.Directory)
	if err != nil {
		return nil, err
	}
	idx.Root = root

	return idx, nil
}

func fromWireDirectory(wd *xmlDirectory) (*DirectoryNode, error) {
	ts, err := parseDirTimestamps(wd)
	if err != nil {
		return nil, err
	}

	d := &DirectoryNode{
		Name:       wd.Name,
		UID:        wd.FileUID,
		Timestamps: ts,
		ReadOnly:   wd.ReadOnly,
	}

	for i := range wd.Contents {
		child, err := fromWireDirectory(&wd.Contents[i])
		if err != nil {
			return nil, err
		}
		d.Directories = append(d.Directories, child)
	}
	for i := range wd.Files {
		f, err := fromWireFile(&wd.Files[i])
		if err != nil {
			return nil, err
		}
		d.Files = append(d.Files, f)
	}

	return d, nil
}

func fromWireFile(wf *xmlFile) (*FileNode, error) {
	ts, err := parseFileTimestamps(wf)
	if err != nil {
		return nil, err
	}

	f := &FileNode{
		Name:          wf.Name,
		UID:           wf.FileUID,
		Length:        wf.Length,
		Timestamps:    ts,
		ReadOnly:      wf.ReadOnly,
		OpenForWrite:  wf.OpenForWrite,
		SymlinkTarget: wf.SymlinkTarget,
	}

	for _, we := range wf.ExtentInfo {
		partition, err := parsePartitionLetter(we.Partition)
		if err != nil {
			return nil, err
		}
		f.Extents = append(f.Extents, Extent{
			FileOffset: we.FileOffset,
			Partition:  partition,
			StartBlock: we.StartBlock,
			ByteOffset: we.ByteOffset,
			ByteCount:  we.ByteCount,
		})
	}

	if wf.ExtendedAttributes != nil {
		f.ExtendedAttrs = make(map[string]string, len(wf.ExtendedAttributes.Entries))
		for _, e := range wf.ExtendedAttributes.Entries {
			f.ExtendedAttrs[e.Key] = e.Value
		}
	}

	return f, nil
}

func parseDirTimestamps(wd *xmlDirectory) (Timestamps, error) {
	return parseFiveTimestamps(wd.CreationTime, wd.ChangeTime, wd.ModifyTime, wd.AccessTime, wd.BackupTime)
}

func parseFileTimestamps(wf *xmlFile) (Timestamps, error) {
	return parseFiveTimestamps(wf.CreationTime, wf.ChangeTime, wf.ModifyTime, wf.AccessTime, wf.BackupTime)
}

func parseFiveTimestamps(creation, change, modify, access, backup string) (Timestamps, error) {
	var ts Timestamps
	var err error
	if ts.Creation, err = parseTimestamp(creation); err != nil {
		return ts, err
	}
	if ts.Change, err = parseTimestamp(change); err != nil {
		return ts, err
	}
	if ts.Modify, err = parseTimestamp(modify); err != nil {
		return ts, err
	}
	if ts.Access, err = parseTimestamp(access); err != nil {
		return ts, err
	}
	if ts.Backup, err = parseTimestamp(backup); err != nil {
		return ts, err
	}
	return ts, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, ltfserrors.NewParseError(err, ltfserrors.ErrorCodeBadTimestamp, "failed to parse timestamp").
			WithDetail("value", s)
	}
	return t, nil
}

func partitionLetter(p uint8) string {
	if p == 1 {
		return "b"
	}
	return "a"
}

func parsePartitionLetter(s string) (uint8, error) {
	switch s {
	case "a", "A", "0":
		return 0, nil
	case "b", "B", "1":
		return 1, nil
	default:
		return 0, ltfserrors.NewParseError(nil, ltfserrors.ErrorCodeMissingElement, "unrecognized partition label").
			WithDetail("value", s)
	}
}
