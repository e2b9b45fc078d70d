package pe

import "math/bits"

// metadataSignature is the 'BSJB' magic every CLI metadata root begins
// with (§6 "wire facts"). Unlike the reference, this package verifies it
// (§9 "Metadata signature check").
const metadataSignature = 0x424a5342

func roundUpTo4(n int) int {
	return (n + 3) &^ 3
}

// StreamHeader names one region of the metadata root: a byte range plus
// the stream's name (e.g. "#~", "#Strings", "#GUID", "#Blob", "#US").
type StreamHeader struct {
	Offset uint32
	Size   uint32
	Name   string
}

// MetadataRoot is the parsed 'BSJB' header: version string, flags, and
// the stream directory (§3 "Metadata root").
type MetadataRoot struct {
	Signature      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	Reserved       uint32
	VersionString  string
	Flags          uint16
	Streams        []StreamHeader
	Tables         *TablesHeader

	base int // file offset the root itself starts at; stream offsets are relative to this
}

// parseMetadataRoot decodes the metadata root in place starting at off,
// cursor-driven because the version string's length is variable (§4.5).
func parseMetadataRoot(r reader, off int) (*MetadataRoot, error) {
	root := &MetadataRoot{base: off}
	cursor := off

	sig, err := r.u32(cursor)
	if err != nil {
		return nil, err
	}
	if sig != metadataSignature {
		return nil, failf("metadata root signature %#x does not match BSJB (%#x)", sig, metadataSignature)
	}
	root.Signature = sig
	cursor += 4

	if root.MajorVersion, err = r.u16(cursor); err != nil {
		return nil, err
	}
	cursor += 2
	if root.MinorVersion, err = r.u16(cursor); err != nil {
		return nil, err
	}
	cursor += 2
	if root.Reserved, err = r.u32(cursor); err != nil {
		return nil, err
	}
	cursor += 4

	length, err := r.u16(cursor)
	if err != nil {
		return nil, err
	}
	cursor += 2
	verBytes, err := r.slice(cursor, int(length))
	if err != nil {
		return nil, err
	}
	if idx := indexByte(verBytes, 0); idx >= 0 {
		root.VersionString = string(verBytes[:idx])
	} else {
		root.VersionString = string(verBytes)
	}
	cursor += roundUpTo4(int(length))

	if root.Flags, err = r.u16(cursor); err != nil {
		return nil, err
	}
	cursor += 2
	streamCount, err := r.u16(cursor)
	if err != nil {
		return nil, err
	}
	cursor += 2

	root.Streams = make([]StreamHeader, streamCount)
	for i := range root.Streams {
		var sh StreamHeader
		if sh.Offset, err = r.u32(cursor); err != nil {
			return nil, err
		}
		cursor += 4
		if sh.Size, err = r.u32(cursor); err != nil {
			return nil, err
		}
		cursor += 4
		name, err := r.cstring(cursor)
		if err != nil {
			return nil, err
		}
		sh.Name = name
		cursor += roundUpTo4(len(name) + 1)
		root.Streams[i] = sh
	}

	tablesStream, ok := root.stream("#~")
	if ok {
		tables, err := parseTablesHeader(r, off+int(tablesStream.Offset))
		if err != nil {
			return nil, err
		}
		root.Tables = tables
	}

	return root, nil
}

func (root *MetadataRoot) stream(name string) (StreamHeader, bool) {
	for _, s := range root.Streams {
		if s.Name == name {
			return s, true
		}
	}
	return StreamHeader{}, false
}

// heapSize flag bits (§3 "#~ tables header").
const (
	heapSizeStrings = 1 << 0
	heapSizeGUID    = 1 << 1
	heapSizeBlob    = 1 << 2
)

// TablesHeader is the decoded '#~' stream header: version, heap-index
// widths, the Valid/Sorted bitmaps, per-table row counts, and the
// supported present tables' parsed records (§3, §4.6).
type TablesHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	HeapSizes    uint8
	Valid        uint64
	Sorted       uint64
	RowCounts    []uint32 // one per set bit of Valid, in ascending table-id order

	Module        *ModuleTable
	TypeRef       *TypeRefTable
	TypeDef       *TypeDefTable
	MethodDef     *MethodDefTable
	MemberRef     *MemberRefTable
	StandAloneSig *StandAloneSigTable
	AssemblyRef   *AssemblyRefTable
}

// WideStrings/WideGUID/WideBlob report whether the corresponding heap
// index width is 4 bytes (set) rather than the common 2-byte case (§9
// "Heap-size-dependent metadata row widths"). This package's fixed table
// layouts assume 2-byte indices; see knownTableRowSizes.
func (t *TablesHeader) WideStrings() bool { return t.HeapSizes&heapSizeStrings != 0 }
func (t *TablesHeader) WideGUID() bool    { return t.HeapSizes&heapSizeGUID != 0 }
func (t *TablesHeader) WideBlob() bool    { return t.HeapSizes&heapSizeBlob != 0 }

func parseTablesHeader(r reader, off int) (*TablesHeader, error) {
	cursor := off + 4 // 4 reserved bytes
	th := &TablesHeader{}
	var err error
	if th.MajorVersion, err = r.u8(cursor); err != nil {
		return nil, err
	}
	cursor++
	if th.MinorVersion, err = r.u8(cursor); err != nil {
		return nil, err
	}
	cursor++
	if th.HeapSizes, err = r.u8(cursor); err != nil {
		return nil, err
	}
	cursor++
	cursor++ // 1 reserved byte
	if th.Valid, err = r.u64(cursor); err != nil {
		return nil, err
	}
	cursor += 8
	if th.Sorted, err = r.u64(cursor); err != nil {
		return nil, err
	}
	cursor += 8

	numTables := bits.OnesCount64(th.Valid)
	th.RowCounts = make([]uint32, numTables)
	for i := range th.RowCounts {
		if th.RowCounts[i], err = r.u32(cursor); err != nil {
			return nil, err
		}
		cursor += 4
	}

	if err := th.parseTables(r, cursor); err != nil {
		return nil, err
	}
	return th, nil
}
