package pe

import "testing"

// newTestImage builds an Image with a single section spanning the whole
// buffer, RVA and file offset kept identical so tests can address bytes by
// RVA without a separate translation table.
func newTestImage(buf []byte) *Image {
	img := &Image{r: reader{buf: buf}, data: buf}
	img.sections = []Section{{
		rawSectionHeader: rawSectionHeader{
			VirtualAddress: 0,
			VirtualSize:    uint32(len(buf)),
			SizeOfRawData:  uint32(len(buf)),
			PointerToRawData: 0,
		},
		image: img,
		index: 0,
	}}
	return img
}

func TestImportEntryNameAndLookupEntries(t *testing.T) {
	// layout: [0:20) import descriptor, [20:24) ILT word (ordinal 7),
	// [24:28) terminating zero word, [28:...) library name c-string.
	buf := make([]byte, 44)
	putU32 := func(off int, v uint32) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	putU32(0, 20)  // ImportLookupTableRVA
	putU32(12, 28) // NameRVA
	putU32(20, 0x80000007) // ordinal import, high bit set, ordinal 7
	putU32(24, 0)          // terminator
	copy(buf[28:], "KERNEL32.dll\x00")

	img := newTestImage(buf)
	raw, err := parseImportDescriptor(img.r, 0)
	if err != nil {
		t.Fatalf("parseImportDescriptor: %v", err)
	}
	entry := ImportEntry{rawImportDescriptor: raw, image: img, index: 0}

	name, err := entry.Name()
	if err != nil || name != "KERNEL32.dll" {
		t.Fatalf("Name() = %q, %v", name, err)
	}

	entries, err := entry.LookupEntries()
	if err != nil {
		t.Fatalf("LookupEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if !entries[0].IsOrdinal || entries[0].Ordinal != 7 {
		t.Fatalf("entries[0] = %+v, want ordinal 7", entries[0])
	}
}

func TestHintNameResolvesNamedImport(t *testing.T) {
	buf := make([]byte, 32)
	buf[0], buf[1] = 5, 0 // hint = 5
	copy(buf[2:], "GetProcAddress\x00")

	img := newTestImage(buf)
	hint, name, err := img.HintName(0)
	if err != nil {
		t.Fatalf("HintName: %v", err)
	}
	if hint != 5 || name != "GetProcAddress" {
		t.Fatalf("HintName() = %d, %q", hint, name)
	}
}

func TestDecodeImportLookupEntryNamedForm(t *testing.T) {
	e := decodeImportLookupEntry(0x00001234)
	if e.IsOrdinal {
		t.Fatal("expected a named import, not an ordinal")
	}
	if e.HintNameRVA != 0x1234 {
		t.Fatalf("HintNameRVA = %#x, want 0x1234", e.HintNameRVA)
	}
}

func TestImportIteratorWalksAllEntries(t *testing.T) {
	img := &Image{imports: []ImportEntry{{index: 0}, {index: 1}}}
	it := img.Imports()
	var seen []int
	for {
		e, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		seen = append(seen, e.Index())
	}
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Fatalf("seen = %v, want [0 1]", seen)
	}
}
