package pe

import "testing"

func TestExportEntryOrdinalAndRVA(t *testing.T) {
	// Export address table: two entries at RVA 40.
	buf := make([]byte, 80)
	putU32 := func(off int, v uint32) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	putU32(40, 0x1000) // AddressOfFunctions[0]
	putU32(44, 0x2000) // AddressOfFunctions[1]

	img := newTestImage(buf)
	img.exports = &rawExportDirectory{
		Base:               1,
		NumberOfFunctions:  2,
		AddressOfFunctions: 40,
	}

	entry := ExportEntry{image: img, index: 1}
	if got := entry.Ordinal(); got != 2 {
		t.Fatalf("Ordinal() = %d, want 2", got)
	}
	rva, err := entry.ExportRVA()
	if err != nil || rva != 0x2000 {
		t.Fatalf("ExportRVA() = %#x, %v", rva, err)
	}
}

func TestExportEntrySymbolNameFoundAndOrdinalOnly(t *testing.T) {
	buf := make([]byte, 128)
	putU32 := func(off int, v uint32) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	putU16 := func(off int, v uint16) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
	}
	// name-pointer table at 0x40 (1 entry), ordinal table at 0x50 (1
	// entry mapping to export index 0), the name string itself at 0x60.
	putU32(0x40, 0x60)
	putU16(0x50, 0)
	copy(buf[0x60:], "DoTheThing\x00")

	img := newTestImage(buf)
	img.exports = &rawExportDirectory{
		NumberOfNames:         1,
		AddressOfNames:        0x40,
		AddressOfNameOrdinals: 0x50,
	}

	named := ExportEntry{image: img, index: 0}
	name, err := named.SymbolName()
	if err != nil || name != "DoTheThing" {
		t.Fatalf("SymbolName() = %q, %v", name, err)
	}

	ordinalOnly := ExportEntry{image: img, index: 1}
	name, err = ordinalOnly.SymbolName()
	if err != nil || name != "" {
		t.Fatalf("SymbolName() for ordinal-only export = %q, %v, want empty string", name, err)
	}
}

func TestExportIteratorAndLibraryName(t *testing.T) {
	buf := make([]byte, 32)
	copy(buf, "mylib.dll\x00")

	img := newTestImage(buf)
	img.exports = &rawExportDirectory{
		Name:              0,
		NumberOfFunctions: 2,
	}

	libName, err := img.LibraryName()
	if err != nil || libName != "mylib.dll" {
		t.Fatalf("LibraryName() = %q, %v", libName, err)
	}

	it := img.Exports()
	count := 0
	for {
		_, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("iterated %d exports, want 2", count)
	}
}

func TestLibraryNameFailsWithoutExportDirectory(t *testing.T) {
	img := &Image{}
	if _, err := img.LibraryName(); err == nil {
		t.Fatal("expected LibraryName to fail on an image with no export directory")
	}
}
