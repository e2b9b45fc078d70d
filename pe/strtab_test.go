package pe

import "testing"

func TestParseStringTableNormalisesShortLength(t *testing.T) {
	buf := []byte{2, 0, 0, 0}
	st, err := parseStringTable(reader{buf: buf}, 0)
	if err != nil {
		t.Fatalf("parseStringTable: %v", err)
	}
	if st.len != 4 {
		t.Fatalf("len = %d, want 4 (normalised empty table)", st.len)
	}
}

func TestParseStringTableRejectsMissingTerminator(t *testing.T) {
	buf := []byte{5, 0, 0, 0, 'x'}
	if _, err := parseStringTable(reader{buf: buf}, 0); err == nil {
		t.Fatal("expected a non-NUL-terminated table to fail")
	}
}

func TestStringAtRejectsOffsetBeyondEmptyTable(t *testing.T) {
	buf := []byte{4, 0, 0, 0}
	st, err := parseStringTable(reader{buf: buf}, 0)
	if err != nil {
		t.Fatalf("parseStringTable: %v", err)
	}
	img := &Image{r: reader{buf: buf}, strings: st}
	if _, err := img.stringAt(0); err == nil {
		t.Fatal("expected offset 0 on an empty (len==4) table to fail")
	}
	if _, err := img.stringAt(4); err == nil {
		t.Fatal("expected offset 4 on an empty table to fail (no bytes past the prefix)")
	}
}

// TestStringAtResolvesOffsetInsidePrefix covers the E4 scenario literally:
// COFFObjectFile::getString only rejects an offset >= the table's declared
// size, so an offset as low as 1 resolves fine as long as the table is
// larger than the bare 4-byte prefix.
func TestStringAtResolvesOffsetInsidePrefix(t *testing.T) {
	// Padded past 256 bytes so the length word's second byte is non-zero.
	payload := append([]byte("verylongname\x00"), make([]byte, 256)...)
	total := uint32(4 + len(payload))
	buf := make([]byte, 4)
	putU32(buf, 0, total)
	buf = append(buf, payload...)

	st, err := parseStringTable(reader{buf: buf}, 0)
	if err != nil {
		t.Fatalf("parseStringTable: %v", err)
	}
	img := &Image{r: reader{buf: buf}, strings: st}

	s, err := img.stringAt(1)
	if err != nil {
		t.Fatalf("stringAt(1): %v", err)
	}
	// Offset 1 lands one byte into the length prefix, so the NUL-terminated
	// read starts at the length word's second byte (0x01 for a 273-byte
	// table) and stops at its zero third byte.
	if len(s) == 0 {
		t.Fatalf("stringAt(1) = %q, want a non-empty string read from the length word", s)
	}
}

func TestStringAtResolvesEntry(t *testing.T) {
	payload := []byte("hello\x00world\x00")
	total := uint32(4 + len(payload))
	buf := make([]byte, 4)
	putU32(buf, 0, total)
	buf = append(buf, payload...)

	st, err := parseStringTable(reader{buf: buf}, 0)
	if err != nil {
		t.Fatalf("parseStringTable: %v", err)
	}
	img := &Image{r: reader{buf: buf}, strings: st}

	s, err := img.stringAt(4)
	if err != nil || s != "hello" {
		t.Fatalf("stringAt(4) = %q, %v", s, err)
	}
	s, err = img.stringAt(10)
	if err != nil || s != "world" {
		t.Fatalf("stringAt(10) = %q, %v", s, err)
	}
}
