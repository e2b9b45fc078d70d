package pe

import "testing"

func TestReaderBounds(t *testing.T) {
	r := reader{buf: []byte{1, 2, 3, 4, 5, 6, 7, 8}}

	if v, err := r.u8(0); err != nil || v != 1 {
		t.Fatalf("u8(0) = %d, %v", v, err)
	}
	if v, err := r.u16(0); err != nil || v != 0x0201 {
		t.Fatalf("u16(0) = %#x, %v", v, err)
	}
	if v, err := r.u32(0); err != nil || v != 0x04030201 {
		t.Fatalf("u32(0) = %#x, %v", v, err)
	}
	if v, err := r.u64(0); err != nil || v != 0x0807060504030201 {
		t.Fatalf("u64(0) = %#x, %v", v, err)
	}

	if _, err := r.u32(6); err == nil {
		t.Fatal("expected u32(6) to fail: only 2 bytes remain")
	}
	if _, err := r.u8(-1); err == nil {
		t.Fatal("expected u8(-1) to fail on a negative offset")
	}
	if _, err := r.slice(4, -1); err == nil {
		t.Fatal("expected slice with negative length to fail")
	}
}

func TestReaderOverflowSafe(t *testing.T) {
	r := reader{buf: make([]byte, 16)}
	// An offset near the top of the int range plus a positive size must
	// not wrap around and pass the bounds check.
	maxInt := int(^uint(0) >> 1)
	if r.inBounds(maxInt-3, 8) {
		t.Fatal("inBounds should reject an offset that overflows when added to size")
	}
}

func TestReaderCString(t *testing.T) {
	r := reader{buf: []byte("hello\x00world")}
	s, err := r.cstring(0)
	if err != nil || s != "hello" {
		t.Fatalf("cstring(0) = %q, %v", s, err)
	}
	if _, err := r.cstring(6); err == nil {
		t.Fatal("expected cstring with no terminator before EOF to fail")
	}
}
