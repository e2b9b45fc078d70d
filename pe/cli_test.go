package pe

import "testing"

func TestMethodSizeTiny(t *testing.T) {
	img := &Image{r: reader{buf: []byte{0x12, 0, 0, 0, 0}}}
	size, kind, err := img.MethodSize(0)
	if err != nil {
		t.Fatalf("MethodSize: %v", err)
	}
	if kind != MethodTiny {
		t.Fatalf("kind = %v, want MethodTiny", kind)
	}
	if size != 5 {
		t.Fatalf("size = %d, want 5", size)
	}
}

func TestMethodSizeFat(t *testing.T) {
	buf := []byte{0x03, 0, 0, 0, 44, 0, 0, 0}
	img := &Image{r: reader{buf: buf}}
	size, kind, err := img.MethodSize(0)
	if err != nil {
		t.Fatalf("MethodSize: %v", err)
	}
	if kind != MethodFat {
		t.Fatalf("kind = %v, want MethodFat", kind)
	}
	if size != 56 {
		t.Fatalf("size = %d, want 56", size)
	}
}

func TestMethodSizeUnrecognisedLowBits(t *testing.T) {
	img := &Image{r: reader{buf: []byte{0x01}}}
	if _, _, err := img.MethodSize(0); err == nil {
		t.Fatal("expected byte 0x01 to fail: low bits 0b01 are not a recognised header form")
	}
}

func TestParseCLIHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, cliHeaderSize)
	putU32 := func(off int, v uint32) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	putU32(0, 72)                 // Cb
	buf[4], buf[5] = 2, 0         // MajorRuntimeVersion
	buf[6], buf[7] = 5, 0         // MinorRuntimeVersion
	putU32(8, 0x2000)             // MetaData.VirtualAddress
	putU32(12, 0x100)             // MetaData.Size

	r := reader{buf: buf}
	hdr, err := parseCLIHeader(r, 0)
	if err != nil {
		t.Fatalf("parseCLIHeader: %v", err)
	}
	if hdr.Cb != 72 || hdr.MajorRuntimeVersion != 2 || hdr.MinorRuntimeVersion != 5 {
		t.Fatalf("unexpected header: %+v", hdr)
	}
	if hdr.MetaData.VirtualAddress != 0x2000 || hdr.MetaData.Size != 0x100 {
		t.Fatalf("unexpected MetaData directory: %+v", hdr.MetaData)
	}
}
