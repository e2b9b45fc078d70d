package pe

import "encoding/binary"

// reader is the sole primitive through which the rest of this package
// touches image bytes. Every method verifies the requested range lies
// fully inside buf before returning, and every multi-byte field is
// decoded little-endian regardless of host byte order.
type reader struct {
	buf []byte
}

// inBounds reports whether [off, off+size) is a valid range inside r.buf,
// guarding against both negative offsets and integer overflow of off+size.
func (r reader) inBounds(off, size int) bool {
	if off < 0 || size < 0 {
		return false
	}
	end := off + size
	if end < off {
		return false // overflow
	}
	return end <= len(r.buf)
}

// slice returns the n bytes starting at off, still backed by r.buf.
func (r reader) slice(off, n int) ([]byte, error) {
	if !r.inBounds(off, n) {
		return nil, eofAt(off, n, len(r.buf))
	}
	return r.buf[off : off+n], nil
}

func (r reader) u8(off int) (uint8, error) {
	b, err := r.slice(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r reader) u16(off int) (uint16, error) {
	b, err := r.slice(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r reader) u32(off int) (uint32, error) {
	b, err := r.slice(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r reader) u64(off int) (uint64, error) {
	b, err := r.slice(off, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r reader) i16(off int) (int16, error) {
	v, err := r.u16(off)
	return int16(v), err
}

func (r reader) i32(off int) (int32, error) {
	v, err := r.u32(off)
	return int32(v), err
}

// cstring reads a NUL-terminated string starting at off. The NUL itself
// must be found before the buffer ends, otherwise the read fails with
// ErrUnexpectedEOF rather than silently returning a truncated string.
func (r reader) cstring(off int) (string, error) {
	if off < 0 || off > len(r.buf) {
		return "", eofAt(off, 0, len(r.buf))
	}
	rest := r.buf[off:]
	for i, b := range rest {
		if b == 0 {
			return string(rest[:i]), nil
		}
	}
	return "", eofAt(off, len(rest)+1, len(r.buf))
}
