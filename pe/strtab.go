package pe

// stringTable is the COFF long-name string table: a 4-byte length prefix
// (which includes itself) followed by NUL-terminated strings. A declared
// length under 4 bytes is normalised to 4, i.e. "empty" (§3).
type stringTable struct {
	off int // file offset of the length prefix
	len int // normalised length, including the 4-byte prefix
}

func parseStringTable(r reader, off int) (stringTable, error) {
	length, err := r.u32(off)
	if err != nil {
		return stringTable{}, err
	}
	n := int(length)
	if n < 4 {
		n = 4
	}
	if !r.inBounds(off, n) {
		return stringTable{}, eofAt(off, n, len(r.buf))
	}
	if n > 4 {
		last, err := r.u8(off + n - 1)
		if err != nil {
			return stringTable{}, err
		}
		if last != 0 {
			return stringTable{}, failf("string table is not NUL-terminated at its last byte")
		}
	}
	return stringTable{off: off, len: n}, nil
}

// stringAt resolves a string-table-relative offset to its NUL-terminated
// string. Any lookup into an empty (normalised-to-4) table is rejected, as
// are offsets at or beyond the table's declared length.
func (img *Image) stringAt(relOffset int) (string, error) {
	st := img.strings
	if st.len <= 4 {
		return "", failf("string-table lookup at offset %d in an empty string table", relOffset)
	}
	if relOffset < 0 || relOffset >= st.len {
		return "", failf("string-table offset %d out of range [0,%d)", relOffset, st.len)
	}
	return img.r.cstring(st.off + relOffset)
}
