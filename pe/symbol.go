package pe

// rawSymbolRecord is the fixed 18-byte on-disk COFF symbol table entry.
type rawSymbolRecord struct {
	Name               [8]byte
	Value              uint32
	SectionNumber      int16
	Type               uint16
	StorageClass       uint8
	NumberOfAuxSymbols uint8
}

func parseSymbolRecord(r reader, off int) (rawSymbolRecord, error) {
	var s rawSymbolRecord
	name, err := r.slice(off, 8)
	if err != nil {
		return s, err
	}
	copy(s.Name[:], name)
	if s.Value, err = r.u32(off + 8); err != nil {
		return s, err
	}
	if s.SectionNumber, err = r.i16(off + 12); err != nil {
		return s, err
	}
	if s.Type, err = r.u16(off + 14); err != nil {
		return s, err
	}
	if s.StorageClass, err = r.u8(off + 16); err != nil {
		return s, err
	}
	if s.NumberOfAuxSymbols, err = r.u8(off + 17); err != nil {
		return s, err
	}
	return s, nil
}

// SymbolType classifies a symbol the way the reference does: by whether
// it is an unresolved external reference, a function, ordinary data, or
// none of the above (§4.3).
type SymbolType int

const (
	SymUnknown SymbolType = iota
	SymFunction
	SymData
	SymOther
)

func (t SymbolType) String() string {
	switch t {
	case SymFunction:
		return "function"
	case SymData:
		return "data"
	case SymOther:
		return "other"
	default:
		return "unknown"
	}
}

// SymbolFlags records the classification bits §4.3 assigns from a
// symbol's section number, value, and storage class.
type SymbolFlags uint8

const (
	FlagUndefined SymbolFlags = 1 << iota
	FlagCommon
	FlagGlobal
	FlagWeak
	FlagAbsolute
)

func (f SymbolFlags) Has(bit SymbolFlags) bool { return f&bit != 0 }

// Symbol is a read-only view of one primary (non-auxiliary) COFF symbol
// table entry plus the auxiliary records that follow it.
type Symbol struct {
	rawSymbolRecord
	image *Image
	index int // index of the primary record in the packed table
}

// Index is the symbol's position (the primary record's slot) in the
// symbol table.
func (s Symbol) Index() int { return s.index }

// Name resolves the symbol's 8-byte inline name, or — when the first four
// bytes are zero — a string-table reference held in the last four bytes.
func (s Symbol) Name() (string, error) {
	raw := s.rawSymbolRecord.Name[:]
	if raw[0] == 0 && raw[1] == 0 && raw[2] == 0 && raw[3] == 0 {
		off := uint32(raw[4]) | uint32(raw[5])<<8 | uint32(raw[6])<<16 | uint32(raw[7])<<24
		return s.image.stringAt(int(off))
	}
	if idx := indexByte(raw, 0); idx >= 0 {
		return string(raw[:idx]), nil
	}
	return string(raw), nil
}

// section returns the section this symbol lives in, or nil for one of
// the special section numbers (UNDEFINED, ABSOLUTE, DEBUG).
func (s Symbol) section() *Section {
	if s.SectionNumber <= 0 || int(s.SectionNumber) > len(s.image.sections) {
		return nil
	}
	return &s.image.sections[s.SectionNumber-1]
}

// Type implements the classification rule in §4.3: ST_Unknown if external
// and undefined, ST_Function if the complex type is FUNCTION, ST_Data if
// the containing section is readable and not writable, else ST_Other.
func (s Symbol) Type() SymbolType {
	if s.StorageClass == ClassExternal && s.SectionNumber == SectionUndefined {
		return SymUnknown
	}
	if (s.rawSymbolRecord.Type>>4)&0xf == dtypeFunction {
		return SymFunction
	}
	if sec := s.section(); sec != nil {
		if sec.Characteristics&SectionMemRead != 0 && sec.Characteristics&SectionMemWrite == 0 {
			return SymData
		}
	}
	return SymOther
}

// Flags reports the §4.3 classification bits for this symbol.
func (s Symbol) Flags() SymbolFlags {
	var f SymbolFlags
	switch {
	case s.SectionNumber == SectionUndefined && s.Value == 0:
		f |= FlagUndefined
	case s.SectionNumber == SectionUndefined && s.Value != 0:
		f |= FlagCommon
	}
	if s.StorageClass == ClassExternal {
		f |= FlagGlobal
	}
	if s.StorageClass == ClassWeakExternal {
		f |= FlagWeak
	}
	if s.SectionNumber == SectionAbsolute {
		f |= FlagAbsolute
	}
	return f
}

const symbolAddressUnknown = ^uint64(0)

// Address is section.VirtualAddress + Value, or symbolAddressUnknown when
// the symbol has no home section.
func (s Symbol) Address() uint64 {
	sec := s.section()
	if sec == nil {
		return symbolAddressUnknown
	}
	return uint64(sec.VirtualAddress) + uint64(s.Value)
}

// FileOffset is section.PointerToRawData + Value, or symbolAddressUnknown
// when the symbol has no home section.
func (s Symbol) FileOffset() uint64 {
	sec := s.section()
	if sec == nil {
		return symbolAddressUnknown
	}
	return uint64(sec.PointerToRawData) + uint64(s.Value)
}

// Size is the placeholder described in §4.3 and flagged as a FIXME in §9:
// section.SizeOfRawData - Value when a section is present, else zero. The
// exact size (distance to the next symbol, or to the section end) would
// need a linear scan this method does not perform.
func (s Symbol) Size() uint32 {
	sec := s.section()
	if sec == nil {
		return 0
	}
	if s.Value > sec.SizeOfRawData {
		return 0
	}
	return sec.SizeOfRawData - s.Value
}

// AuxData returns the raw bytes of this symbol's auxiliary records, a
// zero-copy slice of NumberOfAuxSymbols*18 bytes immediately following
// the primary record.
func (s Symbol) AuxData() ([]byte, error) {
	if s.NumberOfAuxSymbols == 0 {
		return nil, nil
	}
	off := s.image.symbolOffset(s.index + 1)
	return s.image.r.slice(off, int(s.NumberOfAuxSymbols)*symbolRecordSize)
}
