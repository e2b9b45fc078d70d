package pe

// rawImportDescriptor is the fixed 20-byte import-directory-table entry.
type rawImportDescriptor struct {
	ImportLookupTableRVA uint32
	TimeDateStamp        uint32
	ForwarderChain       uint32
	NameRVA              uint32
	ImportAddressTableRVA uint32
}

const importDescriptorSize = 20

func parseImportDescriptor(r reader, off int) (rawImportDescriptor, error) {
	var d rawImportDescriptor
	var err error
	if d.ImportLookupTableRVA, err = r.u32(off); err != nil {
		return d, err
	}
	if d.TimeDateStamp, err = r.u32(off + 4); err != nil {
		return d, err
	}
	if d.ForwarderChain, err = r.u32(off + 8); err != nil {
		return d, err
	}
	if d.NameRVA, err = r.u32(off + 12); err != nil {
		return d, err
	}
	if d.ImportAddressTableRVA, err = r.u32(off + 16); err != nil {
		return d, err
	}
	return d, nil
}

// ImportEntry is one import-directory-table entry: the library it
// imports from, plus the lookup table describing which symbols (§4.4).
type ImportEntry struct {
	rawImportDescriptor
	image *Image
	index int
}

// Index is this entry's position in the import directory array.
func (e ImportEntry) Index() int { return e.index }

// Name resolves the imported library's name via NameRVA.
func (e ImportEntry) Name() (string, error) {
	off, err := e.image.rvaToFileOffset(e.NameRVA)
	if err != nil {
		return "", err
	}
	return e.image.r.cstring(int(off))
}

const importLookupHighBit = uint32(1) << 31

// ImportLookupEntry is a single decoded slot of a 32-bit import lookup
// (or IAT) table: either an ordinal, or an RVA to a hint/name pair.
type ImportLookupEntry struct {
	Raw        uint32
	IsOrdinal  bool
	Ordinal    uint16
	HintNameRVA uint32
}

func decodeImportLookupEntry(word uint32) ImportLookupEntry {
	if word&importLookupHighBit != 0 {
		return ImportLookupEntry{Raw: word, IsOrdinal: true, Ordinal: uint16(word & 0xffff)}
	}
	return ImportLookupEntry{Raw: word, HintNameRVA: word & 0x7fffffff}
}

// LookupEntries walks this entry's import lookup table (§4.4
// getImportLookupEntry) until the terminating zero word, converting each
// 32-bit slot along the way.
func (e ImportEntry) LookupEntries() ([]ImportLookupEntry, error) {
	off, err := e.image.rvaToFileOffset(e.ImportLookupTableRVA)
	if err != nil {
		return nil, err
	}
	var out []ImportLookupEntry
	cursor := int(off)
	for {
		word, err := e.image.r.u32(cursor)
		if err != nil {
			return nil, err
		}
		if word == 0 {
			return out, nil
		}
		out = append(out, decodeImportLookupEntry(word))
		cursor += 4
	}
}

// HintName resolves the (hint, name) pair an import lookup entry's RVA
// points to, when it is not an ordinal import: a 16-bit hint followed by
// a NUL-terminated name, padded to an even length.
func (img *Image) HintName(rva uint32) (uint16, string, error) {
	off, err := img.rvaToFileOffset(rva)
	if err != nil {
		return 0, "", err
	}
	hint, err := img.r.u16(int(off))
	if err != nil {
		return 0, "", err
	}
	name, err := img.r.cstring(int(off) + 2)
	if err != nil {
		return 0, "", err
	}
	return hint, name, nil
}

// ImportIterator walks the import directory table in order.
type ImportIterator struct {
	image *Image
	pos   int
}

// Imports returns an iterator over the image's import directory, or an
// iterator that immediately reports done if the image has none.
func (img *Image) Imports() *ImportIterator {
	return &ImportIterator{image: img}
}

// Next returns the next import entry, or ok=false once the directory is
// exhausted.
func (it *ImportIterator) Next() (entry ImportEntry, ok bool, err error) {
	if it.pos >= len(it.image.imports) {
		return ImportEntry{}, false, nil
	}
	e := it.image.imports[it.pos]
	it.pos++
	return e, true, nil
}
