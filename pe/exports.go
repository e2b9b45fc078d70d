package pe

// rawExportDirectory is the fixed 40-byte export directory table record.
type rawExportDirectory struct {
	Characteristics       uint32
	TimeDateStamp         uint32
	MajorVersion          uint16
	MinorVersion          uint16
	Name                  uint32
	Base                  uint32
	NumberOfFunctions     uint32
	NumberOfNames         uint32
	AddressOfFunctions    uint32
	AddressOfNames        uint32
	AddressOfNameOrdinals uint32
}

const exportDirectorySize = 40

func parseExportDirectory(r reader, off int) (rawExportDirectory, error) {
	var d rawExportDirectory
	var err error
	if d.Characteristics, err = r.u32(off); err != nil {
		return d, err
	}
	if d.TimeDateStamp, err = r.u32(off + 4); err != nil {
		return d, err
	}
	if d.MajorVersion, err = r.u16(off + 8); err != nil {
		return d, err
	}
	if d.MinorVersion, err = r.u16(off + 10); err != nil {
		return d, err
	}
	if d.Name, err = r.u32(off + 12); err != nil {
		return d, err
	}
	if d.Base, err = r.u32(off + 16); err != nil {
		return d, err
	}
	if d.NumberOfFunctions, err = r.u32(off + 20); err != nil {
		return d, err
	}
	if d.NumberOfNames, err = r.u32(off + 24); err != nil {
		return d, err
	}
	if d.AddressOfFunctions, err = r.u32(off + 28); err != nil {
		return d, err
	}
	if d.AddressOfNames, err = r.u32(off + 32); err != nil {
		return d, err
	}
	if d.AddressOfNameOrdinals, err = r.u32(off + 36); err != nil {
		return d, err
	}
	return d, nil
}

// ExportEntry is one slot of the export address table, indexed the way
// §4.4 describes: ordinal = Base + index, name resolved (if any) through
// the parallel name-pointer/ordinal tables.
type ExportEntry struct {
	image *Image
	index uint32
}

// Index is this entry's position in the export address table.
func (e ExportEntry) Index() uint32 { return e.index }

// Ordinal is OrdinalBase + Index.
func (e ExportEntry) Ordinal() uint32 {
	return e.image.exports.Base + e.index
}

// ExportRVA is ExportAddressTable[Index].
func (e ExportEntry) ExportRVA() (uint32, error) {
	off, err := e.image.rvaToFileOffset(e.image.exports.AddressOfFunctions)
	if err != nil {
		return 0, err
	}
	return e.image.r.u32(int(off) + int(e.index)*4)
}

// SymbolName searches the ordinal table for the first entry equal to
// Index; if found, the name-pointer table at the same position gives the
// exported name. Exports by ordinal only (no matching entry) return "".
func (e ExportEntry) SymbolName() (string, error) {
	exp := e.image.exports
	ordOff, err := e.image.rvaToFileOffset(exp.AddressOfNameOrdinals)
	if err != nil {
		return "", err
	}
	nameOff, err := e.image.rvaToFileOffset(exp.AddressOfNames)
	if err != nil {
		return "", err
	}
	for i := uint32(0); i < exp.NumberOfNames; i++ {
		ord, err := e.image.r.u16(int(ordOff) + int(i)*2)
		if err != nil {
			return "", err
		}
		if uint32(ord) != e.index {
			continue
		}
		nameRVA, err := e.image.r.u32(int(nameOff) + int(i)*4)
		if err != nil {
			return "", err
		}
		strOff, err := e.image.rvaToFileOffset(nameRVA)
		if err != nil {
			return "", err
		}
		return e.image.r.cstring(int(strOff))
	}
	return "", nil
}

// ExportIterator walks the export address table in index order.
type ExportIterator struct {
	image *Image
	pos   uint32
}

// Exports returns an iterator over [0, AddressTableEntries) of the
// image's export directory, or an empty iterator if the image has none.
func (img *Image) Exports() *ExportIterator {
	return &ExportIterator{image: img}
}

// Next returns the next export entry, or ok=false once exhausted.
func (it *ExportIterator) Next() (entry ExportEntry, ok bool, err error) {
	if it.image.exports == nil || it.pos >= it.image.exports.NumberOfFunctions {
		return ExportEntry{}, false, nil
	}
	e := ExportEntry{image: it.image, index: it.pos}
	it.pos++
	return e, true, nil
}

// LibraryName resolves the export directory's own Name RVA — the name
// this image is exported as (e.g. the DLL's own file name).
func (img *Image) LibraryName() (string, error) {
	if img.exports == nil {
		return "", failf("image has no export directory")
	}
	off, err := img.rvaToFileOffset(img.exports.Name)
	if err != nil {
		return "", err
	}
	return img.r.cstring(int(off))
}
