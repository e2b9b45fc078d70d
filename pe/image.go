// Package pe implements a read-only, zero-copy parser for the PE/COFF
// object file format, extended with the embedded CLI metadata stream
// found in managed (".NET-style") PE images. It knows nothing about
// writing, linking, disassembling, or executing what it parses; it only
// gives a typed, bounds-checked view over an already memory-resident
// image.
package pe

// Image is the parsed, immutable view of a single COFF or PE file. It
// owns the backing buffer and every cached pointer derived from it; all
// typed views (Section, Symbol, ImportEntry, ...) are borrows bounded by
// the Image's lifetime, matching §5's ownership model.
type Image struct {
	data []byte
	r    reader

	hasPEHeader bool
	coffOffset  int
	coff        CoffHeader

	optMagic uint16
	opt32    *OptionalHeader32
	opt64    *OptionalHeader64
	dataDirs []DataDirectory

	sectionTableOffset int
	sections           []Section

	symbolTableOffset int
	numSymbols        int
	strings           stringTable
	hasSymbols        bool

	imports []ImportEntry

	exports *rawExportDirectory

	cli      *CLIHeader
	metadata *MetadataRoot
}

// Open parses buf as a COFF or PE image. Construction is transactional:
// on any error the returned *Image is nil and no partial state escapes
// (§7 "Error handling design").
func Open(buf []byte) (*Image, error) {
	r := reader{buf: buf}
	img := &Image{data: buf, r: r}

	if !r.inBounds(0, coffHeaderSize) {
		return nil, eofAt(0, coffHeaderSize, len(buf))
	}

	cursor := 0
	if r.inBounds(0, 2) {
		magic, _ := r.slice(0, 2)
		if magic[0] == dosMagic[0] && magic[1] == dosMagic[1] {
			lfanew, err := r.u32(peLfanewOffset)
			if err != nil {
				return nil, err
			}
			sig, err := r.slice(int(lfanew), peSignatureSize)
			if err != nil {
				return nil, err
			}
			if sig[0] != peSignature[0] || sig[1] != peSignature[1] || sig[2] != peSignature[2] || sig[3] != peSignature[3] {
				return nil, failf("expected PE signature at offset %#x", lfanew)
			}
			img.hasPEHeader = true
			cursor = int(lfanew) + peSignatureSize
		}
	}

	coff, err := parseCoffHeader(r, cursor)
	if err != nil {
		return nil, err
	}
	img.coff = coff
	img.coffOffset = cursor
	afterCoff := cursor + coffHeaderSize

	if img.hasPEHeader && coff.SizeOfOptionalHeader > 0 {
		if err := img.parseOptionalAndDirectories(afterCoff); err != nil {
			return nil, err
		}
	}

	img.sectionTableOffset = afterCoff + int(coff.SizeOfOptionalHeader)

	if coff.IsImportLibrary() {
		return img, nil
	}

	if err := img.parseSections(); err != nil {
		return nil, err
	}

	if coff.PointerToSymbolTable != 0 && coff.NumberOfSymbols != 0 {
		if err := img.parseSymbolAndStringTables(); err != nil {
			return nil, err
		}
		img.hasSymbols = true
	}

	if img.hasPEHeader {
		if err := img.parseImportDirectory(); err != nil {
			return nil, err
		}
		if err := img.parseExportDirectory(); err != nil {
			return nil, err
		}
		if err := img.parseCLI(); err != nil {
			return nil, err
		}
	}

	return img, nil
}

func (img *Image) parseOptionalAndDirectories(off int) error {
	magic, err := img.r.u16(off)
	if err != nil {
		return err
	}
	img.optMagic = magic

	var dirBase int
	var numDirs uint32
	switch magic {
	case magicPE32:
		h, next, err := parseOptionalHeader32(img.r, off)
		if err != nil {
			return err
		}
		img.opt32 = &h
		dirBase = next
		numDirs = h.NumberOfRvaAndSizes
	case magicPE32Plus:
		h, next, err := parseOptionalHeader64(img.r, off)
		if err != nil {
			return err
		}
		img.opt64 = &h
		dirBase = next
		numDirs = h.NumberOfRvaAndSizes
	default:
		return failf("unrecognised optional header magic %#x", magic)
	}

	if numDirs > 0 {
		if !img.r.inBounds(dirBase, int(numDirs)*dataDirectorySize) {
			return eofAt(dirBase, int(numDirs)*dataDirectorySize, len(img.r.buf))
		}
		img.dataDirs = make([]DataDirectory, numDirs)
		for i := range img.dataDirs {
			d, err := parseDataDirectory(img.r, dirBase+i*dataDirectorySize)
			if err != nil {
				return err
			}
			img.dataDirs[i] = d
		}
	}
	return nil
}

func (img *Image) parseSections() error {
	img.sections = make([]Section, img.coff.NumberOfSections)
	off := img.sectionTableOffset
	for i := range img.sections {
		raw, err := parseSectionHeader(img.r, off+i*sectionHeaderSize)
		if err != nil {
			return err
		}
		img.sections[i] = Section{rawSectionHeader: raw, image: img, index: i}
	}
	return nil
}

func (img *Image) parseSymbolAndStringTables() error {
	img.symbolTableOffset = int(img.coff.PointerToSymbolTable)
	img.numSymbols = int(img.coff.NumberOfSymbols)
	stringTableOff := img.symbolTableOffset + img.numSymbols*symbolRecordSize
	st, err := parseStringTable(img.r, stringTableOff)
	if err != nil {
		return err
	}
	img.strings = st
	return nil
}

func (img *Image) symbolOffset(index int) int {
	return img.symbolTableOffset + index*symbolRecordSize
}

// directory returns the idx'th data directory entry and whether it points
// to a real location. Per spec.md §4.2 step 9, presence is decided solely
// by a non-zero RVA; a stray non-zero Size on an otherwise-zero entry does
// not count, since resolving RVA 0 would abort the whole transactional
// Open() rather than correctly treating the directory as absent.
func (img *Image) directory(idx DirectoryIndex) (DataDirectory, bool) {
	if int(idx) >= len(img.dataDirs) {
		return DataDirectory{}, false
	}
	d := img.dataDirs[idx]
	return d, d.VirtualAddress != 0
}

func (img *Image) parseImportDirectory() error {
	dir, ok := img.directory(DirImport)
	if !ok || dir.Size == 0 {
		return nil
	}
	off, err := img.rvaToFileOffset(dir.VirtualAddress)
	if err != nil {
		return err
	}
	count := int(dir.Size) / importDescriptorSize
	img.imports = make([]ImportEntry, count)
	for i := 0; i < count; i++ {
		raw, err := parseImportDescriptor(img.r, int(off)+i*importDescriptorSize)
		if err != nil {
			return err
		}
		img.imports[i] = ImportEntry{rawImportDescriptor: raw, image: img, index: i}
	}
	return nil
}

func (img *Image) parseExportDirectory() error {
	dir, ok := img.directory(DirExport)
	if !ok {
		return nil
	}
	off, err := img.rvaToFileOffset(dir.VirtualAddress)
	if err != nil {
		return err
	}
	raw, err := parseExportDirectory(img.r, int(off))
	if err != nil {
		return err
	}
	img.exports = &raw
	return nil
}

func (img *Image) parseCLI() error {
	dir, ok := img.directory(DirCLRRuntimeHeader)
	if !ok {
		return nil
	}
	off, err := img.rvaToFileOffset(dir.VirtualAddress)
	if err != nil {
		return err
	}
	hdr, err := parseCLIHeader(img.r, int(off))
	if err != nil {
		return err
	}
	img.cli = &hdr

	if hdr.MetaData.VirtualAddress == 0 {
		return nil
	}
	mdOff, err := img.rvaToFileOffset(hdr.MetaData.VirtualAddress)
	if err != nil {
		return err
	}
	root, err := parseMetadataRoot(img.r, int(mdOff))
	if err != nil {
		return err
	}
	img.metadata = root
	return nil
}

// rvaToFileOffset resolves an RVA to a file offset by scanning sections
// linearly for the one covering it (§4.2 "RVA resolution").
func (img *Image) rvaToFileOffset(rva uint32) (int64, error) {
	for i := range img.sections {
		if img.sections[i].containsRVA(rva) {
			return img.sections[i].fileOffsetForRVA(rva), nil
		}
	}
	return 0, failf("RVA %#x is not covered by any section", rva)
}

// RvaToPtr resolves rva to a byte slice living at that address, zero-copy
// into the image buffer.
func (img *Image) RvaToPtr(rva uint32) ([]byte, error) {
	off, err := img.rvaToFileOffset(rva)
	if err != nil {
		return nil, err
	}
	return img.r.buf[off:], nil
}

// imageBase returns the optional header's ImageBase field, or 0 if there
// is no optional header (e.g. a plain object file).
func (img *Image) imageBase() uint64 {
	switch {
	case img.opt64 != nil:
		return img.opt64.ImageBase
	case img.opt32 != nil:
		return uint64(img.opt32.ImageBase)
	default:
		return 0
	}
}

// VaToPtr resolves a virtual address (RVA + image base) to a byte slice,
// by subtracting the image base and delegating to RvaToPtr.
func (img *Image) VaToPtr(va uint64) ([]byte, error) {
	base := img.imageBase()
	if va < base {
		return nil, failf("virtual address %#x is below the image base %#x", va, base)
	}
	return img.RvaToPtr(uint32(va - base))
}

// CoffHeader returns the parsed COFF file header.
func (img *Image) CoffHeader() CoffHeader { return img.coff }

// PE32Header returns the PE32 optional header and true, or false if this
// image has no optional header or is a PE32+ image.
func (img *Image) PE32Header() (OptionalHeader32, bool) {
	if img.opt32 == nil {
		return OptionalHeader32{}, false
	}
	return *img.opt32, true
}

// PE32PlusHeader returns the PE32+ optional header and true, or false if
// this image has no optional header or is a PE32 image.
func (img *Image) PE32PlusHeader() (OptionalHeader64, bool) {
	if img.opt64 == nil {
		return OptionalHeader64{}, false
	}
	return *img.opt64, true
}

// DataDirectory returns the idx'th data directory entry, or the zero
// value if idx is out of range (e.g. NumberOfRvaAndSizes was smaller).
func (img *Image) DataDirectory(idx DirectoryIndex) DataDirectory {
	d, _ := img.directory(idx)
	return d
}

// HasPEHeader reports whether this image had an MZ/PE wrapper, as
// opposed to being a plain COFF object file.
func (img *Image) HasPEHeader() bool { return img.hasPEHeader }

// IsImportLibrary reports the §6 wire fact for this image.
func (img *Image) IsImportLibrary() bool { return img.coff.IsImportLibrary() }

// HasSymbolTable reports whether this image has a non-empty symbol
// table (a non-zero PointerToSymbolTable in the COFF header).
func (img *Image) HasSymbolTable() bool { return img.hasSymbols }

// Sections returns a snapshot slice of the image's section table.
func (img *Image) Sections() []Section { return img.sections }

// SectionIterator walks Sections() in table order.
type SectionIterator struct {
	image *Image
	pos   int
}

// SectionsIter returns a fresh iterator over the section table.
func (img *Image) SectionsIter() *SectionIterator { return &SectionIterator{image: img} }

func (it *SectionIterator) Next() (Section, bool) {
	if it.pos >= len(it.image.sections) {
		return Section{}, false
	}
	s := it.image.sections[it.pos]
	it.pos++
	return s, true
}

// Symbol returns the primary symbol record at table index i.
func (img *Image) Symbol(i int) (Symbol, error) {
	if i < 0 || i >= img.numSymbols {
		return Symbol{}, failf("symbol index %d out of range [0,%d)", i, img.numSymbols)
	}
	raw, err := parseSymbolRecord(img.r, img.symbolOffset(i))
	if err != nil {
		return Symbol{}, err
	}
	return Symbol{rawSymbolRecord: raw, image: img, index: i}, nil
}

// SymbolIterator walks the packed symbol table, skipping each entry's
// auxiliary records per its NumberOfAuxSymbols (§4.3, invariant 2 in §8).
type SymbolIterator struct {
	image *Image
	pos   int
}

// Symbols returns a fresh iterator over the primary symbol records.
func (img *Image) Symbols() *SymbolIterator { return &SymbolIterator{image: img} }

func (it *SymbolIterator) Next() (Symbol, bool, error) {
	if it.pos >= it.image.numSymbols {
		return Symbol{}, false, nil
	}
	sym, err := it.image.Symbol(it.pos)
	if err != nil {
		return Symbol{}, false, err
	}
	it.pos += 1 + int(sym.NumberOfAuxSymbols)
	return sym, true, nil
}

// MetadataHeader returns the parsed CLI metadata root, or nil if the
// image is not a managed image or has no metadata stream.
func (img *Image) MetadataHeader() *MetadataRoot { return img.metadata }

// CLIHeader returns the parsed CLI runtime header, or nil if the image
// carries none.
func (img *Image) CLIHeader() *CLIHeader { return img.cli }

// HasExports reports whether the image has an export directory.
func (img *Image) HasExports() bool { return img.exports != nil }
