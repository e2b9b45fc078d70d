package pe

// sizes of the fixed-layout records this package decodes by hand. Named
// here so the offset arithmetic in image.go reads as "advance past a
// $thing", not a string of magic numbers.
const (
	dosStubMinSize  = 0x40 // enough to reach the e_lfanew field at 0x3c
	peLfanewOffset  = 0x3c
	peSignatureSize = 4

	coffHeaderSize     = 20
	dataDirectorySize  = 8
	sectionHeaderSize  = 40
	symbolRecordSize   = 18
)

var peSignature = [4]byte{'P', 'E', 0, 0}
var dosMagic = [2]byte{'M', 'Z'}

// CoffHeader is the fixed 20-byte COFF file header common to both plain
// object files and PE images.
type CoffHeader struct {
	Machine              Machine
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// IsImportLibrary reports the §6 wire fact: a section count of 0xFFFF
// marks the "file" as an import library descriptor, not an object file.
func (h CoffHeader) IsImportLibrary() bool {
	return h.NumberOfSections == importLibrarySectionCount
}

func parseCoffHeader(r reader, off int) (CoffHeader, error) {
	var h CoffHeader
	m, err := r.u16(off)
	if err != nil {
		return h, err
	}
	h.Machine = Machine(m)
	if h.NumberOfSections, err = r.u16(off + 2); err != nil {
		return h, err
	}
	if h.TimeDateStamp, err = r.u32(off + 4); err != nil {
		return h, err
	}
	if h.PointerToSymbolTable, err = r.u32(off + 8); err != nil {
		return h, err
	}
	if h.NumberOfSymbols, err = r.u32(off + 12); err != nil {
		return h, err
	}
	if h.SizeOfOptionalHeader, err = r.u16(off + 16); err != nil {
		return h, err
	}
	if h.Characteristics, err = r.u16(off + 18); err != nil {
		return h, err
	}
	return h, nil
}

// DataDirectory is one (RVA, size) pair from the optional header's fixed
// directory array, indexed by DirectoryIndex.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

func parseDataDirectory(r reader, off int) (DataDirectory, error) {
	var d DataDirectory
	var err error
	if d.VirtualAddress, err = r.u32(off); err != nil {
		return d, err
	}
	if d.Size, err = r.u32(off + 4); err != nil {
		return d, err
	}
	return d, nil
}

// OptionalHeader32 is the PE32 optional header (magic 0x10b). It is
// present only for 32-bit images; PE32+ images carry OptionalHeader64
// instead. The two never coexist (§3 "Optional header").
type OptionalHeader32 struct {
	Magic                   uint16
	MajorLinkerVersion      uint8
	MinorLinkerVersion      uint8
	SizeOfCode              uint32
	SizeOfInitializedData   uint32
	SizeOfUninitializedData uint32
	AddressOfEntryPoint     uint32
	BaseOfCode              uint32
	BaseOfData              uint32
	ImageBase               uint32
	SectionAlignment        uint32
	FileAlignment           uint32
	MajorOSVersion          uint16
	MinorOSVersion          uint16
	MajorImageVersion       uint16
	MinorImageVersion       uint16
	MajorSubsystemVersion   uint16
	MinorSubsystemVersion   uint16
	Win32VersionValue       uint32
	SizeOfImage             uint32
	SizeOfHeaders           uint32
	CheckSum                uint32
	Subsystem               uint16
	DllCharacteristics      uint16
	SizeOfStackReserve      uint32
	SizeOfStackCommit       uint32
	SizeOfHeapReserve       uint32
	SizeOfHeapCommit        uint32
	LoaderFlags             uint32
	NumberOfRvaAndSizes     uint32
}

const optionalHeader32FixedSize = 96

// OptionalHeader64 is the PE32+ optional header (magic 0x20b). It widens
// ImageBase and the four stack/heap size fields to 64 bits and drops
// BaseOfData, relative to OptionalHeader32.
type OptionalHeader64 struct {
	Magic                   uint16
	MajorLinkerVersion      uint8
	MinorLinkerVersion      uint8
	SizeOfCode              uint32
	SizeOfInitializedData   uint32
	SizeOfUninitializedData uint32
	AddressOfEntryPoint     uint32
	BaseOfCode              uint32
	ImageBase               uint64
	SectionAlignment        uint32
	FileAlignment           uint32
	MajorOSVersion          uint16
	MinorOSVersion          uint16
	MajorImageVersion       uint16
	MinorImageVersion       uint16
	MajorSubsystemVersion   uint16
	MinorSubsystemVersion   uint16
	Win32VersionValue       uint32
	SizeOfImage             uint32
	SizeOfHeaders           uint32
	CheckSum                uint32
	Subsystem               uint16
	DllCharacteristics      uint16
	SizeOfStackReserve      uint64
	SizeOfStackCommit       uint64
	SizeOfHeapReserve       uint64
	SizeOfHeapCommit        uint64
	LoaderFlags             uint32
	NumberOfRvaAndSizes     uint32
}

const optionalHeader64FixedSize = 112

// parseOptionalHeader32 decodes the fixed part of a PE32 optional header
// starting at off, and returns the offset immediately following it (where
// the data-directory array begins).
func parseOptionalHeader32(r reader, off int) (OptionalHeader32, int, error) {
	var h OptionalHeader32
	if !r.inBounds(off, optionalHeader32FixedSize) {
		return h, 0, eofAt(off, optionalHeader32FixedSize, len(r.buf))
	}
	var err error
	h.Magic, _ = r.u16(off)
	h.MajorLinkerVersion, _ = r.u8(off + 2)
	h.MinorLinkerVersion, _ = r.u8(off + 3)
	h.SizeOfCode, _ = r.u32(off + 4)
	h.SizeOfInitializedData, _ = r.u32(off + 8)
	h.SizeOfUninitializedData, _ = r.u32(off + 12)
	h.AddressOfEntryPoint, _ = r.u32(off + 16)
	h.BaseOfCode, _ = r.u32(off + 20)
	h.BaseOfData, _ = r.u32(off + 24)
	h.ImageBase, _ = r.u32(off + 28)
	h.SectionAlignment, _ = r.u32(off + 32)
	h.FileAlignment, _ = r.u32(off + 36)
	h.MajorOSVersion, _ = r.u16(off + 40)
	h.MinorOSVersion, _ = r.u16(off + 42)
	h.MajorImageVersion, _ = r.u16(off + 44)
	h.MinorImageVersion, _ = r.u16(off + 46)
	h.MajorSubsystemVersion, _ = r.u16(off + 48)
	h.MinorSubsystemVersion, _ = r.u16(off + 50)
	h.Win32VersionValue, _ = r.u32(off + 52)
	h.SizeOfImage, _ = r.u32(off + 56)
	h.SizeOfHeaders, _ = r.u32(off + 60)
	h.CheckSum, _ = r.u32(off + 64)
	h.Subsystem, _ = r.u16(off + 68)
	h.DllCharacteristics, _ = r.u16(off + 70)
	h.SizeOfStackReserve, _ = r.u32(off + 72)
	h.SizeOfStackCommit, _ = r.u32(off + 76)
	h.SizeOfHeapReserve, _ = r.u32(off + 80)
	h.SizeOfHeapCommit, _ = r.u32(off + 84)
	h.LoaderFlags, _ = r.u32(off + 88)
	if h.NumberOfRvaAndSizes, err = r.u32(off + 92); err != nil {
		return h, 0, err
	}
	return h, off + optionalHeader32FixedSize, nil
}

// parseOptionalHeader64 is the PE32+ counterpart of parseOptionalHeader32.
func parseOptionalHeader64(r reader, off int) (OptionalHeader64, int, error) {
	var h OptionalHeader64
	if !r.inBounds(off, optionalHeader64FixedSize) {
		return h, 0, eofAt(off, optionalHeader64FixedSize, len(r.buf))
	}
	var err error
	h.Magic, _ = r.u16(off)
	h.MajorLinkerVersion, _ = r.u8(off + 2)
	h.MinorLinkerVersion, _ = r.u8(off + 3)
	h.SizeOfCode, _ = r.u32(off + 4)
	h.SizeOfInitializedData, _ = r.u32(off + 8)
	h.SizeOfUninitializedData, _ = r.u32(off + 12)
	h.AddressOfEntryPoint, _ = r.u32(off + 16)
	h.BaseOfCode, _ = r.u32(off + 20)
	h.ImageBase, _ = r.u64(off + 24)
	h.SectionAlignment, _ = r.u32(off + 32)
	h.FileAlignment, _ = r.u32(off + 36)
	h.MajorOSVersion, _ = r.u16(off + 40)
	h.MinorOSVersion, _ = r.u16(off + 42)
	h.MajorImageVersion, _ = r.u16(off + 44)
	h.MinorImageVersion, _ = r.u16(off + 46)
	h.MajorSubsystemVersion, _ = r.u16(off + 48)
	h.MinorSubsystemVersion, _ = r.u16(off + 50)
	h.Win32VersionValue, _ = r.u32(off + 52)
	h.SizeOfImage, _ = r.u32(off + 56)
	h.SizeOfHeaders, _ = r.u32(off + 60)
	h.CheckSum, _ = r.u32(off + 64)
	h.Subsystem, _ = r.u16(off + 68)
	h.DllCharacteristics, _ = r.u16(off + 70)
	h.SizeOfStackReserve, _ = r.u64(off + 72)
	h.SizeOfStackCommit, _ = r.u64(off + 80)
	h.SizeOfHeapReserve, _ = r.u64(off + 88)
	h.SizeOfHeapCommit, _ = r.u64(off + 96)
	h.LoaderFlags, _ = r.u32(off + 104)
	if h.NumberOfRvaAndSizes, err = r.u32(off + 108); err != nil {
		return h, 0, err
	}
	return h, off + optionalHeader64FixedSize, nil
}
