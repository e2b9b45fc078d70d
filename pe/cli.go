package pe

// CLIHeader is the fixed 72-byte IMAGE_COR20_HEADER embedded in managed
// images, reached through the CLR-runtime-header data directory (§3).
type CLIHeader struct {
	Cb                      uint32
	MajorRuntimeVersion     uint16
	MinorRuntimeVersion     uint16
	MetaData                DataDirectory
	Flags                   uint32
	EntryPointToken         uint32
	Resources               DataDirectory
	StrongNameSignature     DataDirectory
	CodeManagerTable        DataDirectory
	VTableFixups            DataDirectory
	ExportAddressTableJumps DataDirectory
	ManagedNativeHeader     DataDirectory
}

const cliHeaderSize = 72

func parseCLIHeader(r reader, off int) (CLIHeader, error) {
	var h CLIHeader
	var err error
	if h.Cb, err = r.u32(off); err != nil {
		return h, err
	}
	if h.MajorRuntimeVersion, err = r.u16(off + 4); err != nil {
		return h, err
	}
	if h.MinorRuntimeVersion, err = r.u16(off + 6); err != nil {
		return h, err
	}
	if h.MetaData, err = parseDataDirectory(r, off+8); err != nil {
		return h, err
	}
	if h.Flags, err = r.u32(off + 16); err != nil {
		return h, err
	}
	if h.EntryPointToken, err = r.u32(off + 20); err != nil {
		return h, err
	}
	if h.Resources, err = parseDataDirectory(r, off+24); err != nil {
		return h, err
	}
	if h.StrongNameSignature, err = parseDataDirectory(r, off+32); err != nil {
		return h, err
	}
	if h.CodeManagerTable, err = parseDataDirectory(r, off+40); err != nil {
		return h, err
	}
	if h.VTableFixups, err = parseDataDirectory(r, off+48); err != nil {
		return h, err
	}
	if h.ExportAddressTableJumps, err = parseDataDirectory(r, off+56); err != nil {
		return h, err
	}
	if h.ManagedNativeHeader, err = parseDataDirectory(r, off+64); err != nil {
		return h, err
	}
	return h, nil
}

// MethodHeaderKind names which CIL method body prologue (tiny or fat)
// MethodSize decoded.
type MethodHeaderKind int

const (
	MethodTiny MethodHeaderKind = iota
	MethodFat
)

// MethodSize inspects the first byte(s) of a CIL method body at file
// offset off and returns its total size, header included, per §6:
// low 2 bits 0b10 -> tiny header, size = (byte>>2)+1; low 2 bits 0b11 ->
// fat header, size = the dword at +4, plus 12. Any other low-bit pattern
// is a failure.
func (img *Image) MethodSize(off int) (int, MethodHeaderKind, error) {
	b, err := img.r.u8(off)
	if err != nil {
		return 0, 0, err
	}
	switch b & 0x3 {
	case 0x2:
		return int(b>>2) + 1, MethodTiny, nil
	case 0x3:
		codeSize, err := img.r.u32(off + 4)
		if err != nil {
			return 0, 0, err
		}
		return int(codeSize) + 12, MethodFat, nil
	default:
		return 0, 0, failf("method header byte %#x has unrecognised low bits", b)
	}
}
