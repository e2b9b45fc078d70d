package pe

// ObjectFile is the capability record the generic, multi-format
// object-file abstraction (ELF/Mach-O/COFF) is expected to dispatch
// through (§9 "Polymorphic object-file base"). That abstraction, and its
// machine/relocation name catalogs, are external collaborators this
// package only consumes; *Image satisfies this interface so a host can
// treat a parsed COFF/PE image the same way it treats any other format.
type ObjectFile interface {
	FileFormatName() string
	Arch() Arch
	BytesInAddress() int

	Sections() []Section
	SymbolsIter() *SymbolIterator
	Imports() *ImportIterator
	Exports() *ExportIterator
}

// SymbolsIter is the name the ObjectFile interface uses for Symbols; it
// returns the same fresh *SymbolIterator.
func (img *Image) SymbolsIter() *SymbolIterator { return img.Symbols() }

var _ ObjectFile = (*Image)(nil)
