package pe

// Relocation is one entry of a section's relocation table: a virtual
// address, the symbol-table index it references, and a machine-specific
// type code (§3 "Relocation"). The type-name catalog for it is treated
// as a static external lookup table, out of scope for this package.
type Relocation struct {
	VirtualAddress uint32
	SymbolIndex    uint32
	Type           uint16
}

func parseRelocation(r reader, off int) (Relocation, error) {
	var rel Relocation
	var err error
	if rel.VirtualAddress, err = r.u32(off); err != nil {
		return rel, err
	}
	if rel.SymbolIndex, err = r.u32(off + 4); err != nil {
		return rel, err
	}
	if rel.Type, err = r.u16(off + 8); err != nil {
		return rel, err
	}
	return rel, nil
}

// Address resolves the relocation's target address. The reference leaves
// this unimplemented (§9 "Per-symbol size" sibling note on relocation
// address); computing it requires section context this type does not
// carry on its own, so callers get an explicit error instead of a wrong
// answer.
func (rel Relocation) Address() (uint32, error) {
	return 0, unimplf("relocation address resolution")
}
