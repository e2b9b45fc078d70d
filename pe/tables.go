package pe

import "math/bits"

// Table ids this package fully decodes into typed row slices (§4.6). All
// seven are required by the spec's subset; any other bit set in Valid is
// merely skipped over (its rows are not exposed as typed records) using
// the best-effort row-size catalog in knownTableRowSizes.
const (
	TableModule        = 0x00
	TableTypeRef       = 0x01
	TableTypeDef       = 0x02
	TableMethodDef     = 0x06
	TableMemberRef     = 0x0a
	TableStandAloneSig = 0x11
	TableAssemblyRef   = 0x23
)

// knownTableRowSizes gives a fixed row width for every standard ECMA-335
// metadata table, on the same "2-byte string/GUID/blob heap index and
// 2-byte coded index" assumption the seven fully-decoded tables use
// (§9 "Heap-size-dependent metadata row widths" — flagged there as an
// open question, resolved here by applying the same simplifying
// assumption uniformly). HeapSizes is not consulted: a module with 4-byte
// heap indices is decoded with these 2-byte widths, so its rows are
// misread rather than reported as an error. Sizes for
// tables this package does not otherwise decode are still needed here so
// their rows can be skipped without desynchronising the row cursor for
// tables that come after them in table-id order.
var knownTableRowSizes = map[int]int{
	0x00: 10, // Module
	0x01: 6,  // TypeRef
	0x02: 14, // TypeDef
	0x03: 6,  // FieldPtr
	0x04: 6,  // Field
	0x05: 6,  // MethodPtr
	0x06: 14, // MethodDef
	0x07: 6,  // ParamPtr
	0x08: 6,  // Param
	0x09: 6,  // InterfaceImpl
	0x0a: 6,  // MemberRef
	0x0b: 6,  // Constant
	0x0c: 10, // CustomAttribute
	0x0d: 4,  // FieldMarshal
	0x0e: 6,  // DeclSecurity
	0x0f: 12, // ClassLayout... approximated
	0x10: 8,  // FieldLayout
	0x11: 2,  // StandAloneSig
	0x12: 6,  // EventMap
	0x13: 6,  // EventPtr
	0x14: 6,  // Event
	0x15: 6,  // PropertyMap
	0x16: 6,  // PropertyPtr
	0x17: 6,  // Property
	0x18: 6,  // MethodSemantics
	0x19: 8,  // MethodImpl
	0x1a: 2,  // ModuleRef
	0x1b: 2,  // TypeSpec
	0x1c: 6,  // ImplMap
	0x1d: 4,  // FieldRVA
	0x20: 22, // Assembly
	0x21: 8,  // AssemblyProcessor
	0x22: 12, // AssemblyOS
	0x23: 20, // AssemblyRef
	0x24: 8,  // AssemblyRefProcessor
	0x25: 12, // AssemblyRefOS
	0x26: 6,  // File
	0x27: 8,  // ExportedType
	0x28: 8,  // ManifestResource
	0x29: 6,  // NestedClass
	0x2a: 8,  // GenericParam
	0x2b: 6,  // MethodSpec
	0x2c: 8,  // GenericParamConstraint
}

// ModuleTable holds the parsed rows of the Module table (id 0x00, 10
// bytes/row): Generation, Name, Mvid, EncId, EncBaseId, all as 2-byte
// heap indices in this package's fixed layout.
type ModuleTable struct {
	Rows []ModuleRow
}

type ModuleRow struct {
	Generation uint16
	Name       uint16
	Mvid       uint16
	EncID      uint16
	EncBaseID  uint16
}

// TypeRefTable holds the parsed rows of the TypeRef table (id 0x01, 6
// bytes/row).
type TypeRefTable struct {
	Rows []TypeRefRow
}

type TypeRefRow struct {
	ResolutionScope uint16
	TypeName        uint16
	TypeNamespace   uint16
}

// TypeDefTable holds the parsed rows of the TypeDef table (id 0x02, 14
// bytes/row).
type TypeDefTable struct {
	Rows []TypeDefRow
}

type TypeDefRow struct {
	Flags         uint32
	TypeName      uint16
	TypeNamespace uint16
	Extends       uint16
	FieldList     uint16
	MethodList    uint16
}

// MethodDefTable holds the parsed rows of the MethodDef table (id 0x06,
// 14 bytes/row).
type MethodDefTable struct {
	Rows []MethodDefRow
}

type MethodDefRow struct {
	RVA        uint32
	ImplFlags  uint16
	Flags      uint16
	Name       uint16
	Signature  uint16
	ParamList  uint16
}

// MemberRefTable holds the parsed rows of the MemberRef table (id 0x0a,
// 6 bytes/row).
type MemberRefTable struct {
	Rows []MemberRefRow
}

type MemberRefRow struct {
	Class     uint16
	Name      uint16
	Signature uint16
}

// StandAloneSigTable holds the parsed rows of the StandAloneSig table (id
// 0x11, 2 bytes/row).
type StandAloneSigTable struct {
	Rows []StandAloneSigRow
}

type StandAloneSigRow struct {
	Signature uint16
}

// AssemblyRefTable holds the parsed rows of the AssemblyRef table (id
// 0x23, 20 bytes/row).
type AssemblyRefTable struct {
	Rows []AssemblyRefRow
}

type AssemblyRefRow struct {
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Flags            uint32
	PublicKeyOrToken uint16
	Name             uint16
	Culture          uint16
	HashValue        uint16
}

// parseTables walks bit indices 0..63 of Valid in ascending order (§4.6),
// consuming rows[rank] records per present table. The seven supported
// ids are decoded into typed rows; any other present table is skipped
// using knownTableRowSizes so the cursor stays correct for tables that
// follow it.
func (th *TablesHeader) parseTables(r reader, cursor int) error {
	rank := 0
	for id := 0; id < 64; id++ {
		if th.Valid&(uint64(1)<<uint(id)) == 0 {
			continue
		}
		rowCount := th.RowCounts[rank]
		rank++

		switch id {
		case TableModule:
			t := &ModuleTable{Rows: make([]ModuleRow, rowCount)}
			for i := range t.Rows {
				row, err := parseModuleRow(r, cursor)
				if err != nil {
					return err
				}
				t.Rows[i] = row
				cursor += 10
			}
			th.Module = t

		case TableTypeRef:
			t := &TypeRefTable{Rows: make([]TypeRefRow, rowCount)}
			for i := range t.Rows {
				row, err := parseTypeRefRow(r, cursor)
				if err != nil {
					return err
				}
				t.Rows[i] = row
				cursor += 6
			}
			th.TypeRef = t

		case TableTypeDef:
			t := &TypeDefTable{Rows: make([]TypeDefRow, rowCount)}
			for i := range t.Rows {
				row, err := parseTypeDefRow(r, cursor)
				if err != nil {
					return err
				}
				t.Rows[i] = row
				cursor += 14
			}
			th.TypeDef = t

		case TableMethodDef:
			t := &MethodDefTable{Rows: make([]MethodDefRow, rowCount)}
			for i := range t.Rows {
				row, err := parseMethodDefRow(r, cursor)
				if err != nil {
					return err
				}
				t.Rows[i] = row
				cursor += 14
			}
			th.MethodDef = t

		case TableMemberRef:
			t := &MemberRefTable{Rows: make([]MemberRefRow, rowCount)}
			for i := range t.Rows {
				row, err := parseMemberRefRow(r, cursor)
				if err != nil {
					return err
				}
				t.Rows[i] = row
				cursor += 6
			}
			th.MemberRef = t

		case TableStandAloneSig:
			t := &StandAloneSigTable{Rows: make([]StandAloneSigRow, rowCount)}
			for i := range t.Rows {
				sig, err := r.u16(cursor)
				if err != nil {
					return err
				}
				t.Rows[i] = StandAloneSigRow{Signature: sig}
				cursor += 2
			}
			th.StandAloneSig = t

		case TableAssemblyRef:
			t := &AssemblyRefTable{Rows: make([]AssemblyRefRow, rowCount)}
			for i := range t.Rows {
				row, err := parseAssemblyRefRow(r, cursor)
				if err != nil {
					return err
				}
				t.Rows[i] = row
				cursor += 20
			}
			th.AssemblyRef = t

		default:
			rowSize, known := knownTableRowSizes[id]
			if !known {
				return unimplf("metadata table id %#x is present but has no known layout", id)
			}
			if !r.inBounds(cursor, rowSize*int(rowCount)) {
				return eofAt(cursor, rowSize*int(rowCount), len(r.buf))
			}
			cursor += rowSize * int(rowCount)
		}
	}
	return nil
}

func parseModuleRow(r reader, off int) (ModuleRow, error) {
	var row ModuleRow
	var err error
	if row.Generation, err = r.u16(off); err != nil {
		return row, err
	}
	if row.Name, err = r.u16(off + 2); err != nil {
		return row, err
	}
	if row.Mvid, err = r.u16(off + 4); err != nil {
		return row, err
	}
	if row.EncID, err = r.u16(off + 6); err != nil {
		return row, err
	}
	if row.EncBaseID, err = r.u16(off + 8); err != nil {
		return row, err
	}
	return row, nil
}

func parseTypeRefRow(r reader, off int) (TypeRefRow, error) {
	var row TypeRefRow
	var err error
	if row.ResolutionScope, err = r.u16(off); err != nil {
		return row, err
	}
	if row.TypeName, err = r.u16(off + 2); err != nil {
		return row, err
	}
	if row.TypeNamespace, err = r.u16(off + 4); err != nil {
		return row, err
	}
	return row, nil
}

func parseTypeDefRow(r reader, off int) (TypeDefRow, error) {
	var row TypeDefRow
	var err error
	if row.Flags, err = r.u32(off); err != nil {
		return row, err
	}
	if row.TypeName, err = r.u16(off + 4); err != nil {
		return row, err
	}
	if row.TypeNamespace, err = r.u16(off + 6); err != nil {
		return row, err
	}
	if row.Extends, err = r.u16(off + 8); err != nil {
		return row, err
	}
	if row.FieldList, err = r.u16(off + 10); err != nil {
		return row, err
	}
	if row.MethodList, err = r.u16(off + 12); err != nil {
		return row, err
	}
	return row, nil
}

func parseMethodDefRow(r reader, off int) (MethodDefRow, error) {
	var row MethodDefRow
	var err error
	if row.RVA, err = r.u32(off); err != nil {
		return row, err
	}
	if row.ImplFlags, err = r.u16(off + 4); err != nil {
		return row, err
	}
	if row.Flags, err = r.u16(off + 6); err != nil {
		return row, err
	}
	if row.Name, err = r.u16(off + 8); err != nil {
		return row, err
	}
	if row.Signature, err = r.u16(off + 10); err != nil {
		return row, err
	}
	if row.ParamList, err = r.u16(off + 12); err != nil {
		return row, err
	}
	return row, nil
}

func parseMemberRefRow(r reader, off int) (MemberRefRow, error) {
	var row MemberRefRow
	var err error
	if row.Class, err = r.u16(off); err != nil {
		return row, err
	}
	if row.Name, err = r.u16(off + 2); err != nil {
		return row, err
	}
	if row.Signature, err = r.u16(off + 4); err != nil {
		return row, err
	}
	return row, nil
}

func parseAssemblyRefRow(r reader, off int) (AssemblyRefRow, error) {
	var row AssemblyRefRow
	var err error
	if row.MajorVersion, err = r.u16(off); err != nil {
		return row, err
	}
	if row.MinorVersion, err = r.u16(off + 2); err != nil {
		return row, err
	}
	if row.BuildNumber, err = r.u16(off + 4); err != nil {
		return row, err
	}
	if row.RevisionNumber, err = r.u16(off + 6); err != nil {
		return row, err
	}
	if row.Flags, err = r.u32(off + 8); err != nil {
		return row, err
	}
	if row.PublicKeyOrToken, err = r.u16(off + 12); err != nil {
		return row, err
	}
	if row.Name, err = r.u16(off + 14); err != nil {
		return row, err
	}
	if row.Culture, err = r.u16(off + 16); err != nil {
		return row, err
	}
	if row.HashValue, err = r.u16(off + 18); err != nil {
		return row, err
	}
	return row, nil
}

// RowCount returns the row count for table id, or 0 if it is not set in
// Valid. Used by tests to check invariant 7 in §8: popcount(Valid) equals
// the number of row counts read, one per present table in id order.
func (th *TablesHeader) RowCount(id int) uint32 {
	if th.Valid&(uint64(1)<<uint(id)) == 0 {
		return 0
	}
	rank := bits.OnesCount64(th.Valid & (uint64(1)<<uint(id) - 1))
	return th.RowCounts[rank]
}
