package pe

import "testing"

func TestArchMapping(t *testing.T) {
	cases := []struct {
		machine Machine
		want    Arch
	}{
		{MachineI386, ArchX86},
		{MachineAMD64, ArchX86_64},
		{MachineARM, ArchARM},
		{MachineARM64, ArchARM64},
		{MachineUnknown, ArchUnknown},
	}
	for _, c := range cases {
		img := &Image{coff: CoffHeader{Machine: c.machine}}
		if got := img.Arch(); got != c.want {
			t.Errorf("Arch() for machine %v = %v, want %v", c.machine, got, c.want)
		}
	}
}

func TestFileFormatName(t *testing.T) {
	cases := []struct {
		machine Machine
		want    string
	}{
		{MachineI386, "COFF-i386"},
		{MachineAMD64, "COFF-x86-64"},
		{MachineARM, "COFF-<unknown arch>"},
	}
	for _, c := range cases {
		img := &Image{coff: CoffHeader{Machine: c.machine}}
		if got := img.FileFormatName(); got != c.want {
			t.Errorf("FileFormatName() for machine %v = %q, want %q", c.machine, got, c.want)
		}
	}
}

func TestBytesInAddress(t *testing.T) {
	amd64 := &Image{coff: CoffHeader{Machine: MachineAMD64}}
	if got := amd64.BytesInAddress(); got != 8 {
		t.Errorf("BytesInAddress() for amd64 = %d, want 8", got)
	}
	i386 := &Image{coff: CoffHeader{Machine: MachineI386}}
	if got := i386.BytesInAddress(); got != 4 {
		t.Errorf("BytesInAddress() for i386 = %d, want 4", got)
	}
	arm64 := &Image{coff: CoffHeader{Machine: MachineARM64}}
	if got := arm64.BytesInAddress(); got != 4 {
		t.Errorf("BytesInAddress() for arm64 = %d, want 4 per the literal spec rule", got)
	}
}

func TestSubsystemMapping(t *testing.T) {
	cases := []struct {
		raw  uint16
		want Subsystem
		name string
	}{
		{2, SubsystemWindowsGUI, "windows-gui"},
		{3, SubsystemWindowsCUI, "windows-cui"},
		{10, SubsystemEFIApplication, "efi-application"},
		{0, SubsystemUnknown, "unknown"},
	}
	for _, c := range cases {
		if got := Subsystem(c.raw).String(); got != c.name {
			t.Errorf("Subsystem(%d).String() = %q, want %q", c.raw, got, c.name)
		}
	}

	pe32 := &Image{opt32: &OptionalHeader32{Subsystem: 3}}
	if got := pe32.Subsystem(); got != SubsystemWindowsCUI {
		t.Errorf("Subsystem() for PE32 image = %v, want %v", got, SubsystemWindowsCUI)
	}
	pe32plus := &Image{opt64: &OptionalHeader64{Subsystem: 2}}
	if got := pe32plus.Subsystem(); got != SubsystemWindowsGUI {
		t.Errorf("Subsystem() for PE32+ image = %v, want %v", got, SubsystemWindowsGUI)
	}
	plain := &Image{}
	if got := plain.Subsystem(); got != SubsystemUnknown {
		t.Errorf("Subsystem() for a plain COFF image = %v, want %v", got, SubsystemUnknown)
	}
}
