package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xyproto/peparse/pe"
)

func headersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "headers <file>",
		Short: "Print the COFF header and optional header",
		Args:  requireOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openImage(args[0])
			if err != nil {
				return err
			}
			coff := img.CoffHeader()
			fmt.Printf("format:        %s\n", img.FileFormatName())
			fmt.Printf("machine:       %s (%#04x)\n", coff.Machine, uint16(coff.Machine))
			fmt.Printf("sections:      %d\n", coff.NumberOfSections)
			fmt.Printf("symbols:       %d\n", coff.NumberOfSymbols)
			fmt.Printf("addr width:    %d bytes\n", img.BytesInAddress())
			fmt.Printf("has PE header: %v\n", img.HasPEHeader())
			fmt.Printf("import lib:    %v\n", img.IsImportLibrary())

			if h, ok := img.PE32Header(); ok {
				fmt.Printf("optional hdr:  PE32, image base %#x, entry point %#x, size of image %s\n",
					h.ImageBase, h.AddressOfEntryPoint, humanize.Bytes(uint64(h.SizeOfImage)))
			}
			if h, ok := img.PE32PlusHeader(); ok {
				fmt.Printf("optional hdr:  PE32+, image base %#x, entry point %#x, size of image %s\n",
					h.ImageBase, h.AddressOfEntryPoint, humanize.Bytes(uint64(h.SizeOfImage)))
			}
			if img.HasPEHeader() {
				fmt.Printf("subsystem:     %s (%d)\n", img.Subsystem(), uint16(img.Subsystem()))
			}
			return nil
		},
	}
}

func sectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sections <file>",
		Short: "List the section table",
		Args:  requireOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openImage(args[0])
			if err != nil {
				return err
			}
			it := img.SectionsIter()
			for {
				sec, ok := it.Next()
				if !ok {
					break
				}
				name, err := sec.Name()
				if err != nil {
					log.WithError(err).WithField("index", sec.Index()).Warn("could not resolve section name")
					name = "<unresolved>"
				}
				fmt.Printf("%-3d %-12s vsize=%-10s vaddr=%#-10x raw=%s align=%d flags=[%s%s%s%s]\n",
					sec.Index(), name,
					humanize.Bytes(uint64(sec.VirtualSize)), sec.VirtualAddress,
					humanize.Bytes(uint64(sec.SizeOfRawData)), sec.Alignment(),
					boolFlag(sec.IsText(), "X"), boolFlag(sec.IsData(), "D"),
					boolFlag(sec.IsBSS(), "B"), boolFlag(sec.IsReadOnly(), "R"))
			}
			return nil
		},
	}
}

func boolFlag(set bool, letter string) string {
	if set {
		return letter
	}
	return "-"
}

func symbolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <file>",
		Short: "List the symbol table",
		Args:  requireOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openImage(args[0])
			if err != nil {
				return err
			}
			if !img.HasSymbolTable() {
				fmt.Println("no symbol table")
				return nil
			}
			it := img.Symbols()
			for {
				sym, ok, err := it.Next()
				if err != nil {
					return fmt.Errorf("walking symbol table: %w", err)
				}
				if !ok {
					break
				}
				name, err := sym.Name()
				if err != nil {
					log.WithError(err).WithField("index", sym.Index()).Warn("could not resolve symbol name")
					name = "<unresolved>"
				}
				fmt.Printf("%-4d %-32s type=%-8s flags=%#02x addr=%#x\n",
					sym.Index(), name, sym.Type(), uint8(sym.Flags()), sym.Address())
			}
			return nil
		},
	}
}

func importsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "imports <file>",
		Short: "List the import directory",
		Args:  requireOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openImage(args[0])
			if err != nil {
				return err
			}
			it := img.Imports()
			for {
				entry, ok, err := it.Next()
				if err != nil {
					return fmt.Errorf("walking import directory: %w", err)
				}
				if !ok {
					break
				}
				libName, err := entry.Name()
				if err != nil {
					log.WithError(err).WithField("index", entry.Index()).Warn("could not resolve import library name")
					libName = "<unresolved>"
				}
				fmt.Printf("%s:\n", libName)
				lookups, err := entry.LookupEntries()
				if err != nil {
					log.WithError(err).Warn("could not walk import lookup table")
					continue
				}
				for _, l := range lookups {
					if l.IsOrdinal {
						fmt.Printf("  ordinal #%d\n", l.Ordinal)
						continue
					}
					_, name, err := img.HintName(l.HintNameRVA)
					if err != nil {
						log.WithError(err).Warn("could not resolve hint/name entry")
						continue
					}
					fmt.Printf("  %s\n", name)
				}
			}
			return nil
		},
	}
}

func exportsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exports <file>",
		Short: "List the export directory",
		Args:  requireOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openImage(args[0])
			if err != nil {
				return err
			}
			if !img.HasExports() {
				fmt.Println("no export directory")
				return nil
			}
			if libName, err := img.LibraryName(); err == nil {
				fmt.Printf("library: %s\n", libName)
			}
			it := img.Exports()
			for {
				entry, ok, err := it.Next()
				if err != nil {
					return fmt.Errorf("walking export table: %w", err)
				}
				if !ok {
					break
				}
				name, err := entry.SymbolName()
				if err != nil {
					log.WithError(err).WithField("index", entry.Index()).Warn("could not resolve export name")
					name = "<error>"
				}
				if name == "" {
					name = "<ordinal only>"
				}
				rva, err := entry.ExportRVA()
				if err != nil {
					log.WithError(err).Warn("could not resolve export RVA")
					continue
				}
				fmt.Printf("ordinal=%-6d rva=%#-10x %s\n", entry.Ordinal(), rva, name)
			}
			return nil
		},
	}
}

func cliCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cli <file>",
		Short: "Dump the CLI runtime header and metadata tables",
		Args:  requireOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openImage(args[0])
			if err != nil {
				return err
			}
			hdr := img.CLIHeader()
			if hdr == nil {
				fmt.Println("not a managed image")
				return nil
			}
			fmt.Printf("runtime version: %d.%d\n", hdr.MajorRuntimeVersion, hdr.MinorRuntimeVersion)
			fmt.Printf("entry point token: %#x\n", hdr.EntryPointToken)

			root := img.MetadataHeader()
			if root == nil {
				fmt.Println("no metadata stream")
				return nil
			}
			fmt.Printf("metadata version: %s\n", root.VersionString)
			for _, s := range root.Streams {
				fmt.Printf("stream %-10s offset=%#x size=%s\n", s.Name, s.Offset, humanize.Bytes(uint64(s.Size)))
			}
			if root.Tables == nil {
				return nil
			}
			printTableRowCount(root.Tables, "Module", pe.TableModule)
			printTableRowCount(root.Tables, "TypeRef", pe.TableTypeRef)
			printTableRowCount(root.Tables, "TypeDef", pe.TableTypeDef)
			printTableRowCount(root.Tables, "MethodDef", pe.TableMethodDef)
			printTableRowCount(root.Tables, "MemberRef", pe.TableMemberRef)
			printTableRowCount(root.Tables, "StandAloneSig", pe.TableStandAloneSig)
			printTableRowCount(root.Tables, "AssemblyRef", pe.TableAssemblyRef)
			return nil
		},
	}
	cmd.AddCommand(cliMethodsCommand())
	return cmd
}

func printTableRowCount(th *pe.TablesHeader, name string, id int) {
	if count := th.RowCount(id); count > 0 {
		fmt.Printf("table %-14s rows=%d\n", name, count)
	}
}

func cliMethodsCommand() *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "methods <file>",
		Short: "Decode the CIL method header at a given file offset",
		Args:  requireOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openImage(args[0])
			if err != nil {
				return err
			}
			size, kind, err := img.MethodSize(offset)
			if err != nil {
				return fmt.Errorf("decoding method header at %#x: %w", offset, err)
			}
			kindName := "tiny"
			if kind == pe.MethodFat {
				kindName = "fat"
			}
			fmt.Printf("offset=%#x kind=%s size=%d\n", offset, kindName, size)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "file offset of the method header")
	return cmd
}
