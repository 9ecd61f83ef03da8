package wasm

import (
	"fmt"
	"strings"
)

// Module is a decoded wasm binary module.
type Module struct {
	Version uint32
	Size    int

	Customs  []CustomSection
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // type index per local function
	Tables   []TableType
	Memories []Limits
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Elements []ElementSegment
	Code     []FuncBody
	Data     []DataSegment

	DataCount *uint32
}

// ExportedFunc returns the function index exported under name.
func (m *Module) ExportedFunc(name string) (uint32, bool) {
	for _, exp := range m.Exports {
		if exp.Name == name && exp.Kind == ExternalFunc {
			return exp.Index, true
		}
	}
	return 0, false
}

// Summary renders a human-readable per-section overview of the module,
// the output of the inspect command.
func (m *Module) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: \\0asm\n")
	fmt.Fprintf(&b, "Version: %d\n", m.Version)
	fmt.Fprintf(&b, "Size: %d\n\n", m.Size)

	for _, c := range m.Customs {
		fmt.Fprintf(&b, "SectionCustom(name = %q, size = %d)\n", c.Name, len(c.Data))
	}
	fmt.Fprintf(&b, "SectionType(count = %d)\n", len(m.Types))
	for i, t := range m.Types {
		fmt.Fprintf(&b, "    (%d)Type: (%s) => %s\n", i, joinTypes(t.Params), resultString(t.Results))
	}
	fmt.Fprintf(&b, "SectionImport(count = %d)\n", len(m.Imports))
	for i, imp := range m.Imports {
		fmt.Fprintf(&b, "    (%d)Import: %s.%s %s\n", i, imp.Module, imp.Field, imp.Kind)
	}
	fmt.Fprintf(&b, "SectionFunction(count = %d)\n", len(m.Funcs))
	fmt.Fprintf(&b, "SectionTable(count = %d)\n", len(m.Tables))
	for i, t := range m.Tables {
		fmt.Fprintf(&b, "    (%d)Table: %s [%d ~ %d]\n", i, t.Elem, t.Limits.Min, t.Limits.Max)
	}
	fmt.Fprintf(&b, "SectionMemory(count = %d)\n", len(m.Memories))
	for i, lim := range m.Memories {
		fmt.Fprintf(&b, "    (%d)Memory: [%d ~ %d]\n", i, lim.Min, lim.Max)
	}
	fmt.Fprintf(&b, "SectionGlobal(count = %d)\n", len(m.Globals))
	for i, g := range m.Globals {
		mut := "const"
		if g.Type.Mutable {
			mut = "var"
		}
		fmt.Fprintf(&b, "    (%d)Global: %s %s\n", i, mut, g.Type.Type)
	}
	fmt.Fprintf(&b, "SectionExport(count = %d)\n", len(m.Exports))
	for i, e := range m.Exports {
		fmt.Fprintf(&b, "    (%d)Export: %s %s(%d)\n", i, e.Name, e.Kind, e.Index)
	}
	if m.Start != nil {
		fmt.Fprintf(&b, "SectionStart(func = %d)\n", *m.Start)
	}
	fmt.Fprintf(&b, "SectionElement(count = %d)\n", len(m.Elements))
	fmt.Fprintf(&b, "SectionCode(count = %d)\n", len(m.Code))
	fmt.Fprintf(&b, "SectionData(count = %d)\n", len(m.Data))
	if m.DataCount != nil {
		fmt.Fprintf(&b, "SectionDataCount(count = %d)\n", *m.DataCount)
	}
	return b.String()
}

func joinTypes(ts []ValueType) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

func resultString(ts []ValueType) string {
	if len(ts) == 0 {
		return "NOP"
	}
	return joinTypes(ts)
}
