package wasm

import "fmt"

// ValueType is a wasm value type tag as it appears on the wire.
type ValueType byte

const (
	ValueTypeI32       ValueType = 0x7f
	ValueTypeI64       ValueType = 0x7e
	ValueTypeF32       ValueType = 0x7d
	ValueTypeF64       ValueType = 0x7c
	ValueTypeV128      ValueType = 0x7b
	ValueTypeFuncRef   ValueType = 0x70
	ValueTypeExternRef ValueType = 0x6f
)

func valueType(b byte) (ValueType, error) {
	switch v := ValueType(b); v {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64,
		ValueTypeV128, ValueTypeFuncRef, ValueTypeExternRef:
		return v, nil
	default:
		return 0, fmt.Errorf("unknown value type tag 0x%02x", b)
	}
}

func refType(b byte) (ValueType, error) {
	switch v := ValueType(b); v {
	case ValueTypeFuncRef, ValueTypeExternRef:
		return v, nil
	default:
		return 0, fmt.Errorf("unknown reference type tag 0x%02x", b)
	}
}

func (v ValueType) String() string {
	switch v {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncRef:
		return "funcref"
	case ValueTypeExternRef:
		return "externref"
	default:
		return fmt.Sprintf("valuetype(0x%02x)", byte(v))
	}
}

// ExternalKind tags imports and exports.
type ExternalKind byte

const (
	ExternalFunc   ExternalKind = 0x00
	ExternalTable  ExternalKind = 0x01
	ExternalMemory ExternalKind = 0x02
	ExternalGlobal ExternalKind = 0x03
)

func externalKind(b byte) (ExternalKind, error) {
	if b > byte(ExternalGlobal) {
		return 0, fmt.Errorf("unknown external kind tag 0x%02x", b)
	}
	return ExternalKind(b), nil
}

func (k ExternalKind) String() string {
	switch k {
	case ExternalFunc:
		return "func"
	case ExternalTable:
		return "table"
	case ExternalMemory:
		return "memory"
	case ExternalGlobal:
		return "global"
	default:
		return fmt.Sprintf("externalkind(0x%02x)", byte(k))
	}
}

// Limits bounds a table or memory. Max is only meaningful when the
// bounded flag (0x01) was set; otherwise it holds defaultMaxPages.
type Limits struct {
	Flag byte
	Min  uint32
	Max  uint32
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// TableType describes a table: element reference type plus limits.
type TableType struct {
	Elem   ValueType
	Limits Limits
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	Type    ValueType
	Mutable bool
}

// Import is one entry of the import section. Exactly one of the
// kind-specific fields is populated, selected by Kind.
type Import struct {
	Module string
	Field  string
	Kind   ExternalKind

	TypeIndex uint32      // ExternalFunc
	Table     *TableType  // ExternalTable
	Memory    *Limits     // ExternalMemory
	Global    *GlobalType // ExternalGlobal
}

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  ExternalKind
	Index uint32
}

// Global is a global definition with its constant initializer, kept as
// raw expression bytes (terminated by the end opcode).
type Global struct {
	Type GlobalType
	Init []byte
}

// ElementSegment is one entry of the element section. Which fields are
// populated depends on Flags (variants 0 through 7 of the binary format).
type ElementSegment struct {
	Flags       uint32
	TableIndex  uint32
	Offset      []byte // constant expression, active segments only
	ElemKind    byte
	RefType     ValueType
	FuncIndices []uint32
	InitExprs   [][]byte
}

// DataSegment is one entry of the data section.
type DataSegment struct {
	Flags    uint32
	MemIndex uint32
	Offset   []byte // constant expression, active segments only
	Init     []byte
}

// LocalEntry is a run-length encoded group of locals in a code body.
type LocalEntry struct {
	Count uint32
	Type  ValueType
}

// FuncBody is one entry of the code section. Expr holds the raw
// instruction bytes including the trailing end opcode.
type FuncBody struct {
	Locals []LocalEntry
	Expr   []byte
}

// CustomSection preserves a custom (id 0) section verbatim.
type CustomSection struct {
	Name string
	Data []byte
}
