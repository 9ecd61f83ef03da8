package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	magicNumber = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

	ErrBadMagic   = errors.New("magic header not detected")
	ErrBadVersion = errors.New("unknown binary version")
)

// Unbounded tables and memories get this ceiling, in pages.
const defaultMaxPages = 0x10000

// Section ids of the binary format.
const (
	sectionCustom byte = iota
	sectionType
	sectionImport
	sectionFunc
	sectionTable
	sectionMemory
	sectionGlobal
	sectionExport
	sectionStart
	sectionElement
	sectionCode
	sectionData
	sectionDataCount

	sectionMax = sectionDataCount
)

// reader is a bounds-checked cursor over a byte slice.
type reader struct {
	buf []byte
	off int
}

func (r *reader) len() int { return len(r.buf) - r.off }

func (r *reader) readByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *reader) readBytes(n uint32) ([]byte, error) {
	if uint64(r.off)+uint64(n) > uint64(len(r.buf)) {
		return nil, io.ErrUnexpectedEOF
	}
	out := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return out, nil
}

func (r *reader) readU32() (uint32, error) {
	v, n, err := lebU32(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

func (r *reader) readU64() (uint64, error) {
	v, n, err := lebU64(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

func (r *reader) readI32() (int32, error) {
	v, n, err := lebI32(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

func (r *reader) readI64() (int64, error) {
	v, n, err := lebI64(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

func (r *reader) readName() (string, error) {
	n, err := r.readU32()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses raw as a wasm binary module. It validates the header,
// the section framing and the structure of every known section; it does
// not validate indices against each other or type-check code bodies.
func Decode(raw []byte) (*Module, error) {
	r := &reader{buf: raw}

	header, err := r.readBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(header, magicNumber) {
		return nil, ErrBadMagic
	}
	version, err := r.readBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if !bytes.Equal(version, wasmVersion) {
		return nil, ErrBadVersion
	}

	m := &Module{Version: 1, Size: len(raw)}
	for r.len() > 0 {
		if err := decodeSection(r, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func decodeSection(r *reader, m *Module) error {
	id, err := r.readByte()
	if err != nil {
		return fmt.Errorf("reading section id: %w", err)
	}
	if id > sectionMax {
		return fmt.Errorf("unknown section id %d", id)
	}
	size, err := r.readU32()
	if err != nil {
		return fmt.Errorf("section %d: reading byte count: %w", id, err)
	}
	payload, err := r.readBytes(size)
	if err != nil {
		return fmt.Errorf("section %d: %w", id, err)
	}

	sr := &reader{buf: payload}
	switch id {
	case sectionCustom:
		err = decodeCustom(sr, m)
	case sectionType:
		err = decodeTypes(sr, m)
	case sectionImport:
		err = decodeImports(sr, m)
	case sectionFunc:
		err = decodeFuncs(sr, m)
	case sectionTable:
		err = decodeTables(sr, m)
	case sectionMemory:
		err = decodeMemories(sr, m)
	case sectionGlobal:
		err = decodeGlobals(sr, m)
	case sectionExport:
		err = decodeExports(sr, m)
	case sectionStart:
		err = decodeStart(sr, m)
	case sectionElement:
		err = decodeElements(sr, m)
	case sectionCode:
		err = decodeCode(sr, m)
	case sectionData:
		err = decodeData(sr, m)
	case sectionDataCount:
		err = decodeDataCount(sr, m)
	}
	if err != nil {
		return fmt.Errorf("section %d: %w", id, err)
	}
	if sr.len() > 0 {
		return fmt.Errorf("section %d: %d trailing bytes after contents", id, sr.len())
	}
	return nil
}

func decodeCustom(r *reader, m *Module) error {
	name, err := r.readName()
	if err != nil {
		return err
	}
	m.Customs = append(m.Customs, CustomSection{Name: name, Data: r.buf[r.off:]})
	r.off = len(r.buf)
	return nil
}

func decodeTypes(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		tag, err := r.readByte()
		if err != nil {
			return err
		}
		if tag != 0x60 {
			return fmt.Errorf("unknown type: expected 0x60, got 0x%02x", tag)
		}
		var ft FuncType
		if ft.Params, err = readValueTypes(r); err != nil {
			return err
		}
		if ft.Results, err = readValueTypes(r); err != nil {
			return err
		}
		m.Types = append(m.Types, ft)
	}
	return nil
}

func readValueTypes(r *reader) ([]ValueType, error) {
	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	out := make([]ValueType, 0, count)
	for i := uint32(0); i < count; i++ {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		vt, err := valueType(b)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

func decodeImports(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		var imp Import
		if imp.Module, err = r.readName(); err != nil {
			return err
		}
		if imp.Field, err = r.readName(); err != nil {
			return err
		}
		tag, err := r.readByte()
		if err != nil {
			return err
		}
		if imp.Kind, err = externalKind(tag); err != nil {
			return err
		}
		switch imp.Kind {
		case ExternalFunc:
			if imp.TypeIndex, err = r.readU32(); err != nil {
				return err
			}
		case ExternalTable:
			tt, err := readTableType(r)
			if err != nil {
				return err
			}
			imp.Table = tt
		case ExternalMemory:
			lim, err := readLimits(r)
			if err != nil {
				return err
			}
			imp.Memory = &lim
		case ExternalGlobal:
			gt, err := readGlobalType(r)
			if err != nil {
				return err
			}
			imp.Global = gt
		}
		m.Imports = append(m.Imports, imp)
	}
	return nil
}

func readLimits(r *reader) (Limits, error) {
	flag, err := r.readByte()
	if err != nil {
		return Limits{}, err
	}
	switch flag {
	case 0x00:
		min, err := r.readU32()
		if err != nil {
			return Limits{}, err
		}
		return Limits{Flag: flag, Min: min, Max: defaultMaxPages}, nil
	case 0x01:
		min, err := r.readU32()
		if err != nil {
			return Limits{}, err
		}
		max, err := r.readU32()
		if err != nil {
			return Limits{}, err
		}
		return Limits{Flag: flag, Min: min, Max: max}, nil
	default:
		return Limits{}, fmt.Errorf("unknown limit flag 0x%02x", flag)
	}
}

func readTableType(r *reader) (*TableType, error) {
	b, err := r.readByte()
	if err != nil {
		return nil, err
	}
	elem, err := refType(b)
	if err != nil {
		return nil, err
	}
	lim, err := readLimits(r)
	if err != nil {
		return nil, err
	}
	return &TableType{Elem: elem, Limits: lim}, nil
}

func readGlobalType(r *reader) (*GlobalType, error) {
	b, err := r.readByte()
	if err != nil {
		return nil, err
	}
	vt, err := valueType(b)
	if err != nil {
		return nil, err
	}
	mut, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if mut > 1 {
		return nil, fmt.Errorf("unknown mutability flag 0x%02x", mut)
	}
	return &GlobalType{Type: vt, Mutable: mut == 1}, nil
}

func decodeFuncs(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		m.Funcs = append(m.Funcs, idx)
	}
	return nil
}

func decodeTables(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		tt, err := readTableType(r)
		if err != nil {
			return err
		}
		m.Tables = append(m.Tables, *tt)
	}
	return nil
}

func decodeMemories(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		lim, err := readLimits(r)
		if err != nil {
			return err
		}
		m.Memories = append(m.Memories, lim)
	}
	return nil
}

func decodeGlobals(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		gt, err := readGlobalType(r)
		if err != nil {
			return err
		}
		init, err := readConstExpr(r)
		if err != nil {
			return err
		}
		m.Globals = append(m.Globals, Global{Type: *gt, Init: init})
	}
	return nil
}

// readConstExpr scans a constant expression up to and including its end
// opcode and returns the raw bytes. Only opcodes valid in constant
// position are accepted.
func readConstExpr(r *reader) ([]byte, error) {
	start := r.off
	for {
		op, err := r.readByte()
		if err != nil {
			return nil, err
		}
		switch op {
		case 0x0b: // end
			return r.buf[start:r.off], nil
		case 0x41: // i32.const
			if _, err := r.readI32(); err != nil {
				return nil, err
			}
		case 0x42: // i64.const
			if _, err := r.readI64(); err != nil {
				return nil, err
			}
		case 0x43: // f32.const
			if _, err := r.readBytes(4); err != nil {
				return nil, err
			}
		case 0x44: // f64.const
			if _, err := r.readBytes(8); err != nil {
				return nil, err
			}
		case 0x23: // global.get
			if _, err := r.readU32(); err != nil {
				return nil, err
			}
		case 0xd0: // ref.null
			if _, err := r.readByte(); err != nil {
				return nil, err
			}
		case 0xd2: // ref.func
			if _, err := r.readU32(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("opcode 0x%02x not allowed in constant expression", op)
		}
	}
}

func decodeExports(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		var exp Export
		if exp.Name, err = r.readName(); err != nil {
			return err
		}
		tag, err := r.readByte()
		if err != nil {
			return err
		}
		if exp.Kind, err = externalKind(tag); err != nil {
			return err
		}
		if exp.Index, err = r.readU32(); err != nil {
			return err
		}
		m.Exports = append(m.Exports, exp)
	}
	return nil
}

func decodeStart(r *reader, m *Module) error {
	idx, err := r.readU32()
	if err != nil {
		return err
	}
	m.Start = &idx
	return nil
}

func decodeElements(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		seg := ElementSegment{}
		if seg.Flags, err = r.readU32(); err != nil {
			return err
		}
		if seg.Flags > 7 {
			return fmt.Errorf("unknown element segment flags %d", seg.Flags)
		}

		// Active segments with an explicit table index.
		if seg.Flags == 2 || seg.Flags == 6 {
			if seg.TableIndex, err = r.readU32(); err != nil {
				return err
			}
		}
		// Active segments carry an offset expression.
		if seg.Flags&0x01 == 0 {
			if seg.Offset, err = readConstExpr(r); err != nil {
				return err
			}
		}
		// Variants 1-3 carry an element kind, 5-7 a reference type.
		if seg.Flags&0x03 != 0 {
			b, err := r.readByte()
			if err != nil {
				return err
			}
			if seg.Flags&0x04 == 0 {
				if b != 0x00 {
					return fmt.Errorf("unknown element kind 0x%02x", b)
				}
				seg.ElemKind = b
			} else {
				if seg.RefType, err = refType(b); err != nil {
					return err
				}
			}
		}

		n, err := r.readU32()
		if err != nil {
			return err
		}
		if seg.Flags&0x04 == 0 {
			// Vector of function indices.
			for j := uint32(0); j < n; j++ {
				idx, err := r.readU32()
				if err != nil {
					return err
				}
				seg.FuncIndices = append(seg.FuncIndices, idx)
			}
		} else {
			// Vector of constant expressions.
			for j := uint32(0); j < n; j++ {
				expr, err := readConstExpr(r)
				if err != nil {
					return err
				}
				seg.InitExprs = append(seg.InitExprs, expr)
			}
		}
		m.Elements = append(m.Elements, seg)
	}
	return nil
}

func decodeCode(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		size, err := r.readU32()
		if err != nil {
			return err
		}
		body, err := r.readBytes(size)
		if err != nil {
			return err
		}
		br := &reader{buf: body}
		localCount, err := br.readU32()
		if err != nil {
			return err
		}
		fb := FuncBody{}
		for j := uint32(0); j < localCount; j++ {
			n, err := br.readU32()
			if err != nil {
				return err
			}
			b, err := br.readByte()
			if err != nil {
				return err
			}
			vt, err := valueType(b)
			if err != nil {
				return err
			}
			fb.Locals = append(fb.Locals, LocalEntry{Count: n, Type: vt})
		}
		fb.Expr = body[br.off:]
		if len(fb.Expr) == 0 || fb.Expr[len(fb.Expr)-1] != 0x0b {
			return fmt.Errorf("code body %d not terminated by end opcode", i)
		}
		m.Code = append(m.Code, fb)
	}
	return nil
}

func decodeData(r *reader, m *Module) error {
	count, err := r.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		seg := DataSegment{}
		if seg.Flags, err = r.readU32(); err != nil {
			return err
		}
		switch seg.Flags {
		case 0:
			if seg.Offset, err = readConstExpr(r); err != nil {
				return err
			}
		case 1:
			// Passive; nothing before the byte vector.
		case 2:
			if seg.MemIndex, err = r.readU32(); err != nil {
				return err
			}
			if seg.Offset, err = readConstExpr(r); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown data segment flags %d", seg.Flags)
		}
		n, err := r.readU32()
		if err != nil {
			return err
		}
		if seg.Init, err = r.readBytes(n); err != nil {
			return err
		}
		m.Data = append(m.Data, seg)
	}
	return nil
}

func decodeDataCount(r *reader, m *Module) error {
	n, err := r.readU32()
	if err != nil {
		return err
	}
	m.DataCount = &n
	return nil
}
