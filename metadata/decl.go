package metadata

import (
	"fmt"

	"github.com/wippyai/wasm-componentize/internal/binary"
)

// Declaration kinds inside component and instance types.
const (
	declCoreType byte = 0x00
	declType     byte = 0x01
	declAlias    byte = 0x02
	declImport   byte = 0x03
	declExport   byte = 0x04
)

// Alias targets.
const (
	aliasExport     byte = 0x00
	aliasCoreExport byte = 0x01
	aliasOuter      byte = 0x02
)

type externDesc struct {
	kind        byte
	index       uint32
	subResource bool
}

type alias struct {
	sort     byte
	coreSort byte
	target   byte
	index    uint32 // instance index, or outer count for outer aliases
	name     string
	outerIdx uint32
}

// encode writes the alias declaration body (without the decl kind byte).
func (a alias) encode(w *binary.Writer) {
	w.Byte(a.sort)
	if a.sort == sortCore {
		w.Byte(a.coreSort)
	}
	w.Byte(a.target)
	w.WriteU32(a.index)
	switch a.target {
	case aliasExport, aliasCoreExport:
		w.WriteName(a.name)
	case aliasOuter:
		w.WriteU32(a.outerIdx)
	}
}

// decl is one declaration of a component or instance type. raw holds the
// declaration bytes, kind byte included, and is what gets re-encoded.
type decl struct {
	kind   byte
	raw    []byte
	name   string
	extern externDesc
	alias  alias
	nested *compType
}

// sort returns the component index space the declaration adds an entry to.
func (d *decl) sort() (byte, bool) {
	switch d.kind {
	case declType:
		return sortType, true
	case declAlias:
		if d.alias.sort == sortCore {
			return 0, false
		}
		return d.alias.sort, true
	case declImport, declExport:
		if d.extern.kind == sortCore {
			return 0, false
		}
		return d.extern.kind, true
	default:
		return 0, false
	}
}

// compType is a parsed component (0x41) or instance (0x42) type.
type compType struct {
	form  byte
	decls []*decl
}

func parseCompType(r *binary.Reader) (*compType, error) {
	form, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if form != formComponent && form != formInstance {
		return nil, fmt.Errorf("type form %#x is not a component or instance type", form)
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int(n) > r.Len() {
		return nil, fmt.Errorf("declaration count %d exceeds remaining %d bytes", n, r.Len())
	}
	ct := &compType{form: form, decls: make([]*decl, 0, n)}
	for i := uint32(0); i < n; i++ {
		d, err := parseDecl(r, form)
		if err != nil {
			return nil, fmt.Errorf("declaration %d: %w", i, err)
		}
		ct.decls = append(ct.decls, d)
	}
	return ct, nil
}

func parseDecl(r *binary.Reader, form byte) (*decl, error) {
	mark := r.Mark()
	kind, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	d := &decl{kind: kind}
	switch kind {
	case declCoreType:
		err = skipCoreDefType(r)
	case declType:
		var b byte
		b, err = r.PeekByte()
		if err != nil {
			break
		}
		if b == formComponent || b == formInstance {
			d.nested, err = parseCompType(r)
		} else {
			err = skipDefType(r)
		}
	case declAlias:
		d.alias, err = parseAlias(r)
	case declImport:
		if form != formComponent {
			return nil, fmt.Errorf("import declaration inside instance type")
		}
		fallthrough
	case declExport:
		d.name, err = skipExternName(r)
		if err == nil {
			d.extern, err = readExternDesc(r)
		}
	default:
		return nil, fmt.Errorf("unknown declaration kind %#x", kind)
	}
	if err != nil {
		return nil, err
	}
	d.raw = r.Since(mark)
	return d, nil
}

func parseAlias(r *binary.Reader) (alias, error) {
	var a alias
	var err error
	a.sort, a.coreSort, err = readSort(r)
	if err != nil {
		return a, err
	}
	a.target, err = r.ReadByte()
	if err != nil {
		return a, err
	}
	switch a.target {
	case aliasExport, aliasCoreExport:
		if a.index, err = r.ReadU32(); err != nil {
			return a, err
		}
		a.name, err = r.ReadName()
	case aliasOuter:
		if a.index, err = r.ReadU32(); err != nil {
			return a, err
		}
		a.outerIdx, err = r.ReadU32()
	default:
		err = fmt.Errorf("unknown alias target %#x", a.target)
	}
	return a, err
}

func (ct *compType) encode() []byte {
	size := 6
	for _, d := range ct.decls {
		size += len(d.raw)
	}
	w := binary.NewWriter(size)
	w.Byte(ct.form)
	w.WriteU32(uint32(len(ct.decls)))
	for _, d := range ct.decls {
		w.WriteBytes(d.raw)
	}
	return w.Bytes()
}

// typeDecl returns the declaration defining local type index idx.
func (ct *compType) typeDecl(idx uint32) *decl {
	var n uint32
	for _, d := range ct.decls {
		if s, ok := d.sort(); ok && s == sortType {
			if n == idx {
				return d
			}
			n++
		}
	}
	return nil
}

// instanceIndices maps each instance-producing declaration position to its
// local instance index.
func (ct *compType) instanceIndices() map[int]uint32 {
	out := make(map[int]uint32)
	var n uint32
	for i, d := range ct.decls {
		if s, ok := d.sort(); ok && s == sortInstance {
			out[i] = n
			n++
		}
	}
	return out
}

func encodeAliasDecl(a alias) []byte {
	w := binary.NewWriter(8 + len(a.name))
	w.Byte(declAlias)
	a.encode(w)
	return w.Bytes()
}
