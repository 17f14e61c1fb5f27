package wasm

import (
	"fmt"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/internal/binary"
)

// Import is one entry of a core module import section. Desc holds the raw
// kind byte and type descriptor, which are carried through rewrites
// unchanged.
type Import struct {
	Module string
	Name   string
	Desc   []byte
}

// Kind returns the import kind byte.
func (imp Import) Kind() byte {
	if len(imp.Desc) == 0 {
		return 0xff
	}
	return imp.Desc[0]
}

// DecodeImports decodes an import section payload. base is the absolute
// offset of the payload, used for error positions. Desc slices borrow from
// payload.
func DecodeImports(payload []byte, base int) ([]Import, error) {
	r := binary.NewReader(payload, base)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.Malformed(errors.PhaseParse, "import", r.Position(), err)
	}
	if int(count) > r.Len() {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
			Section("import").
			Offset(r.Position()).
			Detail("import count %d exceeds section size", count).
			Build()
	}

	imports := make([]Import, 0, count)
	for i := uint32(0); i < count; i++ {
		entry := r.Position()
		module, err := r.ReadName()
		if err != nil {
			return nil, errors.Malformed(errors.PhaseParse, "import", entry, fmt.Errorf("import %d module: %w", i, err))
		}
		name, err := r.ReadName()
		if err != nil {
			return nil, errors.Malformed(errors.PhaseParse, "import", entry, fmt.Errorf("import %d name: %w", i, err))
		}
		mark := r.Mark()
		if err := r.SkipImportDesc(); err != nil {
			return nil, errors.Malformed(errors.PhaseParse, "import", entry, fmt.Errorf("import %s.%s: %w", module, name, err))
		}
		imports = append(imports, Import{Module: module, Name: name, Desc: r.Since(mark)})
	}
	if r.Len() != 0 {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
			Section("import").
			Offset(r.Position()).
			Detail("%d trailing bytes after %d imports", r.Len(), count).
			Build()
	}
	return imports, nil
}

// EncodeImports encodes an import section payload.
func EncodeImports(imports []Import) []byte {
	size := 5
	for _, imp := range imports {
		size += 10 + len(imp.Module) + len(imp.Name) + len(imp.Desc)
	}
	w := binary.NewWriter(size)
	w.WriteU32(uint32(len(imports)))
	for _, imp := range imports {
		w.WriteName(imp.Module)
		w.WriteName(imp.Name)
		w.WriteBytes(imp.Desc)
	}
	return w.Bytes()
}
