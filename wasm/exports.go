package wasm

import (
	"fmt"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/internal/binary"
)

// Export is one entry of a core module export section.
type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// DecodeExports decodes an export section payload. base is the absolute
// offset of the payload.
func DecodeExports(payload []byte, base int) ([]Export, error) {
	r := binary.NewReader(payload, base)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.Malformed(errors.PhaseParse, "export", r.Position(), err)
	}
	if int(count) > r.Len() {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
			Section("export").
			Offset(r.Position()).
			Detail("export count %d exceeds section size", count).
			Build()
	}

	exports := make([]Export, 0, count)
	for i := uint32(0); i < count; i++ {
		entry := r.Position()
		name, err := r.ReadName()
		if err != nil {
			return nil, errors.Malformed(errors.PhaseParse, "export", entry, fmt.Errorf("export %d name: %w", i, err))
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, errors.Malformed(errors.PhaseParse, "export", entry, fmt.Errorf("export %q kind: %w", name, err))
		}
		if kind > KindTag {
			return nil, errors.Malformed(errors.PhaseParse, "export", entry, fmt.Errorf("export %q: unknown kind %#x", name, kind))
		}
		idx, err := r.ReadU32()
		if err != nil {
			return nil, errors.Malformed(errors.PhaseParse, "export", entry, fmt.Errorf("export %q index: %w", name, err))
		}
		exports = append(exports, Export{Name: name, Kind: kind, Index: idx})
	}
	if r.Len() != 0 {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
			Section("export").
			Offset(r.Position()).
			Detail("%d trailing bytes after %d exports", r.Len(), count).
			Build()
	}
	return exports, nil
}

// ExportNames returns the export names of a module in declaration order,
// concatenated across export sections.
func ExportNames(module []byte) ([]string, error) {
	var names []string
	for sec, err := range Sections(module) {
		if err != nil {
			return nil, err
		}
		if sec.ID != SectionExport {
			continue
		}
		exports, err := DecodeExports(sec.Payload(module), sec.PayloadStart)
		if err != nil {
			return nil, err
		}
		for _, e := range exports {
			names = append(names, e.Name)
		}
	}
	return names, nil
}
