package metadata

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/internal/binary"
	"github.com/wippyai/wasm-componentize/wasm"
)

// SectionPrefix starts the name of every custom section carrying world
// metadata in a core module or adapter.
const SectionPrefix = "component-type"

// EncodingSectionName is the custom section inside the blob that records
// the string encoding.
const EncodingSectionName = "wit-component-encoding"

// encodingVersion is written when a blob carries no encoding marker.
const encodingVersion byte = 0x04

// IsMetadataSection reports whether a custom section name carries world
// metadata.
func IsMetadataSection(name string) bool {
	return strings.HasPrefix(name, SectionPrefix)
}

// StringEncoding is the canonical ABI string encoding recorded in the blob.
type StringEncoding byte

const (
	UTF8         StringEncoding = 0x00
	UTF16        StringEncoding = 0x01
	CompactUTF16 StringEncoding = 0x02
)

func (e StringEncoding) String() string {
	switch e {
	case UTF8:
		return "utf8"
	case UTF16:
		return "utf16"
	case CompactUTF16:
		return "compact-utf16"
	default:
		return fmt.Sprintf("encoding(%#x)", byte(e))
	}
}

// part is one top-level section of the blob.
type part struct {
	sec   wasm.Section
	types []*typeDef // type sections only
	dirty bool
}

type typeDef struct {
	raw  []byte
	ct   *compType // component and instance types
	part int
}

// typeSlot is one entry of the blob's component type index space. Exported
// and aliased types refer to earlier slots or to nothing we can resolve.
type typeSlot struct {
	def     *typeDef
	aliasOf int
}

type topExport struct {
	name  string
	sort  byte
	index uint32
}

// Metadata is a decoded component-type blob. It borrows the buffer passed
// to Decode, which must stay unchanged while the Metadata is in use.
type Metadata struct {
	data      []byte
	parts     []part
	types     []typeSlot
	exports   []topExport
	producers *wasm.Producers

	// producersDirty is set when producers changed after Decode.
	producersDirty bool

	// Encoding is the string encoding recorded by the blob.
	Encoding StringEncoding
	// EncodingVersion is the version byte of the encoding marker, zero
	// when the blob has none.
	EncodingVersion byte
}

// Decode parses a component-type blob.
func Decode(blob []byte) (*Metadata, error) {
	m, err := decode(blob)
	if err != nil {
		return nil, errors.MetadataDecode(SectionPrefix, err)
	}
	return m, nil
}

func decode(blob []byte) (*Metadata, error) {
	h, err := wasm.ReadHeader(blob)
	if err != nil {
		return nil, err
	}
	if h.Encoding != wasm.EncodingComponent {
		return nil, fmt.Errorf("metadata is a %s, not a component", h.Encoding)
	}

	m := &Metadata{data: blob}
	for sec, err := range wasm.Sections(blob) {
		if err != nil {
			return nil, err
		}
		idx := len(m.parts)
		m.parts = append(m.parts, part{sec: sec})

		payload := sec.Payload(blob)
		r := binary.NewReader(payload, sec.PayloadStart)
		var perr error
		switch sec.ID {
		case wasm.ComponentSectionCustom:
			perr = m.decodeCustom(sec)
		case wasm.ComponentSectionType:
			perr = m.decodeTypes(r, idx)
		case wasm.ComponentSectionImport:
			perr = m.decodeImports(r)
		case wasm.ComponentSectionAlias:
			perr = m.decodeAliases(r)
		case wasm.ComponentSectionExport:
			perr = m.decodeExports(payload, sec.PayloadStart)
		}
		if perr != nil {
			return nil, errors.Malformed(errors.PhaseMetadata, wasm.SectionName(wasm.EncodingComponent, sec.ID), sec.Start, perr)
		}
	}
	return m, nil
}

func (m *Metadata) decodeCustom(sec wasm.Section) error {
	c, err := wasm.DecodeCustom(sec.Payload(m.data), sec.PayloadStart)
	if err != nil {
		return err
	}
	switch c.Name {
	case EncodingSectionName:
		if len(c.Data) != 2 {
			return fmt.Errorf("%s section is %d bytes, want 2", EncodingSectionName, len(c.Data))
		}
		enc := StringEncoding(c.Data[1])
		if enc > CompactUTF16 {
			return fmt.Errorf("unknown string encoding %#x", c.Data[1])
		}
		m.EncodingVersion = c.Data[0]
		m.Encoding = enc
	case wasm.ProducersSectionName:
		p, err := wasm.DecodeProducers(c.Data, sec.End-len(c.Data))
		if err != nil {
			return err
		}
		m.producers = p
	}
	return nil
}

func (m *Metadata) decodeTypes(r *binary.Reader, partIdx int) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	if int(n) > r.Len() {
		return fmt.Errorf("type count %d exceeds section size", n)
	}
	for i := uint32(0); i < n; i++ {
		mark := r.Mark()
		form, err := r.PeekByte()
		if err != nil {
			return err
		}
		def := &typeDef{part: partIdx}
		if form == formComponent || form == formInstance {
			def.ct, err = parseCompType(r)
		} else {
			err = skipDefType(r)
		}
		if err != nil {
			return fmt.Errorf("type %d: %w", len(m.types), err)
		}
		def.raw = r.Since(mark)
		m.parts[partIdx].types = append(m.parts[partIdx].types, def)
		m.types = append(m.types, typeSlot{def: def, aliasOf: -1})
	}
	if r.Len() != 0 {
		return fmt.Errorf("%d trailing bytes", r.Len())
	}
	return nil
}

func (m *Metadata) decodeImports(r *binary.Reader) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if _, err := skipExternName(r); err != nil {
			return err
		}
		d, err := readExternDesc(r)
		if err != nil {
			return err
		}
		if d.kind == sortType {
			m.types = append(m.types, typeSlot{aliasOf: -1})
		}
	}
	return nil
}

func (m *Metadata) decodeAliases(r *binary.Reader) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		a, err := parseAlias(r)
		if err != nil {
			return err
		}
		if a.sort == sortType {
			m.types = append(m.types, typeSlot{aliasOf: -1})
		}
	}
	return nil
}

// decodeExports reads the top-level export section. Exports may carry an
// optional type ascription; encoders that predate it omit the flag byte, so
// a payload that does not parse with ascriptions is retried without.
func (m *Metadata) decodeExports(payload []byte, base int) error {
	exports, err := readTopExports(binary.NewReader(payload, base), true)
	if err != nil {
		var legacyErr error
		exports, legacyErr = readTopExports(binary.NewReader(payload, base), false)
		if legacyErr != nil {
			return err
		}
	}
	for _, e := range exports {
		m.exports = append(m.exports, e)
		if e.sort == sortType {
			m.types = append(m.types, typeSlot{aliasOf: int(e.index)})
		}
	}
	return nil
}

func readTopExports(r *binary.Reader, ascription bool) ([]topExport, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	var out []topExport
	for i := uint32(0); i < n; i++ {
		name, err := skipExternName(r)
		if err != nil {
			return nil, err
		}
		sort, _, err := readSort(r)
		if err != nil {
			return nil, err
		}
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if ascription {
			if err := skipOptional(r, "export type", func(r *binary.Reader) error {
				_, err := readExternDesc(r)
				return err
			}); err != nil {
				return nil, err
			}
		}
		out = append(out, topExport{name: name, sort: sort, index: idx})
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %d exports", r.Len(), n)
	}
	return out, nil
}

// resolveType follows export aliases to the defining type section entry.
func (m *Metadata) resolveType(idx uint32) *typeDef {
	seen := 0
	i := int(idx)
	for i >= 0 && i < len(m.types) && seen <= len(m.types) {
		slot := m.types[i]
		if slot.def != nil {
			return slot.def
		}
		i = slot.aliasOf
		seen++
	}
	return nil
}

// Producers returns the producers section nested in the blob, or nil.
func (m *Metadata) Producers() *wasm.Producers {
	return m.producers
}

// AddProducer records name and version under a producers field. Encode
// writes the updated section in place of the original, or appends one.
func (m *Metadata) AddProducer(field, name, version string) {
	if m.producers == nil {
		m.producers = &wasm.Producers{}
	}
	m.producers.Add(field, name, version)
	m.producersDirty = true
}

// Encode re-encodes the blob with the string encoding forced to UTF-8.
// Sections that were not modified are copied byte for byte.
func (m *Metadata) Encode() []byte {
	version := m.EncodingVersion
	if version == 0 {
		version = encodingVersion
	}
	marker := []byte{version, byte(UTF8)}

	b := wasm.NewBuilder(m.data[:wasm.HeaderSize], len(m.data)+8)
	wroteMarker, wroteProducers := false, false
	for _, p := range m.parts {
		name := m.customName(p.sec)
		switch {
		case name == EncodingSectionName:
			b.Custom(EncodingSectionName, marker)
			wroteMarker = true
		case name == wasm.ProducersSectionName && m.producersDirty:
			b.Custom(wasm.ProducersSectionName, wasm.EncodeProducers(m.producers))
			wroteProducers = true
		case p.sec.ID == wasm.ComponentSectionType && p.dirty:
			b.Section(wasm.ComponentSectionType, encodeTypes(p.types))
		default:
			b.Raw(m.data, p.sec)
		}
	}
	if !wroteMarker {
		b.Custom(EncodingSectionName, marker)
	}
	if m.producersDirty && !wroteProducers {
		b.Custom(wasm.ProducersSectionName, wasm.EncodeProducers(m.producers))
	}
	return b.Bytes()
}

// customName returns the name of a custom section, or "" for other
// sections.
func (m *Metadata) customName(sec wasm.Section) string {
	name, ok, err := sec.CustomName(m.data)
	if err != nil || !ok {
		return ""
	}
	return name
}

func encodeTypes(defs []*typeDef) []byte {
	size := 5
	for _, d := range defs {
		size += len(d.raw)
	}
	w := binary.NewWriter(size)
	w.WriteU32(uint32(len(defs)))
	for _, d := range defs {
		w.WriteBytes(d.raw)
	}
	return w.Bytes()
}
