package wasm

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/internal/binary"
)

// ProducersSectionName is the custom section carrying toolchain metadata.
const ProducersSectionName = "producers"

// Well-known producers field names.
const (
	FieldLanguage    = "language"
	FieldProcessedBy = "processed-by"
	FieldSDK         = "sdk"
)

// ProducerValue is one (name, version) pair within a producers field.
type ProducerValue struct {
	Name    string
	Version string
}

// ProducerField is a named, ordered list of producer values.
type ProducerField struct {
	Name   string
	Values []ProducerValue
}

// Producers is the decoded producers section, with field and value order
// kept as found.
type Producers struct {
	Fields []ProducerField
}

// DecodeProducers decodes the data of a producers custom section (the bytes
// following the section name).
func DecodeProducers(data []byte, base int) (*Producers, error) {
	r := binary.NewReader(data, base)
	fail := func(err error) error {
		return errors.Malformed(errors.PhaseParse, ProducersSectionName, r.Position(), err)
	}

	count, err := r.ReadU32()
	if err != nil {
		return nil, fail(err)
	}
	if int(count) > r.Len() {
		return nil, fail(fmt.Errorf("field count %d exceeds section size", count))
	}
	p := &Producers{Fields: make([]ProducerField, 0, count)}
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return nil, fail(err)
		}
		n, err := r.ReadU32()
		if err != nil {
			return nil, fail(err)
		}
		if int(n) > r.Len() {
			return nil, fail(fmt.Errorf("field %q: value count %d exceeds section size", name, n))
		}
		field := ProducerField{Name: name, Values: make([]ProducerValue, 0, n)}
		for j := uint32(0); j < n; j++ {
			vname, err := r.ReadName()
			if err != nil {
				return nil, fail(err)
			}
			version, err := r.ReadName()
			if err != nil {
				return nil, fail(err)
			}
			field.Values = append(field.Values, ProducerValue{Name: vname, Version: version})
		}
		p.Fields = append(p.Fields, field)
	}
	if r.Len() != 0 {
		return nil, fail(fmt.Errorf("%d trailing bytes", r.Len()))
	}
	return p, nil
}

// EncodeProducers encodes p as producers section data (without the section
// name).
func EncodeProducers(p *Producers) []byte {
	w := binary.NewWriter(64)
	if p == nil {
		w.WriteU32(0)
		return w.Bytes()
	}
	w.WriteU32(uint32(len(p.Fields)))
	for _, f := range p.Fields {
		w.WriteName(f.Name)
		w.WriteU32(uint32(len(f.Values)))
		for _, v := range f.Values {
			w.WriteName(v.Name)
			w.WriteName(v.Version)
		}
	}
	return w.Bytes()
}

// Field returns the named field, or nil.
func (p *Producers) Field(name string) *ProducerField {
	if p == nil {
		return nil
	}
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			return &p.Fields[i]
		}
	}
	return nil
}

// Find returns the first value in field whose name starts with prefix.
func (p *Producers) Find(field, prefix string) (ProducerValue, bool) {
	f := p.Field(field)
	if f == nil {
		return ProducerValue{}, false
	}
	for _, v := range f.Values {
		if strings.HasPrefix(v.Name, prefix) {
			return v, true
		}
	}
	return ProducerValue{}, false
}

// Add records name/version under field, replacing an existing entry with
// the same name.
func (p *Producers) Add(field, name, version string) {
	f := p.Field(field)
	if f == nil {
		p.Fields = append(p.Fields, ProducerField{Name: field})
		f = &p.Fields[len(p.Fields)-1]
	}
	for i := range f.Values {
		if f.Values[i].Name == name {
			f.Values[i].Version = version
			return
		}
	}
	f.Values = append(f.Values, ProducerValue{Name: name, Version: version})
}
