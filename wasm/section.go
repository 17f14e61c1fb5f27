package wasm

import (
	"iter"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/internal/binary"
)

// Section is one framed section located by byte offsets into the binary it
// was read from. The offsets stay valid for as long as the caller keeps that
// buffer unchanged.
type Section struct {
	ID           byte
	Start        int // offset of the id byte
	PayloadStart int // offset of the first payload byte
	End          int // offset one past the last payload byte
}

// Size returns the payload length.
func (s Section) Size() int {
	return s.End - s.PayloadStart
}

// Payload returns the section payload as a subslice of data.
func (s Section) Payload(data []byte) []byte {
	return data[s.PayloadStart:s.End]
}

// Bytes returns the whole framed section (id, size and payload) as a
// subslice of data.
func (s Section) Bytes(data []byte) []byte {
	return data[s.Start:s.End]
}

// Sections iterates the sections of a module or component in file order.
// Iteration is lazy and every range call re-reads the binary from the
// header, so the sequence can be consumed more than once. A malformed
// header or section yields a single error and ends the sequence.
func Sections(data []byte) iter.Seq2[Section, error] {
	return func(yield func(Section, error) bool) {
		h, err := ReadHeader(data)
		if err != nil {
			yield(Section{}, err)
			return
		}

		r := binary.NewReader(data[HeaderSize:], HeaderSize)
		for r.Len() > 0 {
			start := r.Position()
			id, _ := r.ReadByte()
			if id > MaxSectionID(h.Encoding) {
				yield(Section{}, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
					Section(SectionName(h.Encoding, id)).
					Offset(start).
					Detail("unknown %s section id %d", h.Encoding, id).
					Value(id).
					Build())
				return
			}
			name := SectionName(h.Encoding, id)

			size, err := r.ReadU32()
			if err != nil {
				yield(Section{}, errors.Malformed(errors.PhaseParse, name, start, err))
				return
			}
			payloadStart := r.Position()
			if err := r.Skip(int(size)); err != nil {
				yield(Section{}, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
					Section(name).
					Offset(start).
					Detail("section declares %d bytes, only %d remain", size, len(data)-payloadStart).
					Cause(err).
					Build())
				return
			}

			sec := Section{ID: id, Start: start, PayloadStart: payloadStart, End: r.Position()}
			if !yield(sec, nil) {
				return
			}
		}
	}
}

// ParseSections collects every section of data.
func ParseSections(data []byte) ([]Section, error) {
	var out []Section
	for sec, err := range Sections(data) {
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, nil
}

// CustomName returns the name of a custom section without decoding its
// data. ok is false for non-custom sections.
func (s Section) CustomName(data []byte) (name string, ok bool, err error) {
	if s.ID != SectionCustom {
		return "", false, nil
	}
	r := binary.NewReader(s.Payload(data), s.PayloadStart)
	name, err = r.ReadName()
	if err != nil {
		return "", false, errors.Malformed(errors.PhaseParse, "custom", s.Start, err)
	}
	return name, true, nil
}
