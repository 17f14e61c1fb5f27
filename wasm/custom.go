package wasm

import (
	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/internal/binary"
)

// Custom is a decoded custom section. Data borrows from the section payload.
type Custom struct {
	Name string
	Data []byte
}

// DecodeCustom splits a custom section payload into its name and data.
func DecodeCustom(payload []byte, base int) (Custom, error) {
	r := binary.NewReader(payload, base)
	name, err := r.ReadName()
	if err != nil {
		return Custom{}, errors.Malformed(errors.PhaseParse, "custom", base, err)
	}
	return Custom{Name: name, Data: r.ReadRemaining()}, nil
}

// EncodeCustom encodes a custom section payload.
func EncodeCustom(name string, data []byte) []byte {
	w := binary.NewWriter(len(name) + len(data) + 5)
	w.WriteName(name)
	w.WriteBytes(data)
	return w.Bytes()
}

// CustomSections returns every custom section of data whose name satisfies
// match, in file order.
func CustomSections(data []byte, match func(name string) bool) ([]Custom, error) {
	var out []Custom
	for sec, err := range Sections(data) {
		if err != nil {
			return nil, err
		}
		if sec.ID != SectionCustom {
			continue
		}
		c, err := DecodeCustom(sec.Payload(data), sec.PayloadStart)
		if err != nil {
			return nil, err
		}
		if match(c.Name) {
			out = append(out, c)
		}
	}
	return out, nil
}
