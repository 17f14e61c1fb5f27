package wasm

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/wasm-componentize/errors"
)

// Encoding identifies the binary format named by the header.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingModule
	EncodingComponent
)

func (e Encoding) String() string {
	switch e {
	case EncodingModule:
		return "module"
	case EncodingComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Header is the decoded 8-byte preamble of a binary.
type Header struct {
	Version  uint16
	Layer    uint16
	Encoding Encoding
}

// ReadHeader validates the magic number and classifies the binary by its
// version and layer fields.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
			Section("header").
			Offset(0).
			Detail("binary is %d bytes, shorter than the %d-byte header", len(data), HeaderSize).
			Build()
	}
	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return Header{}, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
			Section("header").
			Offset(0).
			Detail("invalid wasm magic number").
			Build()
	}

	h := Header{
		Version: binary.LittleEndian.Uint16(data[4:6]),
		Layer:   binary.LittleEndian.Uint16(data[6:8]),
	}
	switch {
	case h.Layer == ModuleLayer && h.Version == ModuleVersion:
		h.Encoding = EncodingModule
	case h.Layer == ComponentLayer:
		h.Encoding = EncodingComponent
	default:
		return h, errors.New(errors.PhaseParse, errors.KindMalformedBinary).
			Section("header").
			Offset(4).
			Detail("unsupported version %#x layer %#x", h.Version, h.Layer).
			Value(fmt.Sprintf("%d/%d", h.Version, h.Layer)).
			Build()
	}
	return h, nil
}

// IsComponent reports whether data starts with a component header. It is
// the cheap leading-bytes check used before any section is parsed.
func IsComponent(data []byte) bool {
	h, err := ReadHeader(data)
	return err == nil && h.Encoding == EncodingComponent
}

// ComponentHeader returns the preamble written at the start of component
// binaries.
func ComponentHeader() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, byte(ComponentVersion), 0x00, byte(ComponentLayer), 0x00}
}

// ModuleHeader returns the preamble written at the start of core modules.
func ModuleHeader() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, byte(ModuleVersion), 0x00, 0x00, 0x00}
}
