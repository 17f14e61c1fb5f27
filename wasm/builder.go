package wasm

import (
	"github.com/wippyai/wasm-componentize/internal/binary"
)

// Builder assembles a binary from a header, sections copied verbatim from a
// source buffer and freshly encoded sections.
type Builder struct {
	w *binary.Writer
}

// NewBuilder starts a binary with the given 8-byte header.
func NewBuilder(header []byte, sizeHint int) *Builder {
	w := binary.NewWriter(sizeHint)
	w.WriteBytes(header[:HeaderSize])
	return &Builder{w: w}
}

// Raw copies sec from src, framing included.
func (b *Builder) Raw(src []byte, sec Section) *Builder {
	b.w.WriteBytes(sec.Bytes(src))
	return b
}

// Section appends a section with a newly encoded payload.
func (b *Builder) Section(id byte, payload []byte) *Builder {
	b.w.WriteSection(id, payload)
	return b
}

// Custom appends a custom section.
func (b *Builder) Custom(name string, data []byte) *Builder {
	return b.Section(SectionCustom, EncodeCustom(name, data))
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.w.Len()
}

// Bytes returns the assembled binary.
func (b *Builder) Bytes() []byte {
	return b.w.Bytes()
}
