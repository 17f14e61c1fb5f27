package binary

import "fmt"

// Core type encoding bytes shared by module import sections and the core
// types nested in component type declarations.
const (
	RefNull byte = 0x63
	Ref     byte = 0x64

	LimitsHasMax   byte = 0x01
	LimitsShared   byte = 0x02
	Limits64       byte = 0x04
	LimitsPageSize byte = 0x08
)

// Import descriptor kinds.
const (
	descFunc   byte = 0x00
	descTable  byte = 0x01
	descMemory byte = 0x02
	descGlobal byte = 0x03
	descTag    byte = 0x04
)

// SkipImportDesc consumes a core import or export descriptor: the kind
// byte followed by its type.
func (r *Reader) SkipImportDesc() error {
	kind, err := r.ReadByte()
	if err != nil {
		return eofToUnexpected(err)
	}
	switch kind {
	case descFunc:
		_, err = r.ReadU32()
		return err
	case descTable:
		if err := r.SkipRefType(); err != nil {
			return err
		}
		return r.SkipLimits()
	case descMemory:
		return r.SkipLimits()
	case descGlobal:
		if err := r.SkipValType(); err != nil {
			return err
		}
		mut, err := r.ReadByte()
		if err != nil {
			return eofToUnexpected(err)
		}
		if mut > 1 {
			return fmt.Errorf("invalid global mutability %#x", mut)
		}
		return nil
	case descTag:
		if _, err := r.ReadByte(); err != nil {
			return eofToUnexpected(err)
		}
		_, err = r.ReadU32()
		return err
	default:
		return fmt.Errorf("unknown import kind %#x", kind)
	}
}

// SkipValType consumes a core value type.
func (r *Reader) SkipValType() error {
	b, err := r.ReadByte()
	if err != nil {
		return eofToUnexpected(err)
	}
	if b == RefNull || b == Ref {
		_, err = r.ReadS33()
	}
	return err
}

// SkipRefType consumes a core reference type.
func (r *Reader) SkipRefType() error {
	b, err := r.ReadByte()
	if err != nil {
		return eofToUnexpected(err)
	}
	switch {
	case b == RefNull || b == Ref:
		_, err = r.ReadS33()
		return err
	case b >= 0x69 && b <= 0x74:
		// abbreviated nullable abstract heap types: funcref, externref, ...
		return nil
	default:
		return fmt.Errorf("invalid reference type %#x", b)
	}
}

// SkipLimits consumes memory or table limits, including the 64-bit and
// custom page size variants.
func (r *Reader) SkipLimits() error {
	flags, err := r.ReadByte()
	if err != nil {
		return eofToUnexpected(err)
	}
	if flags&^(LimitsHasMax|LimitsShared|Limits64|LimitsPageSize) != 0 {
		return fmt.Errorf("invalid limits flags %#x", flags)
	}
	if err := r.SkipLEB128(); err != nil {
		return err
	}
	if flags&LimitsHasMax != 0 {
		if err := r.SkipLEB128(); err != nil {
			return err
		}
	}
	if flags&LimitsPageSize != 0 {
		if _, err := r.ReadU32(); err != nil {
			return err
		}
	}
	return nil
}
