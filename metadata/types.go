package metadata

import (
	"fmt"

	"github.com/wippyai/wasm-componentize/internal/binary"
)

// Component type form bytes.
const (
	formFunc      byte = 0x40
	formFuncAsync byte = 0x43
	formComponent byte = 0x41
	formInstance  byte = 0x42
	formResource  byte = 0x3f
	formResAsync  byte = 0x3e
)

// Defined value type constructors.
const (
	valRecord    byte = 0x72
	valVariant   byte = 0x71
	valList      byte = 0x70
	valTuple     byte = 0x6f
	valFlags     byte = 0x6e
	valEnum      byte = 0x6d
	valOption    byte = 0x6b
	valResult    byte = 0x6a
	valOwn       byte = 0x69
	valBorrow    byte = 0x68
	valFixedList byte = 0x67
	valStream    byte = 0x66
	valFuture    byte = 0x65
)

// Sort and extern kind bytes. Extern kinds 0x01 to 0x05 share the sort
// numbering.
const (
	sortCore      byte = 0x00
	sortFunc      byte = 0x01
	sortValue     byte = 0x02
	sortType      byte = 0x03
	sortComponent byte = 0x04
	sortInstance  byte = 0x05
)

const coreSortModule byte = 0x11

func isPrimitive(b byte) bool {
	return (b >= 0x73 && b <= 0x7f) || b == 0x64
}

// skipValType consumes a component value type: a primitive or a type index,
// both encoded as s33.
func skipValType(r *binary.Reader) error {
	_, err := r.ReadS33()
	return err
}

func skipOptional(r *binary.Reader, what string, skip func(*binary.Reader) error) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch b {
	case 0x00:
		return nil
	case 0x01:
		return skip(r)
	default:
		return fmt.Errorf("invalid optional %s flag %#x", what, b)
	}
}

func skipVec(r *binary.Reader, skip func(*binary.Reader) error) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	if int(n) > r.Len() {
		return fmt.Errorf("vector length %d exceeds remaining %d bytes", n, r.Len())
	}
	for i := uint32(0); i < n; i++ {
		if err := skip(r); err != nil {
			return err
		}
	}
	return nil
}

func skipName(r *binary.Reader) error {
	_, err := r.ReadName()
	return err
}

func skipLabeledValType(r *binary.Reader) error {
	if err := skipName(r); err != nil {
		return err
	}
	return skipValType(r)
}

// skipDefType consumes one entry of a component type section or the body
// of a type declaration.
func skipDefType(r *binary.Reader) error {
	form, err := r.PeekByte()
	if err != nil {
		return err
	}
	switch form {
	case formFunc, formFuncAsync:
		r.ReadByte()
		return skipFuncType(r)
	case formComponent, formInstance:
		_, err := parseCompType(r)
		return err
	case formResource, formResAsync:
		r.ReadByte()
		rep, err := r.ReadByte()
		if err != nil {
			return err
		}
		if rep != 0x7f {
			return fmt.Errorf("resource representation %#x is not i32", rep)
		}
		if err := skipOptional(r, "destructor", func(r *binary.Reader) error {
			_, err := r.ReadU32()
			return err
		}); err != nil {
			return err
		}
		if form == formResAsync {
			return skipOptional(r, "callback", func(r *binary.Reader) error {
				_, err := r.ReadU32()
				return err
			})
		}
		return nil
	default:
		return skipDefValType(r)
	}
}

func skipDefValType(r *binary.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if isPrimitive(b) {
		return nil
	}
	switch b {
	case valRecord:
		return skipVec(r, skipLabeledValType)
	case valVariant:
		return skipVec(r, func(r *binary.Reader) error {
			if err := skipName(r); err != nil {
				return err
			}
			if err := skipOptional(r, "case type", skipValType); err != nil {
				return err
			}
			return skipOptional(r, "refines", func(r *binary.Reader) error {
				_, err := r.ReadU32()
				return err
			})
		})
	case valList, valOption:
		return skipValType(r)
	case valFixedList:
		if err := skipValType(r); err != nil {
			return err
		}
		_, err := r.ReadU32()
		return err
	case valTuple:
		return skipVec(r, skipValType)
	case valFlags, valEnum:
		return skipVec(r, skipName)
	case valResult:
		if err := skipOptional(r, "ok type", skipValType); err != nil {
			return err
		}
		return skipOptional(r, "error type", skipValType)
	case valOwn, valBorrow:
		_, err := r.ReadU32()
		return err
	case valStream, valFuture:
		return skipOptional(r, "payload type", skipValType)
	default:
		return fmt.Errorf("unknown defined value type %#x", b)
	}
}

// skipFuncType consumes a function type after its form byte.
func skipFuncType(r *binary.Reader) error {
	if err := skipVec(r, skipLabeledValType); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch b {
	case 0x00:
		return skipValType(r)
	case 0x01:
		// named results; an empty list is the current encoding of "no result"
		return skipVec(r, skipLabeledValType)
	default:
		return fmt.Errorf("invalid result list %#x", b)
	}
}

// skipExternName consumes an import or export name.
func skipExternName(r *binary.Reader) (string, error) {
	b, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	if b > 0x01 {
		return "", fmt.Errorf("invalid extern name kind %#x", b)
	}
	return r.ReadName()
}

// readExternDesc consumes an extern descriptor, returning its kind and the
// index it refers to when it has one.
func readExternDesc(r *binary.Reader) (externDesc, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return externDesc{}, err
	}
	d := externDesc{kind: kind}
	switch kind {
	case sortCore:
		b, err := r.ReadByte()
		if err != nil {
			return d, err
		}
		if b != coreSortModule {
			return d, fmt.Errorf("invalid core extern kind %#x", b)
		}
		d.index, err = r.ReadU32()
		return d, err
	case sortFunc, sortComponent, sortInstance:
		d.index, err = r.ReadU32()
		return d, err
	case sortValue:
		bound, err := r.ReadByte()
		if err != nil {
			return d, err
		}
		switch bound {
		case 0x00:
			d.index, err = r.ReadU32()
			return d, err
		case 0x01:
			return d, skipValType(r)
		default:
			return d, fmt.Errorf("invalid value bound %#x", bound)
		}
	case sortType:
		bound, err := r.ReadByte()
		if err != nil {
			return d, err
		}
		switch bound {
		case 0x00:
			d.index, err = r.ReadU32()
			return d, err
		case 0x01:
			d.subResource = true
			return d, nil
		default:
			return d, fmt.Errorf("invalid type bound %#x", bound)
		}
	default:
		return d, fmt.Errorf("unknown extern kind %#x", kind)
	}
}

// readSort consumes a sort, returning the component-level sort byte and,
// for core sorts, the core sort byte.
func readSort(r *binary.Reader) (sort, core byte, err error) {
	sort, err = r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	if sort == sortCore {
		core, err = r.ReadByte()
		return sort, core, err
	}
	if sort > sortInstance {
		return 0, 0, fmt.Errorf("invalid sort %#x", sort)
	}
	return sort, 0, nil
}

// skipCoreDefType consumes a core type declared inside a component or
// instance type.
func skipCoreDefType(r *binary.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch b {
	case 0x60:
		if err := skipVec(r, (*binary.Reader).SkipValType); err != nil {
			return err
		}
		return skipVec(r, (*binary.Reader).SkipValType)
	case 0x00:
		next, err := r.ReadByte()
		if err != nil {
			return err
		}
		if next != 0x50 {
			return fmt.Errorf("invalid core type prefix 0x00 %#x", next)
		}
		return skipVec(r, skipModuleDecl)
	case 0x50:
		return skipVec(r, skipModuleDecl)
	default:
		return fmt.Errorf("unsupported core type %#x", b)
	}
}

func skipModuleDecl(r *binary.Reader) error {
	kind, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch kind {
	case 0x00:
		if err := skipName(r); err != nil {
			return err
		}
		if err := skipName(r); err != nil {
			return err
		}
		return r.SkipImportDesc()
	case 0x01:
		return skipCoreDefType(r)
	case 0x02:
		if _, err := r.ReadByte(); err != nil {
			return err
		}
		target, err := r.ReadByte()
		if err != nil {
			return err
		}
		if target != 0x01 {
			return fmt.Errorf("invalid module alias target %#x", target)
		}
		if _, err := r.ReadU32(); err != nil {
			return err
		}
		_, err = r.ReadU32()
		return err
	case 0x03:
		if err := skipName(r); err != nil {
			return err
		}
		return r.SkipImportDesc()
	default:
		return fmt.Errorf("unknown module declaration %#x", kind)
	}
}
