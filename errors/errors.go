package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which pipeline stage produced the error
type Phase string

const (
	PhaseParse    Phase = "parse"    // section stream decoding
	PhaseDetect   Phase = "detect"   // producer generation detection
	PhaseRetarget Phase = "retarget" // import namespace rewriting
	PhaseNarrow   Phase = "narrow"   // world export narrowing
	PhaseMetadata Phase = "metadata" // component-type metadata codec
	PhaseCompose  Phase = "compose"  // component composition
	PhaseValidate Phase = "validate" // composed output validation
	PhaseLoad     Phase = "load"     // adapter and input loading
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedBinary       Kind = "malformed_binary"
	KindMetadataDecode        Kind = "metadata_decode"
	KindWorldNotFound         Kind = "world_not_found"
	KindUnsupportedProducer   Kind = "unsupported_producer"
	KindCompositionValidation Kind = "composition_validation_failed"
	KindInvalidInput          Kind = "invalid_input"
)

// Sentinels for errors.Is. They carry no Phase, so they match any error of
// the same Kind.
var (
	ErrMalformedBinary       = &Error{Kind: KindMalformedBinary}
	ErrMetadataDecode        = &Error{Kind: KindMetadataDecode}
	ErrWorldNotFound         = &Error{Kind: KindWorldNotFound}
	ErrUnsupportedProducer   = &Error{Kind: KindUnsupportedProducer}
	ErrCompositionValidation = &Error{Kind: KindCompositionValidation}
	ErrInvalidInput          = &Error{Kind: KindInvalidInput}
)

// NoOffset marks an error that is not tied to a byte position.
const NoOffset = -1

// Error is the structured error type used throughout the engine
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Offset  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
		b.WriteString(" section")
	}
	if e.Offset >= 0 && (e.Section != "" || e.Offset > 0) {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a Phase
// matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Section sets the section kind the error refers to
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Offset sets the byte offset in the input buffer
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Malformed creates a malformed binary error at a known position
func Malformed(phase Phase, section string, offset int, cause error) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindMalformedBinary,
		Section: section,
		Offset:  offset,
		Cause:   cause,
	}
}

// MetadataDecode creates a metadata decode error
func MetadataDecode(section string, cause error) *Error {
	return &Error{
		Phase:   PhaseMetadata,
		Kind:    KindMetadataDecode,
		Section: section,
		Offset:  NoOffset,
		Detail:  "decode component metadata",
		Cause:   cause,
	}
}

// WorldNotFound creates a world lookup error
func WorldNotFound(world string) *Error {
	return &Error{
		Phase:  PhaseNarrow,
		Kind:   KindWorldNotFound,
		Offset: NoOffset,
		Detail: fmt.Sprintf("world %q not found", world),
		Value:  world,
	}
}

// UnsupportedProducer creates an error for a toolchain version outside every
// known generation
func UnsupportedProducer(version string) *Error {
	return &Error{
		Phase:  PhaseDetect,
		Kind:   KindUnsupportedProducer,
		Offset: NoOffset,
		Detail: fmt.Sprintf("cannot adapt module produced by unknown toolchain version %s", version),
		Value:  version,
	}
}

// CompositionFailed wraps a diagnostic from the composition primitive or
// the output validator
func CompositionFailed(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCompositionValidation,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}
