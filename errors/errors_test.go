package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
		excludes []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseRetarget,
				Kind:    KindMalformedBinary,
				Section: "import",
				Offset:  42,
				Detail:  "truncated name",
			},
			contains: []string{"[retarget]", "malformed_binary", "import section", "offset 42", "truncated name"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseDetect,
				Kind:   KindUnsupportedProducer,
				Offset: NoOffset,
			},
			contains: []string{"[detect]", "unsupported_producer"},
			excludes: []string{"offset"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCompose,
				Kind:   KindCompositionValidation,
				Detail: "wasm-tools failed",
				Offset: NoOffset,
				Cause:  errors.New("exit status 1"),
			},
			contains: []string{"[compose]", "composition_validation_failed", "wasm-tools failed", "caused by", "exit status 1"},
		},
		{
			name:     "sentinel",
			err:      ErrWorldNotFound,
			contains: []string{"world_not_found"},
			excludes: []string{"["},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(msg, s) {
					t.Errorf("error message %q should not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindMalformedBinary,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:   PhaseRetarget,
		Kind:    KindMalformedBinary,
		Section: "import",
	}

	if !err.Is(&Error{Phase: PhaseRetarget, Kind: KindMalformedBinary}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseParse, Kind: KindMalformedBinary}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseRetarget, Kind: KindMetadataDecode}) {
		t.Error("Is should not match different kind")
	}

	if !errors.Is(err, ErrMalformedBinary) {
		t.Error("errors.Is should match the kind sentinel regardless of phase")
	}
	if errors.Is(err, ErrWorldNotFound) {
		t.Error("errors.Is should not match a different sentinel")
	}
}

func TestError_IsThroughWrapping(t *testing.T) {
	inner := UnsupportedProducer("0.4.0")
	outer := Wrap(PhaseCompose, KindInvalidInput, inner, "componentize")

	if !errors.Is(outer, ErrUnsupportedProducer) {
		t.Error("errors.Is should find the wrapped sentinel kind")
	}
	if !errors.Is(outer, ErrInvalidInput) {
		t.Error("errors.Is should match the outer kind")
	}

	var e *Error
	if !errors.As(outer, &e) || e.Kind != KindInvalidInput {
		t.Errorf("errors.As = %v, want outer error", e)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseParse, KindMalformedBinary).
		Section("export").
		Offset(17).
		Value(byte(0x7)).
		Cause(cause).
		Detail("expected %d bytes, got %d", 4, 2).
		Build()

	if err.Phase != PhaseParse {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseParse)
	}
	if err.Kind != KindMalformedBinary {
		t.Errorf("Kind = %v, want %v", err.Kind, KindMalformedBinary)
	}
	if err.Section != "export" {
		t.Errorf("Section = %q, want export", err.Section)
	}
	if err.Offset != 17 {
		t.Errorf("Offset = %d, want 17", err.Offset)
	}
	if err.Value != byte(0x7) {
		t.Errorf("Value = %v, want 7", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected 4 bytes, got 2" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestBuilder_DefaultOffset(t *testing.T) {
	err := New(PhaseNarrow, KindWorldNotFound).Build()
	if err.Offset != NoOffset {
		t.Errorf("Offset = %d, want NoOffset", err.Offset)
	}
	if strings.Contains(err.Error(), "offset") {
		t.Errorf("error %q should not mention an offset", err.Error())
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Malformed", func(t *testing.T) {
		err := Malformed(PhaseParse, "code", 99, errors.New("eof"))
		if err.Kind != KindMalformedBinary || err.Offset != 99 || err.Section != "code" {
			t.Errorf("unexpected error %+v", err)
		}
	})

	t.Run("MetadataDecode", func(t *testing.T) {
		err := MetadataDecode("component-type:reactor", errors.New("bad"))
		if err.Kind != KindMetadataDecode || err.Phase != PhaseMetadata {
			t.Errorf("unexpected error %+v", err)
		}
	})

	t.Run("WorldNotFound", func(t *testing.T) {
		err := WorldNotFound("reactor")
		if err.Kind != KindWorldNotFound {
			t.Errorf("Kind = %v", err.Kind)
		}
		if !strings.Contains(err.Error(), `"reactor"`) {
			t.Errorf("message %q should name the world", err.Error())
		}
	})

	t.Run("UnsupportedProducer", func(t *testing.T) {
		err := UnsupportedProducer("0.4.0")
		if err.Value != "0.4.0" {
			t.Errorf("Value = %v", err.Value)
		}
		if !strings.Contains(err.Error(), "unknown toolchain version 0.4.0") {
			t.Errorf("message %q", err.Error())
		}
	})

	t.Run("CompositionFailed", func(t *testing.T) {
		err := CompositionFailed(PhaseValidate, "no core module", nil)
		if err.Kind != KindCompositionValidation || err.Phase != PhaseValidate {
			t.Errorf("unexpected error %+v", err)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseCompose, "legacy adapter not configured")
		if !errors.Is(err, ErrInvalidInput) {
			t.Error("should match ErrInvalidInput")
		}
	})

	t.Run("Load", func(t *testing.T) {
		err := Load("read adapter", errors.New("no such file"))
		if err.Phase != PhaseLoad || err.Cause == nil {
			t.Errorf("unexpected error %+v", err)
		}
	})
}
