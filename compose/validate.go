package compose

import (
	"fmt"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/wasm"
)

// Validate checks that out is a structurally sound component: a component
// header, well-framed sections with known ids, at least one embedded core
// module, and a valid header and section framing for every embedded module
// and nested component.
func Validate(out []byte) error {
	modules, err := validateComponent(out, 0)
	if err != nil {
		return err
	}
	if modules == 0 {
		return errors.CompositionFailed(errors.PhaseValidate, "component embeds no core module", nil)
	}
	return nil
}

const maxNesting = 16

func validateComponent(data []byte, depth int) (int, error) {
	if depth > maxNesting {
		return 0, errors.CompositionFailed(errors.PhaseValidate,
			fmt.Sprintf("components nested deeper than %d levels", maxNesting), nil)
	}
	h, err := wasm.ReadHeader(data)
	if err != nil {
		return 0, errors.CompositionFailed(errors.PhaseValidate, "invalid component header", err)
	}
	if h.Encoding != wasm.EncodingComponent {
		return 0, errors.CompositionFailed(errors.PhaseValidate, "output is a core module, not a component", nil)
	}

	modules := 0
	for sec, err := range wasm.Sections(data) {
		if err != nil {
			return 0, errors.CompositionFailed(errors.PhaseValidate, "malformed component section", err)
		}
		switch sec.ID {
		case wasm.ComponentSectionCoreModule:
			if err := validateModule(sec.Payload(data)); err != nil {
				return 0, errors.CompositionFailed(errors.PhaseValidate,
					fmt.Sprintf("embedded core module at offset %d", sec.Start), err)
			}
			modules++
		case wasm.ComponentSectionComponent:
			if _, err := validateComponent(sec.Payload(data), depth+1); err != nil {
				return 0, err
			}
		}
	}
	return modules, nil
}

func validateModule(data []byte) error {
	h, err := wasm.ReadHeader(data)
	if err != nil {
		return err
	}
	if h.Encoding != wasm.EncodingModule {
		return fmt.Errorf("embedded binary is a %s", h.Encoding)
	}
	_, err = wasm.ParseSections(data)
	return err
}

// CoreModules returns the payloads of the top-level core module sections
// of a component.
func CoreModules(component []byte) ([][]byte, error) {
	var out [][]byte
	for sec, err := range wasm.Sections(component) {
		if err != nil {
			return nil, err
		}
		if sec.ID == wasm.ComponentSectionCoreModule {
			out = append(out, sec.Payload(component))
		}
	}
	return out, nil
}
