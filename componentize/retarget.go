package componentize

import (
	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/wasm"
)

// Rename records one import moved onto the target namespace.
type Rename struct {
	FromModule string
	FromName   string
	ToName     string
	// Kind is the import descriptor kind, see wasm.KindName.
	Kind byte
}

// Retargeted is the result of RetargetImports.
type Retargeted struct {
	// Module is the rewritten module. When no import changed it is the
	// input slice itself.
	Module []byte
	// Exports holds every export name in declaration order.
	Exports []string
	// Renamed lists the imports that moved, in import order.
	Renamed []Rename
}

// RetargetImports moves every import onto the target namespace. An import
// from another namespace keeps its descriptor and is renamed to
// "{namespace}:{name}"; imports already on target are left alone. Only the
// import section is re-encoded; every other section is copied verbatim and
// section order is unchanged.
func RetargetImports(module []byte, target string) (Retargeted, error) {
	if target == "" {
		return Retargeted{}, errors.InvalidInput(errors.PhaseRetarget, "empty target namespace")
	}
	h, err := wasm.ReadHeader(module)
	if err != nil {
		return Retargeted{}, err
	}
	if h.Encoding != wasm.EncodingModule {
		return Retargeted{}, errors.InvalidInput(errors.PhaseRetarget, "input is a component, not a core module")
	}

	var res Retargeted
	b := wasm.NewBuilder(wasm.ModuleHeader(), len(module)+64)
	for sec, err := range wasm.Sections(module) {
		if err != nil {
			return Retargeted{}, err
		}
		switch sec.ID {
		case wasm.SectionImport:
			imports, err := wasm.DecodeImports(sec.Payload(module), sec.PayloadStart)
			if err != nil {
				return Retargeted{}, err
			}
			changed := false
			for i, imp := range imports {
				if imp.Module == target {
					continue
				}
				renamed := imp.Module + ":" + imp.Name
				res.Renamed = append(res.Renamed, Rename{FromModule: imp.Module, FromName: imp.Name, ToName: renamed, Kind: imp.Kind()})
				imports[i].Module = target
				imports[i].Name = renamed
				changed = true
			}
			if changed {
				b.Section(wasm.SectionImport, wasm.EncodeImports(imports))
				continue
			}
		case wasm.SectionExport:
			exports, err := wasm.DecodeExports(sec.Payload(module), sec.PayloadStart)
			if err != nil {
				return Retargeted{}, err
			}
			for _, e := range exports {
				res.Exports = append(res.Exports, e.Name)
			}
		}
		b.Raw(module, sec)
	}

	if len(res.Renamed) == 0 {
		res.Module = module
	} else {
		res.Module = b.Bytes()
	}
	return res, nil
}
