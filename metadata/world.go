package metadata

import (
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-componentize/errors"
)

// ExportKind classifies a world export.
type ExportKind int

const (
	ExportOther ExportKind = iota
	ExportInstance
	ExportFunc
	ExportType
	ExportComponent
)

func (k ExportKind) String() string {
	switch k {
	case ExportInstance:
		return "interface"
	case ExportFunc:
		return "func"
	case ExportType:
		return "type"
	case ExportComponent:
		return "component"
	default:
		return "other"
	}
}

func exportKind(d externDesc) ExportKind {
	switch d.kind {
	case sortInstance:
		return ExportInstance
	case sortFunc:
		return ExportFunc
	case sortType:
		return ExportType
	case sortComponent:
		return ExportComponent
	default:
		return ExportOther
	}
}

// WorldExport is one export declared by a world.
type WorldExport struct {
	// Name is the export name as encoded: a plain kebab name or an
	// interface ID such as "fermyon:spin/inbound-redis@2.0.0".
	Name string
	Kind ExportKind
	// Interface is the bare interface name: Name itself for plain names,
	// the interface part of an interface ID otherwise.
	Interface string
}

// World is a world declared by the blob.
type World struct {
	// Name is the short world name, e.g. "reactor".
	Name string
	// ID is the fully qualified name when the blob records one, e.g.
	// "fermyon:spin/reactor", and Name otherwise.
	ID string

	ct      *compType
	def     *typeDef
	wrapper *decl
}

// InterfaceName returns the bare interface name of an export or import
// name, resolving interface IDs through their WIT identifier.
func InterfaceName(name string) string {
	if !strings.Contains(name, ":") {
		return name
	}
	id, err := wit.ParseIdent(name)
	if err != nil || id.Extension == "" {
		return name
	}
	return id.Extension
}

// Exports lists the world's exports in declaration order.
func (w *World) Exports() []WorldExport {
	var out []WorldExport
	for _, d := range w.ct.decls {
		if d.kind != declExport {
			continue
		}
		out = append(out, WorldExport{
			Name:      d.name,
			Kind:      exportKind(d.extern),
			Interface: InterfaceName(d.name),
		})
	}
	return out
}

// Imports lists the world's import names in declaration order.
func (w *World) Imports() []string {
	var out []string
	for _, d := range w.ct.decls {
		if d.kind == declImport {
			out = append(out, d.name)
		}
	}
	return out
}

// Worlds returns every world exported by the blob, in export order.
//
// Two layouts are recognized. Current encoders export a component type
// that wraps the world: it declares the world as a nested component type
// and exports it under the world's qualified name. Older encoders export
// the world's component type directly.
func (m *Metadata) Worlds() []*World {
	var out []*World
	for _, e := range m.exports {
		if e.sort != sortType {
			continue
		}
		def := m.resolveType(e.index)
		if def == nil || def.ct == nil || def.ct.form != formComponent {
			continue
		}
		if w := wrappedWorld(def); w != nil {
			out = append(out, w)
			continue
		}
		out = append(out, &World{Name: e.name, ID: e.name, ct: def.ct, def: def})
	}
	return out
}

func wrappedWorld(def *typeDef) *World {
	for _, d := range def.ct.decls {
		if d.kind != declExport || d.extern.kind != sortComponent {
			continue
		}
		inner := def.ct.typeDecl(d.extern.index)
		if inner == nil || inner.nested == nil || inner.nested.form != formComponent {
			continue
		}
		return &World{
			Name:    InterfaceName(d.name),
			ID:      d.name,
			ct:      inner.nested,
			def:     def,
			wrapper: inner,
		}
	}
	return nil
}

// World returns the world whose short name or qualified ID is name.
func (m *Metadata) World(name string) (*World, error) {
	for _, w := range m.Worlds() {
		if w.Name == name || w.ID == name {
			return w, nil
		}
	}
	return nil, errors.WorldNotFound(name)
}

// Narrow removes the instance exports of the named world for which keep
// returns false, and returns the names of the exports it removed.
//
// Exports of other kinds are never removed. An instance export that a
// later alias declaration refers to is kept regardless of keep, and alias
// declarations referring to instances after a removed one are renumbered.
// Narrowing is idempotent for a fixed keep.
func (m *Metadata) Narrow(worldName string, keep func(WorldExport) bool) ([]string, error) {
	w, err := m.World(worldName)
	if err != nil {
		return nil, err
	}

	ct := w.ct
	instances := ct.instanceIndices()
	drop := make(map[uint32]bool)
	for i, d := range ct.decls {
		if d.kind != declExport || d.extern.kind != sortInstance {
			continue
		}
		e := WorldExport{Name: d.name, Kind: ExportInstance, Interface: InterfaceName(d.name)}
		if !keep(e) {
			drop[instances[i]] = true
		}
	}
	for _, d := range ct.decls {
		if d.kind == declAlias && d.alias.target == aliasExport {
			delete(drop, d.alias.index)
		}
	}
	if len(drop) == 0 {
		return nil, nil
	}

	var removed []string
	decls := make([]*decl, 0, len(ct.decls))
	for i, d := range ct.decls {
		if idx, ok := instances[i]; ok && d.kind == declExport && drop[idx] {
			removed = append(removed, d.name)
			continue
		}
		if d.kind == declAlias && d.alias.target == aliasExport {
			shift := uint32(0)
			for idx := range drop {
				if idx < d.alias.index {
					shift++
				}
			}
			if shift > 0 {
				a := d.alias
				a.index -= shift
				d = &decl{kind: declAlias, alias: a, raw: encodeAliasDecl(a)}
			}
		}
		decls = append(decls, d)
	}

	ct.decls = decls
	m.refresh(w)
	return removed, nil
}

// refresh re-encodes the type section entry holding w after its
// declarations changed.
func (m *Metadata) refresh(w *World) {
	if w.wrapper != nil {
		w.wrapper.raw = append([]byte{declType}, w.ct.encode()...)
	}
	w.def.raw = w.def.ct.encode()
	m.parts[w.def.part].dirty = true
}
