package componentize

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/metadata"
	"github.com/wippyai/wasm-componentize/wasm"
)

// State is the adaptation path selected for an input.
type State int

const (
	StateAlreadyComponent State = iota
	StateLegacyRewrite
	StateDirectAdapter
	StateCommand
)

func (s State) String() string {
	switch s {
	case StateAlreadyComponent:
		return "already-component"
	case StateLegacyRewrite:
		return "legacy-rewrite"
	case StateDirectAdapter:
		return "direct-adapter"
	case StateCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Plan is everything decided before composition: the path, and the module
// and adapter the encoder receives.
type Plan struct {
	State     State
	Detection Detection

	// Input is the caller's buffer.
	Input []byte
	// Module is the core module to compose, retargeted on the legacy path.
	Module []byte
	// Adapter is the adapter binary to compose with, carrying narrowed
	// metadata on the legacy path.
	Adapter []byte
	// Namespace is the import namespace the adapter satisfies.
	Namespace string

	// Legacy path details.
	Renamed []Rename
	Exports []string
	World   string
	Kept    []metadata.WorldExport
	Dropped []string
}

type handler func(e *Engine, p *Plan) error

func (e *Engine) planLegacy(p *Plan) error {
	if len(e.cfg.adapters.Legacy) == 0 {
		return errors.InvalidInput(errors.PhaseLoad, "legacy adapter not configured")
	}
	p.State = StateLegacyRewrite

	rt, err := RetargetImports(p.Input, e.cfg.target)
	if err != nil {
		return err
	}
	p.Module = rt.Module
	p.Renamed = rt.Renamed
	p.Exports = rt.Exports

	md, err := AdapterMetadata(e.cfg.adapters.Legacy, e.cfg.world)
	if err != nil {
		return err
	}
	allowed := AllowedInterfaces(rt.Exports, e.cfg.allow)
	dropped, err := NarrowWorld(md, e.cfg.world, allowed)
	if err != nil {
		return err
	}
	w, err := md.World(e.cfg.world)
	if err != nil {
		return err
	}
	p.World = w.ID
	p.Kept = w.Exports()
	p.Dropped = dropped
	md.AddProducer(wasm.FieldProcessedBy, ProcessedBy, Version)

	adapter, err := ReplaceMetadata(e.cfg.adapters.Legacy, e.cfg.sectionName(), md.Encode())
	if err != nil {
		return err
	}
	p.Adapter = adapter

	Logger().Debug("narrowed legacy adapter",
		zap.Int("imports_renamed", len(rt.Renamed)),
		zap.Strings("exports", rt.Exports),
		zap.Strings("allow_list", e.cfg.allow.FlatNames()),
		zap.String("world", w.ID),
		zap.Strings("world_imports", w.Imports()),
		zap.Int("exports_kept", len(p.Kept)),
		zap.Strings("exports_dropped", dropped),
		zap.Int("adapter_size", len(adapter)))
	return nil
}

func (e *Engine) planDirect(p *Plan) error {
	if len(e.cfg.adapters.Reactor) == 0 {
		return errors.InvalidInput(errors.PhaseLoad, "reactor adapter not configured")
	}
	p.State = StateDirectAdapter
	p.Module = p.Input
	p.Adapter = e.cfg.adapters.Reactor
	return nil
}
