package componentize

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-componentize/compose"
	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/wasm"
)

// Engine adapts core modules into components. It is immutable after New
// and safe for concurrent use.
type Engine struct {
	cfg      config
	handlers map[Generation]handler
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		cfg: cfg,
		handlers: map[Generation]handler{
			GenerationLegacy:      (*Engine).planLegacy,
			GenerationReactor:     (*Engine).planDirect,
			GenerationReactorLate: (*Engine).planDirect,
		},
	}
}

// Plan selects the adaptation path for input and prepares the module and
// adapter for composition without running the encoder.
func (e *Engine) Plan(input []byte) (*Plan, error) {
	p := &Plan{Input: input, Namespace: e.cfg.target}
	if wasm.IsComponent(input) {
		p.State = StateAlreadyComponent
		return p, nil
	}

	d, err := Detect(input)
	if err != nil {
		return nil, err
	}
	p.Detection = d
	Logger().Debug("detected producer generation",
		zap.Stringer("generation", d.Generation),
		zap.String("version", d.Version),
		zap.String("source", string(d.Source)))

	plan, ok := e.handlers[d.Generation]
	if !ok {
		return nil, errors.UnsupportedProducer(d.Version)
	}
	if err := plan(e, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PlanCommand prepares a module for the command adapter. Detection is
// skipped.
func (e *Engine) PlanCommand(module []byte) (*Plan, error) {
	h, err := wasm.ReadHeader(module)
	if err != nil {
		return nil, err
	}
	if h.Encoding != wasm.EncodingModule {
		return nil, errors.InvalidInput(errors.PhaseLoad, "command adaptation needs a core module, got a component")
	}
	if len(e.cfg.adapters.Command) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "command adapter not configured")
	}
	return &Plan{
		State:     StateCommand,
		Input:     module,
		Module:    module,
		Adapter:   e.cfg.adapters.Command,
		Namespace: e.cfg.target,
	}, nil
}

// Execute composes a plan and validates the result. An already-component
// plan returns its input unchanged.
func (e *Engine) Execute(ctx context.Context, p *Plan) ([]byte, error) {
	if p.State == StateAlreadyComponent {
		return p.Input, nil
	}

	if e.cfg.verifyCore {
		if err := compose.VerifyCore(ctx, p.Module); err != nil {
			return nil, err
		}
	}

	out, err := e.cfg.composer.Compose(ctx, p.Module, []compose.Adapter{{Namespace: p.Namespace, Binary: p.Adapter}})
	if err != nil {
		var ce *errors.Error
		if stderrors.As(err, &ce) && ce.Kind == errors.KindCompositionValidation {
			return nil, err
		}
		return nil, errors.Wrap(errors.PhaseCompose, errors.KindCompositionValidation, err, "compose component")
	}
	if err := compose.Validate(out); err != nil {
		return nil, err
	}
	if e.cfg.verifyCore {
		if err := compose.VerifyComponentCores(ctx, out); err != nil {
			return nil, err
		}
	}

	Logger().Debug("composed component",
		zap.Stringer("state", p.State),
		zap.Int("module_size", len(p.Module)),
		zap.Int("adapter_size", len(p.Adapter)),
		zap.Int("component_size", len(out)))
	return out, nil
}

// ComponentizeIfNecessary returns input unchanged when it is already a
// component, and otherwise adapts it along the path selected for its
// producer generation.
func (e *Engine) ComponentizeIfNecessary(ctx context.Context, input []byte) ([]byte, error) {
	p, err := e.Plan(input)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, p)
}

// ComponentizeCommand composes a module with the command adapter.
func (e *Engine) ComponentizeCommand(ctx context.Context, module []byte) ([]byte, error) {
	p, err := e.PlanCommand(module)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, p)
}

// ComponentizeIfNecessary is Engine.ComponentizeIfNecessary on an engine
// built from adapters and opts.
func ComponentizeIfNecessary(ctx context.Context, input []byte, adapters Adapters, opts ...Option) ([]byte, error) {
	return New(append([]Option{WithAdapters(adapters)}, opts...)...).ComponentizeIfNecessary(ctx, input)
}

// ComponentizeCommand is Engine.ComponentizeCommand on an engine built from
// adapters and opts.
func ComponentizeCommand(ctx context.Context, module []byte, adapters Adapters, opts ...Option) ([]byte, error) {
	return New(append([]Option{WithAdapters(adapters)}, opts...)...).ComponentizeCommand(ctx, module)
}
