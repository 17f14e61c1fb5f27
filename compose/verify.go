package compose

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-componentize/errors"
)

func newVerifierRuntime(ctx context.Context) wazero.Runtime {
	cfg := wazero.NewRuntimeConfigInterpreter().
		WithCoreFeatures(api.CoreFeaturesV2)
	return wazero.NewRuntimeWithConfig(ctx, cfg)
}

// VerifyCore compiles a core module with wazero and discards the result.
// Every call uses its own runtime.
func VerifyCore(ctx context.Context, module []byte) error {
	rt := newVerifierRuntime(ctx)
	defer rt.Close(ctx)
	return compile(ctx, rt, module)
}

// VerifyComponentCores compiles every core module embedded at the top level
// of a component.
func VerifyComponentCores(ctx context.Context, component []byte) error {
	modules, err := CoreModules(component)
	if err != nil {
		return errors.CompositionFailed(errors.PhaseValidate, "list core modules", err)
	}

	rt := newVerifierRuntime(ctx)
	defer rt.Close(ctx)
	for i, m := range modules {
		if err := compile(ctx, rt, m); err != nil {
			return errors.CompositionFailed(errors.PhaseValidate, fmt.Sprintf("core module %d", i), err)
		}
	}
	Logger().Debug("verified embedded core modules", zap.Int("count", len(modules)))
	return nil
}

func compile(ctx context.Context, rt wazero.Runtime, module []byte) error {
	cm, err := rt.CompileModule(ctx, module)
	if err != nil {
		return errors.CompositionFailed(errors.PhaseValidate, "core module does not compile", err)
	}
	return cm.Close(ctx)
}
