// Package componentize turns core WebAssembly modules built against the
// flat module ABI into components.
//
// The producer toolchain generation of a module decides how it is adapted:
//
//   - legacy modules have their imports moved onto the adapter namespace,
//     and the legacy adapter's world is narrowed to the interfaces the
//     module actually exports before the two are composed;
//   - reactor generations compose directly with the preview1 adapter;
//   - modules of an unknown generation are rejected.
//
// Inputs that are already components are returned unchanged. Modules with
// a command entry point go through ComponentizeCommand, which skips
// detection.
//
//	eng := componentize.New(
//	    componentize.WithAdapters(componentize.Adapters{Legacy: legacy, Reactor: reactor}),
//	    componentize.WithComposer(compose.WasmTools{}),
//	)
//	out, err := eng.ComponentizeIfNecessary(ctx, input)
//
// Composition is delegated to a compose.Composer; the result is checked
// with compose.Validate before it is returned.
package componentize
