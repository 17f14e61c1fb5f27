// Package wasmcomponentize turns core WebAssembly modules into components
// by composing them with a WASI preview1 adapter.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmcomponentize/    Root package, documentation only
//	├── componentize/    Detection, planning and the componentize entry points
//	├── metadata/        Component-type metadata blobs: worlds and narrowing
//	├── compose/         Composer interface, wasm-tools backend, output checks
//	├── wasm/            Core WASM binary sections, imports, exports, producers
//	├── errors/          Structured error types for debugging
//	├── internal/binary/ LEB128 reader and writer
//	└── cmd/componentize Command line front end
//
// # Quick Start
//
// Componentize a module built by any supported toolchain:
//
//	out, err := componentize.ComponentizeIfNecessary(ctx, input, componentize.Adapters{
//	    Legacy:  legacyAdapter,
//	    Reactor: reactorAdapter,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Inputs that are already components come back unchanged. A module with a
// command entry point goes through ComponentizeCommand instead.
//
// # Toolchain Generations
//
// The processed-by entry of the binding generator, or an ABI marker export,
// selects the path:
//
//   - 0.2.x (or nothing found): imports are retargeted onto
//     wasi_snapshot_preview1 and the legacy adapter's world is narrowed to
//     the interfaces the module exports
//   - 0.5.x and 0.7.x through 0.16.x: composed directly with the reactor
//     adapter
//   - anything else: rejected with errors.ErrUnsupportedProducer
//
// # Planning
//
// Engine.Plan performs every decision without running the encoder, so the
// rewritten module and narrowed adapter can be inspected before
// Engine.Execute composes them.
//
//	eng := componentize.New(componentize.WithAdapters(adapters))
//	plan, err := eng.Plan(input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(plan.State, plan.Dropped)
//	out, err := eng.Execute(ctx, plan)
//
// # Thread Safety
//
// An Engine is immutable after New and safe for concurrent use. Inputs and
// adapter binaries are never modified; every rewrite allocates a new buffer.
package wasmcomponentize
