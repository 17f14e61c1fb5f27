// Package compose is the boundary to the component encoder.
//
// The encoder that turns a core module plus adapter modules into a
// component is an external primitive. Composer abstracts it; WasmTools
// drives the wasm-tools CLI. Whatever produced the output, Validate checks
// that it is a structurally sound component before it is handed back to
// callers, and VerifyCore optionally compiles core modules with wazero.
package compose
