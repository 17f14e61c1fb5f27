// Package errors provides structured error types for the componentization engine.
//
// Errors are categorized by Phase (the pipeline stage that failed) and Kind
// (the error category exposed to callers). Where available the error carries
// the section kind and byte offset at which a binary stopped making sense.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindMalformedBinary).
//		Section("import").
//		Offset(42).
//		Detail("truncated import name").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Malformed(errors.PhaseRetarget, "import", 42, cause)
//	err := errors.WorldNotFound("reactor")
//
// Callers match categories with errors.Is against the Err* sentinels,
// which compare by Kind only:
//
//	if errors.Is(err, errors.ErrUnsupportedProducer) { ... }
package errors
