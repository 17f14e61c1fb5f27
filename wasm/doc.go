// Package wasm reads and writes WebAssembly binaries at section granularity.
//
// The package never decodes function bodies or other opaque payloads. A
// binary is treated as a header followed by a sequence of sections, each
// described by its id and exact byte range in the borrowed input buffer.
// Only the sections the componentization pipeline rewrites (imports,
// exports, custom sections and the producers custom section) have codecs.
//
// # Header
//
// Classify a binary as a core module or a component:
//
//	hdr, err := wasm.ReadHeader(data)
//	if hdr.Encoding == wasm.EncodingComponent { ... }
//
// # Sections
//
// Iterate sections lazily. The sequence is restartable: every range
// re-parses from the header.
//
//	for sec, err := range wasm.Sections(data) {
//	    if err != nil {
//	        return err
//	    }
//	    payload := sec.Payload(data)
//	}
//
// # Rewriting
//
// Rebuild a binary, copying untouched sections verbatim:
//
//	b := wasm.NewBuilder(data[:wasm.HeaderSize], len(data))
//	b.Raw(data, sec)                    // byte-for-byte copy
//	b.Section(wasm.SectionImport, body) // freshly encoded payload
//	out := b.Bytes()
//
// Errors are *errors.Error values of kind KindMalformedBinary carrying the
// byte offset and section kind where decoding stopped.
package wasm
