// Package metadata edits the component-type blobs that describe a world.
//
// A core module or adapter built for the component model carries its world
// in a custom section whose name starts with "component-type". The payload
// is itself a component binary holding a string-encoding marker, an
// optional producers section, and type sections declaring the world. This
// package decodes such a blob far enough to list worlds and their exports,
// remove exports from a world, and re-encode the blob. Declarations it does
// not modify are carried as their original bytes.
//
//	md, err := metadata.Decode(blob)
//	if err != nil {
//	    return err
//	}
//	removed, err := md.Narrow("reactor", func(e metadata.WorldExport) bool {
//	    return e.Interface == "inbound-http"
//	})
//	out := md.Encode()
package metadata
