package metadata

import (
	"github.com/wippyai/wasm-componentize/internal/binary"
	"github.com/wippyai/wasm-componentize/wasm"
)

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func compTypeBytes(form byte, decls ...[]byte) []byte {
	w := binary.NewWriter(64)
	w.Byte(form)
	w.WriteU32(uint32(len(decls)))
	for _, d := range decls {
		w.WriteBytes(d)
	}
	return w.Bytes()
}

func emptyInstanceType() []byte {
	return compTypeBytes(formInstance)
}

func funcTypeBytes() []byte {
	// () -> ()
	return []byte{formFunc, 0x00, 0x01, 0x00}
}

func typeDeclBytes(body []byte) []byte {
	return concat([]byte{declType}, body)
}

func externDeclBytes(kind byte, name string, sort byte, idx uint32) []byte {
	w := binary.NewWriter(16 + len(name))
	w.Byte(kind)
	w.Byte(0x00)
	w.WriteName(name)
	w.Byte(sort)
	if sort == sortType {
		w.Byte(0x00)
	}
	w.WriteU32(idx)
	return w.Bytes()
}

func exportDeclBytes(name string, sort byte, idx uint32) []byte {
	return externDeclBytes(declExport, name, sort, idx)
}

func importDeclBytes(name string, sort byte, idx uint32) []byte {
	return externDeclBytes(declImport, name, sort, idx)
}

func aliasDeclBytes(sort byte, instance uint32, name string) []byte {
	return encodeAliasDecl(alias{sort: sort, target: aliasExport, index: instance, name: name})
}

type blobOptions struct {
	encoding    []byte
	producers   *wasm.Producers
	exportName  string
	ascription  bool
	typeEntries [][]byte
}

func buildBlob(o blobOptions) []byte {
	b := wasm.NewBuilder(wasm.ComponentHeader(), 256)
	if o.encoding != nil {
		b.Custom(EncodingSectionName, o.encoding)
	}

	tw := binary.NewWriter(128)
	tw.WriteU32(uint32(len(o.typeEntries)))
	for _, t := range o.typeEntries {
		tw.WriteBytes(t)
	}
	b.Section(wasm.ComponentSectionType, tw.Bytes())

	ew := binary.NewWriter(32)
	ew.WriteU32(1)
	ew.Byte(0x00)
	ew.WriteName(o.exportName)
	ew.Byte(sortType)
	ew.WriteU32(0)
	if o.ascription {
		ew.Byte(0x00)
	}
	b.Section(wasm.ComponentSectionExport, ew.Bytes())

	if o.producers != nil {
		b.Custom(wasm.ProducersSectionName, wasm.EncodeProducers(o.producers))
	}
	return b.Bytes()
}

// reactorWorld declares two interface exports, a function export and an
// interface import.
func reactorWorld() []byte {
	return compTypeBytes(formComponent,
		typeDeclBytes(emptyInstanceType()),                                   // type 0
		importDeclBytes("fermyon:spin/config@2.0.0", sortInstance, 0),        // instance 0
		typeDeclBytes(emptyInstanceType()),                                   // type 1
		exportDeclBytes("fermyon:spin/inbound-redis@2.0.0", sortInstance, 1), // instance 1
		typeDeclBytes(emptyInstanceType()),                                   // type 2
		exportDeclBytes("inbound-http", sortInstance, 2),                     // instance 2
		typeDeclBytes(funcTypeBytes()),                                       // type 3
		exportDeclBytes("run", sortFunc, 3),
	)
}

func wrapWorld(id string, world []byte) []byte {
	return compTypeBytes(formComponent,
		typeDeclBytes(world),
		exportDeclBytes(id, sortComponent, 0),
	)
}

func reactorBlob(encoding StringEncoding) []byte {
	p := &wasm.Producers{}
	p.Add(wasm.FieldProcessedBy, "wit-component", "0.11.0")
	p.Add(wasm.FieldProcessedBy, "wit-bindgen-rust", "0.2.0")
	return buildBlob(blobOptions{
		encoding:    []byte{0x04, byte(encoding)},
		producers:   p,
		exportName:  "reactor",
		ascription:  true,
		typeEntries: [][]byte{wrapWorld("fermyon:spin/reactor", reactorWorld())},
	})
}
