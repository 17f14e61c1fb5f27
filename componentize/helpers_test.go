package componentize

import (
	"context"

	"github.com/wippyai/wasm-componentize/compose"
	"github.com/wippyai/wasm-componentize/internal/binary"
	"github.com/wippyai/wasm-componentize/metadata"
	"github.com/wippyai/wasm-componentize/wasm"
)

type testImport struct {
	module, name string
}

// testModule builds a valid core module importing () -> () functions and
// re-exporting the first import under each export name.
func testModule(imports []testImport, exports []string, customs ...wasm.Custom) []byte {
	b := wasm.NewBuilder(wasm.ModuleHeader(), 128)
	b.Section(wasm.SectionType, []byte{0x01, 0x60, 0x00, 0x00})

	var list []wasm.Import
	for _, imp := range imports {
		list = append(list, wasm.Import{Module: imp.module, Name: imp.name, Desc: []byte{wasm.KindFunc, 0x00}})
	}
	b.Section(wasm.SectionImport, wasm.EncodeImports(list))

	w := binary.NewWriter(64)
	w.WriteU32(uint32(len(exports)))
	for _, name := range exports {
		w.WriteName(name)
		w.Byte(wasm.KindFunc)
		w.WriteU32(0)
	}
	b.Section(wasm.SectionExport, w.Bytes())

	for _, c := range customs {
		b.Custom(c.Name, c.Data)
	}
	return b.Bytes()
}

func legacyModule(exports ...string) []byte {
	return testModule([]testImport{{"http", "send-request"}, {"redis", "get"}}, exports)
}

func compType(form byte, decls ...[]byte) []byte {
	w := binary.NewWriter(64)
	w.Byte(form)
	w.WriteU32(uint32(len(decls)))
	for _, d := range decls {
		w.WriteBytes(d)
	}
	return w.Bytes()
}

func exportDecl(name string, kind byte, idx uint32) []byte {
	w := binary.NewWriter(16 + len(name))
	w.Byte(0x04)
	w.Byte(0x00)
	w.WriteName(name)
	w.Byte(kind)
	w.WriteU32(idx)
	return w.Bytes()
}

// worldBlob encodes a component-type blob declaring world
// fermyon:spin/reactor with one exported interface per name.
func worldBlob(producer string, interfaces ...string) []byte {
	return namedWorldBlob("fermyon:spin/reactor", producer, interfaces...)
}

// namedWorldBlob builds a metadata blob declaring the world id with one
// instance export per interface.
func namedWorldBlob(id, producer string, interfaces ...string) []byte {
	var decls [][]byte
	for i, iface := range interfaces {
		decls = append(decls, append([]byte{0x01}, compType(0x42)...))
		decls = append(decls, exportDecl(iface, 0x05, uint32(i)))
	}
	world := compType(0x41, decls...)
	outer := compType(0x41, append([]byte{0x01}, world...), exportDecl(id, 0x04, 0))

	b := wasm.NewBuilder(wasm.ComponentHeader(), 256)
	b.Custom(metadata.EncodingSectionName, []byte{0x04, 0x00})

	tw := binary.NewWriter(len(outer) + 5)
	tw.WriteU32(1)
	tw.WriteBytes(outer)
	b.Section(wasm.ComponentSectionType, tw.Bytes())

	ew := binary.NewWriter(16)
	ew.WriteU32(1)
	ew.Byte(0x00)
	ew.WriteName(metadata.InterfaceName(id))
	ew.Byte(0x03)
	ew.WriteU32(0)
	ew.Byte(0x00)
	b.Section(wasm.ComponentSectionExport, ew.Bytes())

	if producer != "" {
		p := &wasm.Producers{}
		p.Add(wasm.FieldProcessedBy, "wit-bindgen-rust", producer)
		b.Custom(wasm.ProducersSectionName, wasm.EncodeProducers(p))
	}
	return b.Bytes()
}

// moduleWithProducer builds a module whose component-type section records
// the given wit-bindgen version.
func moduleWithProducer(version string) []byte {
	return testModule(
		[]testImport{{"wasi_snapshot_preview1", "fd_write"}},
		[]string{"cabi_realloc"},
		wasm.Custom{Name: "component-type:bindings", Data: worldBlob(version)},
	)
}

func legacyAdapter() []byte {
	b := wasm.NewBuilder(wasm.ModuleHeader(), 256)
	b.Section(wasm.SectionType, []byte{0x01, 0x60, 0x00, 0x00})
	b.Custom("component-type:reactor", worldBlob("", "fermyon:spin/inbound-redis", "fermyon:spin/inbound-http"))
	return b.Bytes()
}

// multiSectionAdapter carries a helper world ahead of the reactor world,
// each in its own component-type section.
func multiSectionAdapter() []byte {
	b := wasm.NewBuilder(wasm.ModuleHeader(), 512)
	b.Section(wasm.SectionType, []byte{0x01, 0x60, 0x00, 0x00})
	b.Custom("component-type:helper", namedWorldBlob("fermyon:spin/helper", "", "fermyon:spin/config"))
	b.Custom("component-type:reactor", namedWorldBlob("fermyon:spin/reactor", "", "fermyon:spin/inbound-redis", "fermyon:spin/inbound-http"))
	return b.Bytes()
}

func plainAdapter(tag string) []byte {
	return wasm.NewBuilder(wasm.ModuleHeader(), 32).Custom("adapter", []byte(tag)).Bytes()
}

func testAdapters() Adapters {
	return Adapters{
		Legacy:  legacyAdapter(),
		Reactor: plainAdapter("reactor"),
		Command: plainAdapter("command"),
	}
}

// fakeComposer records its inputs and returns a component embedding the
// module and each adapter as core modules.
type fakeComposer struct {
	calls    int
	module   []byte
	adapters []compose.Adapter
	out      []byte
	err      error
}

func (f *fakeComposer) Compose(_ context.Context, module []byte, adapters []compose.Adapter) ([]byte, error) {
	f.calls++
	f.module = module
	f.adapters = adapters
	if f.err != nil || f.out != nil {
		return f.out, f.err
	}
	b := wasm.NewBuilder(wasm.ComponentHeader(), len(module)+256)
	b.Section(wasm.ComponentSectionCoreModule, module)
	for _, a := range adapters {
		b.Section(wasm.ComponentSectionCoreModule, a.Binary)
	}
	return b.Bytes(), nil
}

func sectionIDs(t interface{ Fatal(...any) }, data []byte) []byte {
	var ids []byte
	for sec, err := range wasm.Sections(data) {
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, sec.ID)
	}
	return ids
}

func importPairs(t interface{ Fatal(...any) }, module []byte) []testImport {
	var out []testImport
	for sec, err := range wasm.Sections(module) {
		if err != nil {
			t.Fatal(err)
		}
		if sec.ID != wasm.SectionImport {
			continue
		}
		imports, err := wasm.DecodeImports(sec.Payload(module), sec.PayloadStart)
		if err != nil {
			t.Fatal(err)
		}
		for _, imp := range imports {
			out = append(out, testImport{imp.Module, imp.Name})
		}
	}
	return out
}
