package wasm

import "github.com/wippyai/wasm-componentize/internal/binary"

func testModule(sections ...[]byte) []byte {
	out := ModuleHeader()
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func testSection(id byte, payload []byte) []byte {
	w := binary.NewWriter(len(payload) + 6)
	w.WriteSection(id, payload)
	return w.Bytes()
}

func testFuncImport(module, name string, typeIdx uint32) Import {
	w := binary.NewWriter(6)
	w.Byte(KindFunc)
	w.WriteU32(typeIdx)
	return Import{Module: module, Name: name, Desc: w.Bytes()}
}

func testExportSection(names ...string) []byte {
	w := binary.NewWriter(64)
	w.WriteU32(uint32(len(names)))
	for i, n := range names {
		w.WriteName(n)
		w.Byte(KindFunc)
		w.WriteU32(uint32(i))
	}
	return testSection(SectionExport, w.Bytes())
}
