package wasm

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/internal/binary"
)

func TestReadHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Encoding
		wantErr bool
	}{
		{"module", ModuleHeader(), EncodingModule, false},
		{"component", ComponentHeader(), EncodingComponent, false},
		{"short", []byte{0x00, 0x61, 0x73}, EncodingUnknown, true},
		{"bad magic", []byte{0x00, 0x61, 0x73, 0x6e, 0x01, 0x00, 0x00, 0x00}, EncodingUnknown, true},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}, EncodingUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !stderrors.Is(err, errors.ErrMalformedBinary) {
					t.Errorf("error %v is not malformed binary", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Encoding != tt.want {
				t.Errorf("encoding = %v, want %v", h.Encoding, tt.want)
			}
		})
	}
}

func TestIsComponent(t *testing.T) {
	if !IsComponent(ComponentHeader()) {
		t.Error("component header not recognized")
	}
	if IsComponent(ModuleHeader()) {
		t.Error("module header recognized as component")
	}
	if IsComponent(nil) {
		t.Error("empty input recognized as component")
	}
}

func TestSectionsRanges(t *testing.T) {
	typeSec := testSection(SectionType, []byte{0x01, 0x60, 0x00, 0x00})
	custom := testSection(SectionCustom, EncodeCustom("note", []byte("hi")))
	exports := testExportSection("run")
	data := testModule(typeSec, custom, exports)

	secs, err := ParseSections(data)
	if err != nil {
		t.Fatalf("ParseSections: %v", err)
	}
	if len(secs) != 3 {
		t.Fatalf("got %d sections, want 3", len(secs))
	}

	wantIDs := []byte{SectionType, SectionCustom, SectionExport}
	raw := [][]byte{typeSec, custom, exports}
	for i, sec := range secs {
		if sec.ID != wantIDs[i] {
			t.Errorf("section %d id = %d, want %d", i, sec.ID, wantIDs[i])
		}
		if !bytes.Equal(sec.Bytes(data), raw[i]) {
			t.Errorf("section %d bytes = %x, want %x", i, sec.Bytes(data), raw[i])
		}
	}
	if secs[0].Start != HeaderSize {
		t.Errorf("first section starts at %d", secs[0].Start)
	}
	if secs[2].End != len(data) {
		t.Errorf("last section ends at %d, want %d", secs[2].End, len(data))
	}

	name, ok, err := secs[1].CustomName(data)
	if err != nil || !ok || name != "note" {
		t.Errorf("CustomName = %q, %v, %v", name, ok, err)
	}
}

func TestSectionsRestartable(t *testing.T) {
	data := testModule(testExportSection("a"), testExportSection("b"))
	seq := Sections(data)

	count := func() int {
		n := 0
		for _, err := range seq {
			if err != nil {
				t.Fatal(err)
			}
			n++
		}
		return n
	}
	if a, b := count(), count(); a != 2 || b != 2 {
		t.Errorf("counts = %d, %d; want 2, 2", a, b)
	}
}

func TestSectionsEarlyBreak(t *testing.T) {
	data := testModule(testExportSection("a"), testExportSection("b"))
	n := 0
	for range Sections(data) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d sections after break", n)
	}
}

func TestSectionsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		section string
	}{
		{"truncated payload", append(ModuleHeader(), SectionImport, 0x10, 0x00), "import"},
		{"truncated size", append(ModuleHeader(), SectionType, 0x80), "type"},
		{"unknown id", append(ModuleHeader(), 0x20, 0x00), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSections(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.Kind != errors.KindMalformedBinary {
				t.Errorf("kind = %s", e.Kind)
			}
			if e.Section != tt.section {
				t.Errorf("section = %q, want %q", e.Section, tt.section)
			}
			if e.Offset != HeaderSize {
				t.Errorf("offset = %d, want %d", e.Offset, HeaderSize)
			}
		})
	}
}

func TestComponentSectionIDs(t *testing.T) {
	data := append(ComponentHeader(), testSection(ComponentSectionExport, []byte{0x00})...)
	secs, err := ParseSections(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(secs) != 1 || secs[0].ID != ComponentSectionExport {
		t.Fatalf("sections = %+v", secs)
	}

	bad := append(ComponentHeader(), testSection(SectionTag, []byte{0x00})...)
	if _, err := ParseSections(bad); err == nil {
		t.Error("expected error for section id beyond component range")
	}
}

func TestImportsRoundTrip(t *testing.T) {
	memDesc := []byte{KindMemory, 0x01, 0x01, 0x10}
	tableDesc := []byte{KindTable, 0x70, 0x00, 0x02}
	globalDesc := []byte{KindGlobal, binary.RefNull, 0x70, 0x01}
	imports := []Import{
		testFuncImport("http", "send-request", 3),
		{Module: "env", Name: "memory", Desc: memDesc},
		{Module: "env", Name: "table", Desc: tableDesc},
		{Module: "env", Name: "g", Desc: globalDesc},
	}
	payload := EncodeImports(imports)

	got, err := DecodeImports(payload, 0)
	if err != nil {
		t.Fatalf("DecodeImports: %v", err)
	}
	if len(got) != len(imports) {
		t.Fatalf("got %d imports", len(got))
	}
	for i := range imports {
		if got[i].Module != imports[i].Module || got[i].Name != imports[i].Name {
			t.Errorf("import %d = %s.%s", i, got[i].Module, got[i].Name)
		}
		if !bytes.Equal(got[i].Desc, imports[i].Desc) {
			t.Errorf("import %d desc = %x, want %x", i, got[i].Desc, imports[i].Desc)
		}
	}
	if got[1].Kind() != KindMemory {
		t.Errorf("kind = %d", got[1].Kind())
	}
	if !bytes.Equal(EncodeImports(got), payload) {
		t.Error("re-encoding changed bytes")
	}
}

func TestDecodeImportsMemoryFlags(t *testing.T) {
	tests := []struct {
		name string
		desc []byte
	}{
		{"min only", []byte{KindMemory, 0x00, 0x01}},
		{"shared", []byte{KindMemory, 0x03, 0x01, 0x02}},
		{"memory64", []byte{KindMemory, 0x05, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01, 0x02}},
		{"page size", []byte{KindMemory, 0x08, 0x01, 0x00}},
		{"tag", []byte{KindTag, 0x00, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := EncodeImports([]Import{{Module: "m", Name: "n", Desc: tt.desc}})
			got, err := DecodeImports(payload, 0)
			if err != nil {
				t.Fatalf("DecodeImports: %v", err)
			}
			if !bytes.Equal(got[0].Desc, tt.desc) {
				t.Errorf("desc = %x, want %x", got[0].Desc, tt.desc)
			}
		})
	}
}

func TestDecodeImportsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"count too large", []byte{0x05, 0x00}},
		{"unknown kind", []byte{0x01, 0x01, 'm', 0x01, 'n', 0x09, 0x00}},
		{"truncated desc", []byte{0x01, 0x01, 'm', 0x01, 'n', KindFunc}},
		{"trailing bytes", []byte{0x01, 0x01, 'm', 0x01, 'n', KindFunc, 0x00, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImports(tt.payload, 100)
			if !stderrors.Is(err, errors.ErrMalformedBinary) {
				t.Fatalf("err = %v, want malformed binary", err)
			}
			var e *errors.Error
			stderrors.As(err, &e)
			if e.Offset < 100 {
				t.Errorf("offset %d not relative to base", e.Offset)
			}
		})
	}
}

func TestExportNames(t *testing.T) {
	data := testModule(
		testExportSection("handle-http-request", "memory"),
		testSection(SectionCustom, EncodeCustom("x", nil)),
		testExportSection("cabi_realloc"),
	)
	names, err := ExportNames(data)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"handle-http-request", "memory", "cabi_realloc"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDecodeExportsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"unknown kind", []byte{0x01, 0x01, 'f', 0x07, 0x00}},
		{"truncated index", []byte{0x01, 0x01, 'f', KindFunc}},
		{"trailing bytes", []byte{0x01, 0x01, 'f', KindFunc, 0x00, 0xff}},
		{"trailing bytes after empty list", []byte{0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeExports(tt.payload, 0)
			if !stderrors.Is(err, errors.ErrMalformedBinary) {
				t.Errorf("err = %v, want malformed binary", err)
			}
		})
	}
}

func TestKindName(t *testing.T) {
	tests := []struct {
		kind byte
		want string
	}{
		{KindFunc, "func"},
		{KindMemory, "memory"},
		{KindTag, "tag"},
		{0x7f, "unknown"},
	}

	for _, tt := range tests {
		if got := KindName(tt.kind); got != tt.want {
			t.Errorf("KindName(%#x) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestCustomSections(t *testing.T) {
	data := testModule(
		testSection(SectionCustom, EncodeCustom("component-type:a", []byte{1})),
		testSection(SectionCustom, EncodeCustom("name", []byte{2})),
		testSection(SectionCustom, EncodeCustom("component-type:b", []byte{3})),
	)
	got, err := CustomSections(data, func(n string) bool { return n != "name" })
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "component-type:a" || got[1].Data[0] != 3 {
		t.Errorf("custom sections = %+v", got)
	}
}

func TestProducers(t *testing.T) {
	p := &Producers{}
	p.Add(FieldLanguage, "Rust", "")
	p.Add(FieldProcessedBy, "rustc", "1.70.0")
	p.Add(FieldProcessedBy, "wit-bindgen-rust", "0.5.0")
	p.Add(FieldProcessedBy, "rustc", "1.71.0")

	data := EncodeProducers(p)
	got, err := DecodeProducers(data, 0)
	if err != nil {
		t.Fatalf("DecodeProducers: %v", err)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("fields = %+v", got.Fields)
	}
	v, ok := got.Find(FieldProcessedBy, "wit-bindgen")
	if !ok || v.Version != "0.5.0" || v.Name != "wit-bindgen-rust" {
		t.Errorf("Find = %+v, %v", v, ok)
	}
	v, _ = got.Find(FieldProcessedBy, "rustc")
	if v.Version != "1.71.0" {
		t.Errorf("rustc version = %q", v.Version)
	}
	if _, ok := got.Find(FieldSDK, "x"); ok {
		t.Error("found value in missing field")
	}
	if !bytes.Equal(EncodeProducers(got), data) {
		t.Error("re-encoding changed bytes")
	}
}

func TestDecodeProducersTruncated(t *testing.T) {
	data := EncodeProducers(&Producers{Fields: []ProducerField{{Name: "processed-by", Values: []ProducerValue{{"a", "1"}}}}})
	if _, err := DecodeProducers(data[:len(data)-1], 0); !stderrors.Is(err, errors.ErrMalformedBinary) {
		t.Errorf("err = %v", err)
	}
}

func TestBuilder(t *testing.T) {
	typeSec := testSection(SectionType, []byte{0x00})
	data := testModule(typeSec, testExportSection("a"))
	secs, err := ParseSections(data)
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(data, len(data))
	b.Raw(data, secs[0]).Custom("c", []byte{9}).Raw(data, secs[1])
	out := b.Bytes()

	want := testModule(typeSec, testSection(SectionCustom, EncodeCustom("c", []byte{9})), testExportSection("a"))
	if !bytes.Equal(out, want) {
		t.Errorf("built %x, want %x", out, want)
	}
	if b.Len() != len(want) {
		t.Errorf("Len = %d", b.Len())
	}
}

func TestSectionName(t *testing.T) {
	if got := SectionName(EncodingModule, SectionImport); got != "import" {
		t.Errorf("got %q", got)
	}
	if got := SectionName(EncodingComponent, ComponentSectionCoreModule); got != "core module" {
		t.Errorf("got %q", got)
	}
	if got := SectionName(EncodingModule, 40); got != "unknown" {
		t.Errorf("got %q", got)
	}
}
