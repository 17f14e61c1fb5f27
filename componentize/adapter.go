package componentize

import (
	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/metadata"
	"github.com/wippyai/wasm-componentize/wasm"
)

// Adapters holds the adapter binaries for each adaptation path. They are
// borrowed read-only.
type Adapters struct {
	// Legacy is the adapter whose world is narrowed per module on the
	// legacy path.
	Legacy []byte
	// Reactor is the preview1 adapter used directly by newer generations.
	Reactor []byte
	// Command is the preview1 adapter for modules with a command entry
	// point.
	Command []byte
}

// AdapterMetadata decodes the component-type sections of an adapter in
// order and returns the first one declaring world. Every section must
// decode; an adapter without any is a metadata error, and one whose
// sections all lack the world is WorldNotFound.
func AdapterMetadata(adapter []byte, world string) (*metadata.Metadata, error) {
	sections, err := wasm.CustomSections(adapter, metadata.IsMetadataSection)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, errors.New(errors.PhaseMetadata, errors.KindMetadataDecode).
			Detail("adapter has no %s section", metadata.SectionPrefix).
			Build()
	}

	var found *metadata.Metadata
	for _, sec := range sections {
		md, err := metadata.Decode(sec.Data)
		if err != nil {
			return nil, err
		}
		if found == nil {
			if _, err := md.World(world); err == nil {
				found = md
			}
		}
	}
	if found == nil {
		return nil, errors.WorldNotFound(world)
	}
	return found, nil
}

// ReplaceMetadata returns a copy of adapter whose component-type sections
// are replaced by a single custom section named sectionName holding blob.
// The new section takes the position of the first component-type section,
// or is appended when there is none. adapter is not modified.
func ReplaceMetadata(adapter []byte, sectionName string, blob []byte) ([]byte, error) {
	if !metadata.IsMetadataSection(sectionName) {
		return nil, errors.InvalidInput(errors.PhaseMetadata, "section name "+sectionName+" is not a component-type section")
	}
	if _, err := wasm.ReadHeader(adapter); err != nil {
		return nil, err
	}

	b := wasm.NewBuilder(adapter[:wasm.HeaderSize], len(adapter)+len(blob)+len(sectionName)+10)
	replaced := false
	for sec, err := range wasm.Sections(adapter) {
		if err != nil {
			return nil, err
		}
		name, isCustom, err := sec.CustomName(adapter)
		if err != nil {
			return nil, err
		}
		if isCustom && metadata.IsMetadataSection(name) {
			if !replaced {
				b.Custom(sectionName, blob)
				replaced = true
			}
			continue
		}
		b.Raw(adapter, sec)
	}
	if !replaced {
		b.Custom(sectionName, blob)
	}
	return b.Bytes(), nil
}
