package componentize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/metadata"
	"github.com/wippyai/wasm-componentize/wasm"
)

// Generation is a producer toolchain family that needs its own adaptation
// path.
type Generation int

const (
	// GenerationUnrecognized is a toolchain version outside every known
	// family. It is never adapted.
	GenerationUnrecognized Generation = iota
	// GenerationLegacy modules use flat imports and exports and need
	// import retargeting plus a narrowed adapter.
	GenerationLegacy
	// GenerationReactor modules only need the preview1 adapter.
	GenerationReactor
	// GenerationReactorLate covers the later pre-1.0 toolchains, which
	// also compose directly with the preview1 adapter.
	GenerationReactorLate
)

func (g Generation) String() string {
	switch g {
	case GenerationLegacy:
		return "legacy"
	case GenerationReactor:
		return "reactor"
	case GenerationReactorLate:
		return "reactor-late"
	default:
		return "unrecognized"
	}
}

// Source records where a Detection came from.
type Source string

const (
	SourceMetadata Source = "metadata"
	SourceMarker   Source = "marker"
	SourceDefault  Source = "default"
)

// Detection is the result of classifying a module.
type Detection struct {
	Generation Generation
	// Version is the toolchain version found, empty for SourceDefault.
	Version string
	Source  Source
}

// ProducerPrefix prefixes the processed-by entry of the binding generator.
const ProducerPrefix = "wit-bindgen"

var markerPattern = regexp.MustCompile(`^wit-bindgen-abi-(\d+)-(\d+)-pre(\d+)$`)

type generationRange struct {
	gen        Generation
	constraint *semver.Constraints
}

var generationRanges = []generationRange{
	{GenerationLegacy, mustConstraint(">= 0.2.0, < 0.3.0")},
	{GenerationReactor, mustConstraint(">= 0.5.0, < 0.6.0")},
	{GenerationReactorLate, mustConstraint(">= 0.7.0, < 0.17.0")},
}

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(fmt.Sprintf("invalid generation range %q: %v", s, err))
	}
	return c
}

// Classify maps a toolchain version string to its generation. Versions are
// compared numerically on major, minor and patch, so "0.10.0" sorts after
// "0.9.9" and "0.5.0-rc.1" belongs to the same family as "0.5.0".
// Unparsable versions are unrecognized.
func Classify(version string) Generation {
	fields := strings.Fields(version)
	if len(fields) == 0 {
		return GenerationUnrecognized
	}
	parsed, err := semver.NewVersion(fields[0])
	if err != nil {
		return GenerationUnrecognized
	}
	// constraints never match pre-releases; only the release triple counts
	v := semver.New(parsed.Major(), parsed.Minor(), parsed.Patch(), "", "")
	for _, r := range generationRanges {
		if r.constraint.Check(v) {
			return r.gen
		}
	}
	return GenerationUnrecognized
}

// Detect classifies the toolchain that produced module.
//
// The processed-by entries of producers sections are consulted first,
// those nested in component-type metadata before top-level ones. Without a
// binding generator entry the export names are scanned for an ABI marker.
// A module with neither is legacy. Components are rejected: their section
// ids do not share the module numbering.
func Detect(module []byte) (Detection, error) {
	h, err := wasm.ReadHeader(module)
	if err != nil {
		return Detection{}, err
	}
	if h.Encoding != wasm.EncodingModule {
		return Detection{}, errors.InvalidInput(errors.PhaseDetect, "producer detection needs a core module, got a "+h.Encoding.String())
	}

	var nested, topLevel []*wasm.Producers
	for sec, err := range wasm.Sections(module) {
		if err != nil {
			return Detection{}, err
		}
		if sec.ID != wasm.SectionCustom {
			continue
		}
		c, err := wasm.DecodeCustom(sec.Payload(module), sec.PayloadStart)
		if err != nil {
			return Detection{}, err
		}
		switch {
		case metadata.IsMetadataSection(c.Name):
			md, err := metadata.Decode(c.Data)
			if err != nil {
				return Detection{}, err
			}
			if p := md.Producers(); p != nil {
				nested = append(nested, p)
			}
		case c.Name == wasm.ProducersSectionName:
			p, err := wasm.DecodeProducers(c.Data, sec.End-len(c.Data))
			if err != nil {
				return Detection{}, errors.MetadataDecode(wasm.ProducersSectionName, err)
			}
			topLevel = append(topLevel, p)
		}
	}

	for _, p := range append(nested, topLevel...) {
		if v, ok := p.Find(wasm.FieldProcessedBy, ProducerPrefix); ok {
			return Detection{Generation: Classify(v.Version), Version: v.Version, Source: SourceMetadata}, nil
		}
	}

	exports, err := wasm.ExportNames(module)
	if err != nil {
		return Detection{}, err
	}
	for _, name := range exports {
		if m := markerPattern.FindStringSubmatch(name); m != nil {
			version := m[1] + "." + m[2] + "." + m[3]
			return Detection{Generation: Classify(version), Version: version, Source: SourceMarker}, nil
		}
	}

	return Detection{Generation: GenerationLegacy, Source: SourceDefault}, nil
}
