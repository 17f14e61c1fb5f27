package componentize

import (
	"maps"

	"github.com/wippyai/wasm-componentize/compose"
	"github.com/wippyai/wasm-componentize/metadata"
)

// Defaults used when no option overrides them.
const (
	DefaultTargetNamespace = "wasi_snapshot_preview1"
	DefaultWorld           = "reactor"
)

// ProcessedBy and Version form the processed-by entry recorded in adapter
// metadata rewritten on the legacy path.
const (
	ProcessedBy = "wasm-componentize"
	Version     = "0.1.0"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	adapters   Adapters
	composer   compose.Composer
	allow      AllowList
	target     string
	world      string
	verifyCore bool
}

func defaultConfig() config {
	return config{
		composer: compose.WasmTools{},
		allow:    defaultAllowList,
		target:   DefaultTargetNamespace,
		world:    DefaultWorld,
	}
}

// WithAdapters sets the adapter binaries.
func WithAdapters(a Adapters) Option {
	return func(c *config) {
		c.adapters = a
	}
}

// WithComposer replaces the component encoder. The default runs wasm-tools
// from PATH.
func WithComposer(comp compose.Composer) Option {
	return func(c *config) {
		if comp != nil {
			c.composer = comp
		}
	}
}

// WithAllowList replaces the flat export to interface mapping used on the
// legacy path. The list is copied.
func WithAllowList(a AllowList) Option {
	return func(c *config) {
		c.allow = maps.Clone(a)
	}
}

// WithTargetNamespace sets the namespace legacy imports are moved to and
// the namespace every adapter is bound to.
func WithTargetNamespace(ns string) Option {
	return func(c *config) {
		c.target = ns
	}
}

// WithWorld sets the adapter world narrowed on the legacy path. The
// rewritten metadata is stored as "component-type:<world>".
func WithWorld(name string) Option {
	return func(c *config) {
		c.world = name
	}
}

// WithCoreVerification compiles the module handed to the encoder and the
// core modules of the produced component with wazero.
func WithCoreVerification(enabled bool) Option {
	return func(c *config) {
		c.verifyCore = enabled
	}
}

func (c config) sectionName() string {
	return metadata.SectionPrefix + ":" + c.world
}
