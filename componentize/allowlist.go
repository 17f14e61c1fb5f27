package componentize

import (
	"maps"
	"slices"

	"github.com/wippyai/wasm-componentize/metadata"
)

// AllowList maps legacy flat export names to the interface each one
// implements.
type AllowList map[string]string

var defaultAllowList = AllowList{
	"handle-redis-message": "inbound-redis",
	"handle-http-request":  "inbound-http",
}

// DefaultAllowList returns a copy of the built-in allow-list.
func DefaultAllowList() AllowList {
	return maps.Clone(defaultAllowList)
}

// Interface returns the interface name for a flat export name.
func (a AllowList) Interface(export string) (string, bool) {
	iface, ok := a[export]
	return iface, ok
}

// FlatNames returns the flat export names in sorted order.
func (a AllowList) FlatNames() []string {
	return slices.Sorted(maps.Keys(a))
}

// AllowedInterfaces maps the observed export names through the allow-list
// and returns the set of interfaces they implement.
func AllowedInterfaces(exports []string, allow AllowList) map[string]struct{} {
	out := make(map[string]struct{})
	for _, name := range exports {
		if iface, ok := allow.Interface(name); ok {
			out[iface] = struct{}{}
		}
	}
	return out
}

// NarrowWorld removes from the named world every interface export whose
// interface is not in allowed. Function exports and other non-interface
// exports are kept. It returns the removed export names.
func NarrowWorld(md *metadata.Metadata, world string, allowed map[string]struct{}) ([]string, error) {
	return md.Narrow(world, func(e metadata.WorldExport) bool {
		if e.Kind != metadata.ExportInstance {
			return true
		}
		_, ok := allowed[e.Interface]
		return ok
	})
}
