package compose

import "context"

// Adapter is an adapter module bound to the import namespace it satisfies.
type Adapter struct {
	Namespace string
	Binary    []byte
}

// Composer encodes a core module and its adapters into a component.
// Implementations must not retain or modify the input buffers.
type Composer interface {
	Compose(ctx context.Context, module []byte, adapters []Adapter) ([]byte, error)
}

// Func adapts a function to the Composer interface.
type Func func(ctx context.Context, module []byte, adapters []Adapter) ([]byte, error)

// Compose calls f.
func (f Func) Compose(ctx context.Context, module []byte, adapters []Adapter) ([]byte, error) {
	return f(ctx, module, adapters)
}
