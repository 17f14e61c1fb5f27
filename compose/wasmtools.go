package compose

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-componentize/errors"
)

// DefaultWasmTools is the executable looked up on PATH when WasmTools.Path
// is empty.
const DefaultWasmTools = "wasm-tools"

// WasmTools composes components by running "wasm-tools component new",
// which also validates its output.
type WasmTools struct {
	// Path to the wasm-tools executable.
	Path string
	// TempDir holds the scratch directory for inputs and output. Empty
	// means the system default.
	TempDir string
}

// Compose writes the module and adapters to a scratch directory, runs the
// tool and returns the component it produced. The tool's stderr is part of
// the returned error.
func (t WasmTools) Compose(ctx context.Context, module []byte, adapters []Adapter) ([]byte, error) {
	bin := t.Path
	if bin == "" {
		bin = DefaultWasmTools
	}

	dir, err := os.MkdirTemp(t.TempDir, "componentize-*")
	if err != nil {
		return nil, errors.CompositionFailed(errors.PhaseCompose, "create scratch directory", err)
	}
	defer os.RemoveAll(dir)

	modPath := filepath.Join(dir, "module.wasm")
	outPath := filepath.Join(dir, "component.wasm")
	if err := os.WriteFile(modPath, module, 0o600); err != nil {
		return nil, errors.CompositionFailed(errors.PhaseCompose, "write module", err)
	}

	args := []string{"component", "new", modPath, "-o", outPath}
	for i, a := range adapters {
		p := filepath.Join(dir, fmt.Sprintf("adapter-%d.wasm", i))
		if err := os.WriteFile(p, a.Binary, 0o600); err != nil {
			return nil, errors.CompositionFailed(errors.PhaseCompose, "write adapter "+a.Namespace, err)
		}
		args = append(args, "--adapt", a.Namespace+"="+p)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	Logger().Debug("running component encoder",
		zap.String("tool", bin),
		zap.Int("module_size", len(module)),
		zap.Int("adapters", len(adapters)))

	if err := cmd.Run(); err != nil {
		detail := "wasm-tools component new failed"
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			detail += ": " + msg
		}
		return nil, errors.CompositionFailed(errors.PhaseCompose, detail, err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errors.CompositionFailed(errors.PhaseCompose, "read component", err)
	}
	return out, nil
}
