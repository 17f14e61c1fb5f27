package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-componentize/componentize"
	"github.com/wippyai/wasm-componentize/compose"
	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/wasm"
)

type options struct {
	in             string
	out            string
	legacyAdapter  string
	reactorAdapter string
	commandAdapter string
	wasmTools      string
	world          string
	target         string
	command        bool
	verify         bool
	verbose        bool
	detect         bool
}

func main() {
	var (
		o           options
		interactive bool
	)
	flag.StringVar(&o.in, "in", "", "Path to core module or component")
	flag.StringVar(&o.out, "out", "", "Output path (stdout when empty)")
	flag.StringVar(&o.legacyAdapter, "adapter-legacy", "", "Adapter for legacy binding generator output")
	flag.StringVar(&o.reactorAdapter, "adapter-reactor", "", "Adapter for current reactor modules")
	flag.StringVar(&o.commandAdapter, "adapter-command", "", "Adapter for command modules")
	flag.StringVar(&o.wasmTools, "wasm-tools", compose.DefaultWasmTools, "wasm-tools executable")
	flag.StringVar(&o.world, "world", componentize.DefaultWorld, "World narrowed in the legacy adapter")
	flag.StringVar(&o.target, "target", componentize.DefaultTargetNamespace, "Import namespace of the adapter")
	flag.BoolVar(&o.command, "command", false, "Componentize as a command")
	flag.BoolVar(&o.verify, "verify", false, "Compile core modules with wazero before and after composition")
	flag.BoolVar(&o.verbose, "v", false, "Verbose logging")
	flag.BoolVar(&o.detect, "detect", false, "Print the detected toolchain generation and exit")
	flag.BoolVar(&interactive, "i", false, "Inspect the adaptation plan with TUI")
	flag.Parse()

	if o.in == "" {
		fmt.Fprintln(os.Stderr, "Usage: componentize -in <module.wasm> [-out file] -adapter-legacy a.wasm -adapter-reactor b.wasm")
		fmt.Fprintln(os.Stderr, "       componentize -in <module.wasm> -command -adapter-command c.wasm")
		fmt.Fprintln(os.Stderr, "       componentize -in <module.wasm> -detect")
		fmt.Fprintln(os.Stderr, "       componentize -in <module.wasm> -i  (inspect plan)")
		os.Exit(1)
	}

	log, err := newLogger(o.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	componentize.SetLogger(log)
	compose.SetLogger(log)

	if interactive {
		if err := runInteractive(o); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	input, err := os.ReadFile(o.in)
	if err != nil {
		return errors.Load("read input "+o.in, err)
	}

	if o.detect {
		if wasm.IsComponent(input) {
			_, err := fmt.Fprintln(stdout, "encoding: component")
			return err
		}
		d, err := componentize.Detect(input)
		if err != nil {
			return fmt.Errorf("detect: %w", err)
		}
		return printDetection(stdout, d)
	}

	if o.out == "" && isTerminal(stdout) {
		return fmt.Errorf("refusing to write binary output to a terminal, use -out")
	}

	eng, err := newEngine(o)
	if err != nil {
		return err
	}

	var out []byte
	if o.command {
		out, err = eng.ComponentizeCommand(ctx, input)
	} else {
		out, err = eng.ComponentizeIfNecessary(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("componentize: %w", err)
	}

	if o.out == "" {
		_, err = stdout.Write(out)
		return err
	}
	return os.WriteFile(o.out, out, 0o644)
}

func printDetection(w io.Writer, d componentize.Detection) error {
	version := d.Version
	if version == "" {
		version = "-"
	}
	_, err := fmt.Fprintf(w, "generation: %s\nversion: %s\nsource: %s\n", d.Generation, version, d.Source)
	return err
}

// newEngine loads the adapters named on the command line. Adapters not given
// stay empty and only fail when the selected path needs them.
func newEngine(o options) (*componentize.Engine, error) {
	var adapters componentize.Adapters
	paths := []struct {
		path string
		dst  *[]byte
	}{
		{o.legacyAdapter, &adapters.Legacy},
		{o.reactorAdapter, &adapters.Reactor},
		{o.commandAdapter, &adapters.Command},
	}
	for _, p := range paths {
		if p.path == "" {
			continue
		}
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, errors.Load("read adapter "+p.path, err)
		}
		*p.dst = data
	}

	return componentize.New(
		componentize.WithAdapters(adapters),
		componentize.WithComposer(compose.WasmTools{Path: o.wasmTools}),
		componentize.WithWorld(o.world),
		componentize.WithTargetNamespace(o.target),
		componentize.WithCoreVerification(o.verify),
	), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
