package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/modmock/builtins/env"
	"github.com/vk/modmock/internal/cli"
	"github.com/vk/modmock/internal/fsutil"
	"github.com/vk/modmock/modrt"
)

// main is the entrypoint for the modcat tool.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the tool's logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := newLogger(opts.LogLevel, opts.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	ctx := modrt.WithLogger(context.Background(), logger)

	rt, err := modrt.New(modrt.Config{
		Root:        opts.Root,
		SearchPaths: opts.SearchPaths,
	})
	if err != nil {
		return err
	}
	rt.RegisterBuiltin(env.Builtin())

	if opts.List {
		return listManifests(outW, rt)
	}

	for _, spec := range opts.Specs {
		if err := printModule(ctx, outW, rt, spec); err != nil {
			return err
		}
	}
	return nil
}

// moduleReport is the JSON shape printed for each loaded module.
type moduleReport struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Exports     map[string]any `json:"exports"`
}

// printModule loads one module through the runtime and writes its report.
func printModule(ctx context.Context, outW io.Writer, rt *modrt.Runtime, spec string) error {
	loaded, err := rt.LoadMain(ctx, spec)
	if err != nil {
		return err
	}
	mod, ok := loaded.(*modrt.Module)
	if !ok {
		return fmt.Errorf("module '%s' loaded as unexpected type %T", spec, loaded)
	}

	report := moduleReport{
		Key:         string(mod.Key),
		Name:        mod.Name,
		Description: mod.Description,
		Exports:     mod.Exports,
	}
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(outW, string(encoded))
	return nil
}

// listManifests prints the root-relative path of every manifest file under
// the runtime's root directory.
func listManifests(outW io.Writer, rt *modrt.Runtime) error {
	manifests, err := fsutil.FindByExtension(rt.Root(), ".hcl")
	if err != nil {
		return err
	}
	for _, path := range manifests {
		rel, err := filepath.Rel(rt.Root(), path)
		if err != nil {
			rel = path
		}
		fmt.Fprintln(outW, rel)
	}
	return nil
}
