package modrt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// BuiltinLoader produces the export map of a builtin module. It is invoked
// at most once per cache lifetime, on the first load of the builtin.
type BuiltinLoader func(ctx context.Context) (map[string]any, error)

// Builtin is a module backed by registered Go code instead of a manifest
// file on disk.
type Builtin struct {
	Name string
	Load BuiltinLoader
}

// RegisterBuiltin registers a builtin module. Builtin names take precedence
// over on-disk modules during resolution, so they must be plain names with
// no path or key separator characters. Registering an invalid or duplicate
// builtin panics.
func (rt *Runtime) RegisterBuiltin(b Builtin) {
	if b.Name == "" {
		panic("builtin module registered with an empty name")
	}
	if strings.ContainsAny(b.Name, `/\:`) {
		panic(fmt.Sprintf("builtin module name '%s' contains separator characters", b.Name))
	}
	if b.Load == nil {
		panic(fmt.Sprintf("builtin module '%s' registered with a nil loader", b.Name))
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, exists := rt.builtins[b.Name]; exists {
		panic(fmt.Sprintf("builtin module with name '%s' already registered", b.Name))
	}
	slog.Debug("Registering builtin module.", "name", b.Name)
	rt.builtins[b.Name] = b
}

// builtin looks up a registered builtin by name.
func (rt *Runtime) builtin(name string) (Builtin, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	b, ok := rt.builtins[name]
	return b, ok
}
