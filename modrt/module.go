package modrt

import (
	"context"
	"strings"
)

// builtinPrefix marks the canonical keys of builtin modules. File-backed
// modules use their absolute manifest path as the key instead.
const builtinPrefix = "builtin:"

// Key is the canonical identity of a resolved module: the absolute path of
// its manifest file, or "builtin:<name>" for a builtin module. Two requests
// that resolve to the same Key denote the same module.
type Key string

// BuiltinKey returns the canonical key for the builtin module with the given
// name.
func BuiltinKey(name string) Key {
	return Key(builtinPrefix + name)
}

// Builtin reports whether the key denotes a builtin module.
func (k Key) Builtin() bool {
	return strings.HasPrefix(string(k), builtinPrefix)
}

// BuiltinName returns the builtin module name encoded in the key, or the
// empty string for file-backed keys.
func (k Key) BuiltinName() string {
	if !k.Builtin() {
		return ""
	}
	return strings.TrimPrefix(string(k), builtinPrefix)
}

// Request describes one module load: what was asked for, and on whose
// behalf. From is empty for top-level loads made from outside any module.
type Request struct {
	Spec string
	From Key
	Main bool
}

// LoadFunc is the runtime's load entry point. Every Load and LoadMain call
// routes through the currently installed LoadFunc.
type LoadFunc func(ctx context.Context, req Request) (any, error)

// ModuleCache memoizes loaded modules by their canonical key.
type ModuleCache map[Key]any

// Module is the loaded form of a manifest or builtin module.
type Module struct {
	Key         Key
	Name        string
	Description string
	Exports     map[string]any
	Main        bool
}
