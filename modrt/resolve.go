package modrt

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/modmock/internal/ctxlog"
)

// Resolve maps a module request to its canonical key. Builtin names win over
// anything on disk. Requests starting with "./" or "../" resolve against the
// requesting module's directory only; absolute requests are probed as-is;
// everything else is probed under the root and then each search path in
// order. A request that matches nothing returns a *NotFoundError.
func (rt *Runtime) Resolve(ctx context.Context, spec string, from Key) (Key, error) {
	if spec == "" {
		return "", &NotFoundError{Spec: spec, From: from}
	}
	if _, ok := rt.builtin(spec); ok {
		return BuiltinKey(spec), nil
	}
	for _, base := range rt.searchBases(spec, from) {
		if key, ok := probe(base, spec); ok {
			ctxlog.FromContext(ctx).Debug("Resolved module request.", "spec", spec, "key", string(key))
			return key, nil
		}
	}
	return "", &NotFoundError{Spec: spec, From: from}
}

// searchBases returns the directories to probe for spec, in order.
func (rt *Runtime) searchBases(spec string, from Key) []string {
	if filepath.IsAbs(spec) {
		return []string{""}
	}
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return []string{rt.requesterDir(from)}
	}
	return append([]string{rt.root}, rt.searchPaths...)
}

// requesterDir returns the directory relative requests from the given module
// resolve against. Top-level and builtin requesters resolve against the root.
func (rt *Runtime) requesterDir(from Key) string {
	if from == "" || from.Builtin() {
		return rt.root
	}
	return filepath.Dir(string(from))
}

// probe checks the on-disk candidates for spec under base, in order: the
// manifest of a module directory, a manifest file named directly, then a
// standalone "<spec>.hcl" file.
func probe(base, spec string) (Key, bool) {
	path := filepath.Join(base, spec)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			if manifest := filepath.Join(path, "module.hcl"); isFile(manifest) {
				return Key(manifest), true
			}
		} else {
			return Key(path), true
		}
	}
	if withExt := path + ".hcl"; isFile(withExt) {
		return Key(withExt), true
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
