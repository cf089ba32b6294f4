// Package env provides the "env" builtin module, exposing the process
// environment to manifest consumers.
package env

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/vk/modmock/modrt"
)

// Builtin returns the env builtin. Its exports are:
//
//   - "vars": map of variable name to value
//   - "names": variable names, sorted
//
// The environment is snapshotted when the builtin first loads.
func Builtin() modrt.Builtin {
	return modrt.Builtin{Name: "env", Load: load}
}

func load(ctx context.Context) (map[string]any, error) {
	environ := os.Environ()
	vars := make(map[string]any, len(environ))
	names := make([]string, 0, len(environ))
	for _, entry := range environ {
		pair := strings.SplitN(entry, "=", 2)
		if len(pair) != 2 {
			continue
		}
		vars[pair[0]] = pair[1]
		names = append(names, pair[0])
	}
	sort.Strings(names)

	exported := make([]any, len(names))
	for i, name := range names {
		exported[i] = name
	}
	return map[string]any{
		"vars":  vars,
		"names": exported,
	}, nil
}
