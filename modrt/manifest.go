package modrt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/modmock/internal/ctxlog"
)

// manifestConfig represents the top-level structure of a module manifest file.
type manifestConfig struct {
	Module  *moduleBlock   `hcl:"module,block"`
	Exports []*exportBlock `hcl:"export,block"`
}

// moduleBlock carries the optional descriptive metadata of a manifest.
type moduleBlock struct {
	Name        string `hcl:"name,optional"`
	Description string `hcl:"description,optional"`
}

// exportBlock defines a single named value exported by the module.
type exportBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

// loadManifest parses, decodes, and evaluates the manifest file at key.
func (rt *Runtime) loadManifest(ctx context.Context, key Key) (*Module, error) {
	logger := ctxlog.FromContext(ctx)
	path := string(key)
	logger.Debug("Decoding module manifest.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse module manifest %s: %s", path, diags.Error())
	}

	var config manifestConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode module manifest %s: %s", path, diags.Error())
	}

	exports := make(map[string]any, len(config.Exports))
	for _, export := range config.Exports {
		if _, exists := exports[export.Name]; exists {
			return nil, fmt.Errorf("duplicate export '%s' in module manifest %s", export.Name, path)
		}
		val, diags := export.Value.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate export '%s' in %s: %s", export.Name, path, diags.Error())
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("export '%s' in %s: %w", export.Name, path, err)
		}
		exports[export.Name] = native
	}

	mod := &Module{Key: key, Name: defaultName(path), Exports: exports}
	if config.Module != nil {
		if config.Module.Name != "" {
			mod.Name = config.Module.Name
		}
		mod.Description = config.Module.Description
	}
	logger.Debug("Successfully decoded module manifest.", "path", path, "exports_found", len(exports))
	return mod, nil
}

// defaultName derives a module name from its manifest path when the manifest
// does not declare one: the directory name for module.hcl manifests, the
// file name without extension otherwise.
func defaultName(path string) string {
	base := filepath.Base(path)
	if base == "module.hcl" {
		return filepath.Base(filepath.Dir(path))
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
