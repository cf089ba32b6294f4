package modrt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vk/modmock/internal/ctxlog"
)

// Config carries the settings needed to construct a Runtime.
type Config struct {
	// Root is the directory bare module names resolve against. Required.
	Root string

	// SearchPaths are additional directories probed, in order, when a bare
	// name does not resolve under Root.
	SearchPaths []string
}

// Runtime resolves, loads, and caches modules. All methods are safe for
// concurrent use.
type Runtime struct {
	root        string
	searchPaths []string

	mu       sync.Mutex
	loadFn   LoadFunc
	cache    ModuleCache
	builtins map[string]Builtin
}

// New validates cfg and constructs a Runtime with the default load function
// and an empty module cache. Relative paths in cfg are made absolute.
func New(cfg Config) (*Runtime, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("module root directory is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve module root %s: %w", cfg.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("module root %s: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("module root %s is not a directory", cfg.Root)
	}

	searchPaths := make([]string, 0, len(cfg.SearchPaths))
	for _, p := range cfg.SearchPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search path %s: %w", p, err)
		}
		searchPaths = append(searchPaths, abs)
	}

	rt := &Runtime{
		root:        root,
		searchPaths: searchPaths,
		cache:       make(ModuleCache),
		builtins:    make(map[string]Builtin),
	}
	rt.loadFn = rt.loadDefault
	return rt, nil
}

// Root returns the absolute module root directory.
func (rt *Runtime) Root() string {
	return rt.root
}

// LoadFunc returns the currently installed load entry point.
func (rt *Runtime) LoadFunc() LoadFunc {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.loadFn
}

// SetLoadFunc installs fn as the load entry point. Callers replacing the
// entry point are expected to capture the previous one first and restore it
// when done. Passing nil panics.
func (rt *Runtime) SetLoadFunc(fn LoadFunc) {
	if fn == nil {
		panic("modrt: SetLoadFunc called with a nil LoadFunc")
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	slog.Debug("Replacing module load function.")
	rt.loadFn = fn
}

// Cache returns the live module cache. Mutating the returned map mutates the
// runtime's cache.
func (rt *Runtime) Cache() ModuleCache {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.cache
}

// SetCache installs c as the module cache. A nil c installs a fresh empty
// cache.
func (rt *Runtime) SetCache(c ModuleCache) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if c == nil {
		c = make(ModuleCache)
	}
	rt.cache = c
}

// WithLogger returns a new context carrying logger. The runtime logs through
// the context's logger, falling back to slog.Default when none is set.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return ctxlog.WithLogger(ctx, logger)
}
