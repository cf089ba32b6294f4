package modrt

import (
	"context"
	"fmt"

	"github.com/vk/modmock/internal/ctxlog"
)

// Load resolves and loads the module named by spec on behalf of the
// requesting module identified by from. The call routes through the
// currently installed load function.
func (rt *Runtime) Load(ctx context.Context, spec string, from Key) (any, error) {
	return rt.dispatch(ctx, Request{Spec: spec, From: from})
}

// LoadMain loads spec as the program's entry module. Entry modules resolve
// against the root and are flagged as Main.
func (rt *Runtime) LoadMain(ctx context.Context, spec string) (any, error) {
	return rt.dispatch(ctx, Request{Spec: spec, Main: true})
}

// dispatch snapshots the installed load function under the lock and invokes
// it outside the lock, so a replacement load function may itself call back
// into the runtime.
func (rt *Runtime) dispatch(ctx context.Context, req Request) (any, error) {
	rt.mu.Lock()
	fn := rt.loadFn
	rt.mu.Unlock()
	return fn(ctx, req)
}

// loadDefault is the runtime's native load path: resolve, consult the cache,
// load the builtin or manifest on a miss, then cache the result. Failed
// loads are not cached.
func (rt *Runtime) loadDefault(ctx context.Context, req Request) (any, error) {
	logger := ctxlog.FromContext(ctx)

	key, err := rt.Resolve(ctx, req.Spec, req.From)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	cached, hit := rt.cache[key]
	rt.mu.Unlock()
	if hit {
		logger.Debug("Module cache hit.", "key", string(key))
		return cached, nil
	}

	var mod *Module
	if name := key.BuiltinName(); name != "" {
		mod, err = rt.loadBuiltin(ctx, key, name)
	} else {
		mod, err = rt.loadManifest(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	mod.Main = req.Main

	rt.mu.Lock()
	rt.cache[key] = mod
	rt.mu.Unlock()
	logger.Debug("Module loaded and cached.", "key", string(key), "name", mod.Name)
	return mod, nil
}

// loadBuiltin invokes the builtin's loader to produce its export map.
func (rt *Runtime) loadBuiltin(ctx context.Context, key Key, name string) (*Module, error) {
	b, ok := rt.builtin(name)
	if !ok {
		return nil, &NotFoundError{Spec: name}
	}
	exports, err := b.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("builtin module '%s' failed to load: %w", name, err)
	}
	return &Module{Key: key, Name: name, Exports: exports}, nil
}
