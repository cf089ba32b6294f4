package modmock

import (
	"context"

	"github.com/vk/modmock/internal/ctxlog"
	"github.com/vk/modmock/modrt"
)

// Enable installs the interception hook on the facade's runtime. While the
// hook is installed, every module load routes through the mock registries
// before (possibly) reaching the runtime's native loader.
//
// Enabling an already-hooked runtime is a no-op: the options captured by the
// first enable stay in force until Disable.
func (m *Mock) Enable(ctx context.Context, opts ...Option) {
	logger := ctxlog.FromContext(ctx)
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.hooked {
		logger.Debug("Module interception already enabled; ignoring.")
		return
	}

	st.opts = defaultOptions()
	for _, opt := range opts {
		opt(&st.opts)
	}

	if st.opts.cleanCache {
		st.origCache = st.rt.Cache()
		st.rt.SetCache(isolatedCache(st.origCache))
	}
	st.origLoad = st.rt.LoadFunc()
	st.rt.SetLoadFunc(st.intercept)
	st.hooked = true
	logger.Debug("Module interception enabled.", "clean_cache", st.opts.cleanCache)
}

// Disable removes the interception hook, restoring the runtime's native
// loader and, in clean-cache mode, its original module cache. Registrations
// survive and apply again on the next Enable. Disabling an unhooked runtime
// is a no-op.
func (m *Mock) Disable(ctx context.Context) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.unhookLocked(ctx)
}

func (st *state) unhookLocked(ctx context.Context) {
	if !st.hooked {
		return
	}
	if st.opts.cleanCache {
		restoreNativeEntries(st.rt.Cache(), st.origCache)
		st.rt.SetCache(st.origCache)
		st.origCache = nil
	}
	st.rt.SetLoadFunc(st.origLoad)
	st.origLoad = nil
	st.hooked = false
	ctxlog.FromContext(ctx).Debug("Module interception disabled.")
}

// intercept is the load function installed by Enable. It consults the
// registries in precedence order: mocks, substitutes, allowables, then the
// loader saved at enable time.
func (st *state) intercept(ctx context.Context, req modrt.Request) (any, error) {
	logger := ctxlog.FromContext(ctx)

	st.mu.Lock()
	if !st.hooked {
		// A caller holding a stale reference to the hook after Disable.
		st.mu.Unlock()
		return nil, ErrNotHooked
	}
	orig := st.origLoad

	key, err := st.rt.Resolve(ctx, req.Spec, req.From)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}

	if v, ok := st.mocks[key]; ok {
		st.mu.Unlock()
		logger.Debug("Returning mock for module.", "spec", req.Spec, "key", string(key))
		return v, nil
	}

	if sub, ok := st.substitutes[key]; ok {
		if sub.absent {
			st.mu.Unlock()
			return nil, &modrt.NotFoundError{Spec: req.Spec, From: req.From}
		}
		if sub.loaded {
			v := sub.value
			st.mu.Unlock()
			return v, nil
		}
		target, from := sub.target, sub.from
		st.mu.Unlock()
		logger.Debug("Loading substitute for module.", "spec", req.Spec, "target", target)
		v, err := orig(ctx, modrt.Request{Spec: target, From: from, Main: req.Main})
		if err != nil {
			return nil, err
		}
		st.mu.Lock()
		if !sub.loaded {
			sub.value = v
			sub.loaded = true
		}
		v = sub.value
		st.mu.Unlock()
		return v, nil
	}

	if allow, ok := st.allowables[key]; ok {
		if allow.unhook && !key.Builtin() && !containsKey(allow.observed, key) {
			allow.observed = append(allow.observed, key)
		}
		st.mu.Unlock()
		return orig(ctx, req)
	}

	warn := st.opts.warnOnUnregistered
	st.mu.Unlock()
	if warn {
		logger.Warn("Loading module with no mock registration.", "spec", req.Spec, "key", string(key))
	}
	return orig(ctx, req)
}

func containsKey(keys []modrt.Key, key modrt.Key) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
