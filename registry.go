package modmock

import (
	"context"
	"fmt"

	"github.com/vk/modmock/internal/ctxlog"
	"github.com/vk/modmock/modrt"
)

// RegisterMock installs a value returned verbatim, bypassing the module
// cache, for every load of the named module while interception is active.
// The name must resolve; resolution errors are returned as-is. Registering
// over an existing mock replaces it, with a warning unless suppressed.
func (m *Mock) RegisterMock(ctx context.Context, spec string, value any) error {
	key, err := m.st.rt.Resolve(ctx, spec, m.from)
	if err != nil {
		return err
	}
	st := m.st
	st.mu.Lock()
	_, replacing := st.mocks[key]
	warn := replacing && st.opts.warnOnReplace
	st.mocks[key] = value
	st.mu.Unlock()
	if warn {
		ctxlog.FromContext(ctx).Warn("Replacing existing mock registration.", "spec", spec, "key", string(key))
	}
	return nil
}

// DeregisterMock removes the mock for the named module. Deregistering a
// module that was never mocked is a no-op.
func (m *Mock) DeregisterMock(ctx context.Context, spec string) error {
	key, err := m.st.rt.Resolve(ctx, spec, m.from)
	if err != nil {
		return err
	}
	st := m.st
	st.mu.Lock()
	delete(st.mocks, key)
	st.mu.Unlock()
	return nil
}

// RegisterSubstitute redirects loads of the named module to the module named
// by target, which is loaded lazily on first use and memoized. A nil target
// marks the module as explicitly absent: loads of it fail as not-found. Any
// other non-string target reports ErrInvalidTarget.
func (m *Mock) RegisterSubstitute(ctx context.Context, spec string, target any) error {
	var sub substitution
	switch t := target.(type) {
	case nil:
		sub.absent = true
	case string:
		if t == "" {
			return fmt.Errorf("%w: substitute target for '%s' must be a non-empty module name or nil", ErrInvalidTarget, spec)
		}
		sub.target = t
	default:
		return fmt.Errorf("%w: substitute target for '%s' must be a module name or nil, got %T", ErrInvalidTarget, spec, target)
	}

	key, err := m.st.rt.Resolve(ctx, spec, m.from)
	if err != nil {
		return err
	}
	sub.from = m.from

	st := m.st
	st.mu.Lock()
	_, replacing := st.substitutes[key]
	warn := replacing && st.opts.warnOnReplace
	st.substitutes[key] = &sub
	st.mu.Unlock()
	if warn {
		ctxlog.FromContext(ctx).Warn("Replacing existing substitute registration.", "spec", spec, "key", string(key))
	}
	return nil
}

// DeregisterSubstitute removes the substitute for the named module,
// discarding any memoized replacement. Deregistering a module that has no
// substitute is a no-op.
func (m *Mock) DeregisterSubstitute(ctx context.Context, spec string) error {
	key, err := m.st.rt.Resolve(ctx, spec, m.from)
	if err != nil {
		return err
	}
	st := m.st
	st.mu.Lock()
	delete(st.substitutes, key)
	st.mu.Unlock()
	return nil
}

// RegisterAllowable marks the named module as expected to load for real
// while interception is active, suppressing the unregistered-module warning.
// With unhook set, the cache entries the allowance produces are evicted when
// it is deregistered; builtin modules are rejected with ErrBuiltinUnhook
// since their cache entries deliberately survive isolation.
func (m *Mock) RegisterAllowable(ctx context.Context, spec string, unhook bool) error {
	key, err := m.st.rt.Resolve(ctx, spec, m.from)
	if err != nil {
		return err
	}
	if unhook && key.Builtin() {
		return fmt.Errorf("%w: '%s'", ErrBuiltinUnhook, spec)
	}
	st := m.st
	st.mu.Lock()
	st.allowables[key] = &allowance{unhook: unhook}
	st.mu.Unlock()
	return nil
}

// RegisterAllowables registers each named module as an allowable, stopping
// at the first failure. Modules registered before the failure stay
// registered.
func (m *Mock) RegisterAllowables(ctx context.Context, specs []string, unhook bool) error {
	for _, spec := range specs {
		if err := m.RegisterAllowable(ctx, spec, unhook); err != nil {
			return err
		}
	}
	return nil
}

// DeregisterAllowable removes the allowance for the named module, evicting
// every cache entry recorded while its unhook flag was set. Deregistering a
// module that was never allowed is a no-op.
func (m *Mock) DeregisterAllowable(ctx context.Context, spec string) error {
	key, err := m.st.rt.Resolve(ctx, spec, m.from)
	if err != nil {
		return err
	}
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	if allow, ok := st.allowables[key]; ok {
		st.evictLocked(allow)
		delete(st.allowables, key)
	}
	return nil
}

// DeregisterAllowables deregisters each named module, stopping at the first
// resolution failure.
func (m *Mock) DeregisterAllowables(ctx context.Context, specs []string) error {
	for _, spec := range specs {
		if err := m.DeregisterAllowable(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

// DeregisterAll removes every mock, substitute, and allowable registered for
// the runtime, evicting the cache entries recorded by unhook allowances. The
// interception hook itself is left in whatever state it is in.
func (m *Mock) DeregisterAll() {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, allow := range st.allowables {
		st.evictLocked(allow)
	}
	st.mocks = make(map[modrt.Key]any)
	st.substitutes = make(map[modrt.Key]*substitution)
	st.allowables = make(map[modrt.Key]*allowance)
}

// evictLocked deletes the allowance's observed keys from the live cache.
func (st *state) evictLocked(allow *allowance) {
	if !allow.unhook || len(allow.observed) == 0 {
		return
	}
	cache := st.rt.Cache()
	for _, key := range allow.observed {
		delete(cache, key)
	}
	allow.observed = nil
}

// WarnOnReplace toggles the replaced-registration warning, taking effect
// immediately for subsequent registrations.
func (m *Mock) WarnOnReplace(enabled bool) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.opts.warnOnReplace = enabled
}

// WarnOnUnregistered toggles the unregistered-module warning, taking effect
// immediately for subsequent loads.
func (m *Mock) WarnOnUnregistered(enabled bool) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.opts.warnOnUnregistered = enabled
}
