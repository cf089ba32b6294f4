// Package modmock intercepts module loading in a modrt.Runtime so tests can
// replace modules with mock values, redirect them to substitute modules, or
// mark them as allowed to load for real.
//
// A facade obtained from Instance binds the runtime's shared mocking state
// to the resolution context of one requesting module: relative module names
// passed to the facade resolve exactly as they would from that module. All
// facades for the same runtime share one set of registrations and one
// interception hook, so enabling, registering, and disabling may happen from
// different call sites.
//
// While the hook is enabled every load consults the registries in precedence
// order. A registered mock is returned verbatim. A substitute lazily loads
// its replacement module through the native loader and memoizes it; a nil
// substitute target makes the module fail to load as if it did not exist. An
// allowable loads normally without the unregistered-module warning, and can
// be registered with unhook so the cache entries it produced are evicted
// when it is deregistered. Anything else loads normally, with a warning.
//
// Enabling with WithCleanCache swaps in an isolated module cache for the
// duration of the hook; builtin modules keep their loaded instances across
// the swap, and Disable restores the original cache.
package modmock
