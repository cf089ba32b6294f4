// Package modrt implements a small embeddable module runtime.
//
// A module is either an HCL manifest file on disk or a builtin backed by
// registered Go code. Requests are resolved by name to a canonical Key:
// relative requests resolve against the requesting module's directory, bare
// names against the configured root and search paths, and builtin names take
// precedence over everything on disk. Loaded modules are memoized in a
// per-runtime cache keyed by their canonical Key.
//
// The runtime deliberately exposes its two seams: the load entry point every
// Load call routes through (LoadFunc, SetLoadFunc) and the module cache
// (Cache, SetCache). Replacing the load function lets a caller observe or
// intercept every module load; package modmock builds its mocking facade on
// exactly this surface.
package modrt
