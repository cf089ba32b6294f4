package modmock

import (
	"context"
	"sync"

	"github.com/vk/modmock/modrt"
)

// Mock is a facade over a runtime's shared mocking state, bound to the
// resolution context of a single requesting module. Every module name passed
// to the facade is resolved from that context before it touches a registry.
type Mock struct {
	st   *state
	from modrt.Key
}

// state is the mocking state shared by every facade bound to the same
// runtime: the three registries, the live options, and the hook bookkeeping.
type state struct {
	rt *modrt.Runtime

	mu        sync.Mutex
	opts      options
	hooked    bool
	origLoad  modrt.LoadFunc
	origCache modrt.ModuleCache

	mocks       map[modrt.Key]any
	substitutes map[modrt.Key]*substitution
	allowables  map[modrt.Key]*allowance
}

// substitution redirects loads of one module to another. The replacement is
// loaded lazily, at most once, through the loader saved at enable time.
type substitution struct {
	target string    // replacement module name; unset when absent
	absent bool      // registered with a nil target: loads fail as not-found
	from   modrt.Key // resolution context captured at registration
	value  any
	loaded bool
}

// allowance marks a module as expected to load while interception is
// active. With unhook set, observed records the file-backed cache keys the
// allowance produced, for eviction on deregistration.
type allowance struct {
	unhook   bool
	observed []modrt.Key
}

func newState(rt *modrt.Runtime) *state {
	return &state{
		rt:          rt,
		opts:        defaultOptions(),
		mocks:       make(map[modrt.Key]any),
		substitutes: make(map[modrt.Key]*substitution),
		allowables:  make(map[modrt.Key]*allowance),
	}
}

// instanceKey identifies one memoized facade.
type instanceKey struct {
	rt   *modrt.Runtime
	from modrt.Key
}

var (
	instMu    sync.Mutex
	states    = make(map[*modrt.Runtime]*state)
	instances = make(map[instanceKey]*Mock)
)

// Instance returns the facade for rt bound to the resolution context of the
// module identified by from; pass an empty key for top-level context.
// Facades are memoized: the same runtime and context always yield the same
// *Mock, and all facades for one runtime share registrations and hook state.
func Instance(rt *modrt.Runtime, from modrt.Key) *Mock {
	if rt == nil {
		panic("modmock: Instance called with a nil runtime")
	}
	instMu.Lock()
	defer instMu.Unlock()
	ik := instanceKey{rt: rt, from: from}
	if m, ok := instances[ik]; ok {
		return m
	}
	st, ok := states[rt]
	if !ok {
		st = newState(rt)
		states[rt] = st
	}
	m := &Mock{st: st, from: from}
	instances[ik] = m
	return m
}

// ForgetInstances releases every facade and all mocking state held for rt,
// disabling interception first if it is still active. Subsequent Instance
// calls for rt start from fresh state.
func ForgetInstances(ctx context.Context, rt *modrt.Runtime) {
	instMu.Lock()
	st := states[rt]
	delete(states, rt)
	for ik := range instances {
		if ik.rt == rt {
			delete(instances, ik)
		}
	}
	instMu.Unlock()

	if st != nil {
		st.mu.Lock()
		st.unhookLocked(ctx)
		st.mu.Unlock()
	}
}

// Runtime returns the runtime this facade is bound to.
func (m *Mock) Runtime() *modrt.Runtime {
	return m.st.rt
}

// From returns the resolution context this facade is bound to.
func (m *Mock) From() modrt.Key {
	return m.from
}
