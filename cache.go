package modmock

import (
	"context"

	"github.com/vk/modmock/internal/ctxlog"
	"github.com/vk/modmock/modrt"
)

// isolatedCache returns a fresh cache seeded with the builtin entries of
// prev, so builtins keep their single loaded instance across the swap.
func isolatedCache(prev modrt.ModuleCache) modrt.ModuleCache {
	next := make(modrt.ModuleCache)
	for key, val := range prev {
		if key.Builtin() {
			next[key] = val
		}
	}
	return next
}

// restoreNativeEntries copies builtin entries loaded during the isolated
// window back into the original cache before it is reinstated.
func restoreNativeEntries(live, orig modrt.ModuleCache) {
	for key, val := range live {
		if key.Builtin() {
			orig[key] = val
		}
	}
}

// ResetCache discards every module cached since interception was enabled by
// installing a fresh cache on the runtime. It is a no-op unless the hook is
// active and was enabled with WithCleanCache(true); the runtime's original
// cache is never touched.
func (m *Mock) ResetCache(ctx context.Context) {
	st := m.st
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.hooked || !st.opts.cleanCache {
		return
	}
	st.rt.SetCache(make(modrt.ModuleCache))
	ctxlog.FromContext(ctx).Debug("Isolated module cache reset.")
}
