package modmock

import (
	"context"
	"testing"

	"github.com/vk/modmock/internal/testutil"
	"github.com/vk/modmock/modrt"
)

const widgetManifest = `
module {
	name = "widgets"
}

export "kind" {
	value = "real"
}
`

const stubManifest = `
export "kind" {
	value = "stub"
}
`

// setup builds a runtime over the given module tree and returns its
// top-level facade, forgetting all mocking state when the test ends.
func setup(t *testing.T, files map[string]string, builtins ...modrt.Builtin) (*Mock, *modrt.Runtime, context.Context, *testutil.SafeBuffer) {
	t.Helper()
	rt, ctx, logs := testutil.SetupRuntime(t, files, builtins...)
	m := Instance(rt, "")
	t.Cleanup(func() { ForgetInstances(ctx, rt) })
	return m, rt, ctx, logs
}

// exportKind loads spec through the runtime and returns its "kind" export.
func exportKind(t *testing.T, ctx context.Context, rt *modrt.Runtime, spec string) string {
	t.Helper()
	v, err := rt.Load(ctx, spec, "")
	if err != nil {
		t.Fatalf("loading '%s' failed: %v", spec, err)
	}
	kind, ok := testutil.Exports(t, v)["kind"].(string)
	if !ok {
		t.Fatalf("module '%s' has no string 'kind' export", spec)
	}
	return kind
}
