package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modmock"
	"github.com/vk/modmock/internal/testutil"
)

const helperManifest = `
export "kind" {
	value = "real"
}
`

// Test for: Facades obtained at different call sites drive one shared
// mocking session per runtime.
func TestLifecycle_SharedSessionAcrossFacades(t *testing.T) {
	// --- Arrange ---
	rt, ctx, _ := testutil.SetupRuntime(t, map[string]string{
		"app/module.hcl":    helperManifest,
		"app/helper.hcl":    helperManifest,
		"shared/module.hcl": helperManifest,
	})
	t.Cleanup(func() { modmock.ForgetInstances(ctx, rt) })

	appKey, err := rt.Resolve(ctx, "app", "")
	require.NoError(t, err)

	topMock := modmock.Instance(rt, "")
	appMock := modmock.Instance(rt, appKey)

	// --- Act ---
	// One call site enables; another registers, using its own relative view.
	topMock.Enable(ctx, modmock.WithUnregisteredWarnings(false))
	defer topMock.Disable(ctx)

	require.NoError(t, appMock.RegisterMock(ctx, "./helper", "fake-helper"))
	require.NoError(t, topMock.RegisterMock(ctx, "shared", "fake-shared"))

	// --- Assert ---
	// The helper mock applies to loads made from the app module's context.
	helper, err := rt.Load(ctx, "./helper", appKey)
	require.NoError(t, err)
	assert.Equal(t, "fake-helper", helper)

	// The shared mock applies no matter which facade registered it.
	shared, err := rt.Load(ctx, "shared", appKey)
	require.NoError(t, err)
	assert.Equal(t, "fake-shared", shared)

	// The same relative name from the top level is a different module and
	// stays unmocked.
	_, err = rt.Load(ctx, "./helper", "")
	assert.Error(t, err, "there is no helper module at the root")
}

// Test for: Advisory warnings surface replaced registrations and
// unregistered loads without failing anything.
func TestLifecycle_WarningSurface(t *testing.T) {
	// --- Arrange ---
	rt, ctx, logs := testutil.SetupRuntime(t, map[string]string{
		"widgets/module.hcl": helperManifest,
		"gadgets/module.hcl": helperManifest,
	})
	mock := modmock.Instance(rt, "")
	t.Cleanup(func() { modmock.ForgetInstances(ctx, rt) })

	mock.Enable(ctx)
	defer mock.Disable(ctx)

	// --- Act ---
	require.NoError(t, mock.RegisterMock(ctx, "widgets", "first"))
	require.NoError(t, mock.RegisterMock(ctx, "widgets", "second"))

	_, err := rt.Load(ctx, "gadgets", "")
	require.NoError(t, err)

	// --- Assert ---
	testutil.AssertLogged(t, logs, "Replacing existing mock registration.")
	testutil.AssertLogged(t, logs, "Loading module with no mock registration.")

	// Both warnings are advisory: the session still works.
	v, err := rt.Load(ctx, "widgets", "")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}
