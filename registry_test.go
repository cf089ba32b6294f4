package modmock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modmock/internal/testutil"
	"github.com/vk/modmock/modrt"
)

func noopBuiltin(name string) modrt.Builtin {
	return modrt.Builtin{
		Name: name,
		Load: func(context.Context) (map[string]any, error) { return map[string]any{}, nil },
	}
}

func TestRegisterMock(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
	}

	t.Run("unresolvable name propagates not found", func(t *testing.T) {
		m, _, ctx, _ := setup(t, nil)
		err := m.RegisterMock(ctx, "missing", "fake")
		var notFound *modrt.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.Spec)
	})

	t.Run("registration applies regardless of request spelling", func(t *testing.T) {
		m, rt, ctx, _ := setup(t, files)
		require.NoError(t, m.RegisterMock(ctx, "widgets", "fake"))

		m.Enable(ctx)
		defer m.Disable(ctx)

		v, err := rt.Load(ctx, "./widgets", "")
		require.NoError(t, err)
		assert.Equal(t, "fake", v)
	})

	t.Run("replacing an existing mock warns", func(t *testing.T) {
		m, _, ctx, logs := setup(t, files)
		require.NoError(t, m.RegisterMock(ctx, "widgets", "first"))
		require.NoError(t, m.RegisterMock(ctx, "widgets", "second"))
		testutil.AssertLogged(t, logs, "Replacing existing mock registration.")
	})

	t.Run("replace warning can be toggled off", func(t *testing.T) {
		m, _, ctx, logs := setup(t, files)
		m.WarnOnReplace(false)
		require.NoError(t, m.RegisterMock(ctx, "widgets", "first"))
		require.NoError(t, m.RegisterMock(ctx, "widgets", "second"))
		testutil.AssertNotLogged(t, logs, "Replacing existing mock registration.")
	})
}

func TestDeregisterMock(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
	}

	t.Run("removes the mock", func(t *testing.T) {
		m, rt, ctx, _ := setup(t, files)
		require.NoError(t, m.RegisterMock(ctx, "widgets", "fake"))
		require.NoError(t, m.DeregisterMock(ctx, "widgets"))

		m.Enable(ctx)
		defer m.Disable(ctx)
		assert.Equal(t, "real", exportKind(t, ctx, rt, "widgets"))
	})

	t.Run("never-mocked module is a no-op", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		assert.NoError(t, m.DeregisterMock(ctx, "widgets"))
	})

	t.Run("unresolvable name propagates not found", func(t *testing.T) {
		m, _, ctx, _ := setup(t, nil)
		var notFound *modrt.NotFoundError
		assert.ErrorAs(t, m.DeregisterMock(ctx, "missing"), &notFound)
	})
}

func TestRegisterSubstitute(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
		"stub.hcl":           stubManifest,
	}

	t.Run("non-string target is rejected immediately", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		err := m.RegisterSubstitute(ctx, "widgets", 42)
		require.ErrorIs(t, err, ErrInvalidTarget)

		m.Enable(ctx)
		defer m.Disable(ctx)
		assert.Equal(t, "real", exportKind(t, ctx, m.Runtime(), "widgets"), "nothing should have been registered")
	})

	t.Run("empty target is rejected", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		assert.ErrorIs(t, m.RegisterSubstitute(ctx, "widgets", ""), ErrInvalidTarget)
	})

	t.Run("unresolvable name propagates not found", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		var notFound *modrt.NotFoundError
		assert.ErrorAs(t, m.RegisterSubstitute(ctx, "missing", "stub"), &notFound)
	})

	t.Run("replacing an existing substitute warns", func(t *testing.T) {
		m, _, ctx, logs := setup(t, files)
		require.NoError(t, m.RegisterSubstitute(ctx, "widgets", "stub"))
		require.NoError(t, m.RegisterSubstitute(ctx, "widgets", "stub"))
		testutil.AssertLogged(t, logs, "Replacing existing substitute registration.")
	})
}

func TestDeregisterSubstitute(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
		"stub.hcl":           stubManifest,
	}

	t.Run("removes the substitute", func(t *testing.T) {
		m, rt, ctx, _ := setup(t, files)
		require.NoError(t, m.RegisterSubstitute(ctx, "widgets", "stub"))
		require.NoError(t, m.DeregisterSubstitute(ctx, "widgets"))

		m.Enable(ctx)
		defer m.Disable(ctx)
		assert.Equal(t, "real", exportKind(t, ctx, rt, "widgets"))
	})

	t.Run("never-substituted module is a no-op", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		assert.NoError(t, m.DeregisterSubstitute(ctx, "widgets"))
	})
}

func TestRegisterAllowable(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
	}

	t.Run("builtin with unhook is rejected", func(t *testing.T) {
		m, _, ctx, _ := setup(t, nil, noopBuiltin("env"))
		err := m.RegisterAllowable(ctx, "env", true)
		assert.ErrorIs(t, err, ErrBuiltinUnhook)
	})

	t.Run("builtin without unhook is accepted", func(t *testing.T) {
		m, _, ctx, _ := setup(t, nil, noopBuiltin("env"))
		assert.NoError(t, m.RegisterAllowable(ctx, "env", false))
	})

	t.Run("unresolvable name propagates not found", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		var notFound *modrt.NotFoundError
		assert.ErrorAs(t, m.RegisterAllowable(ctx, "missing", false), &notFound)
	})
}

func TestRegisterAllowables(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
		"gadgets/module.hcl": widgetManifest,
	}

	t.Run("registers every name", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		require.NoError(t, m.RegisterAllowables(ctx, []string{"widgets", "gadgets"}, false))
		m.st.mu.Lock()
		defer m.st.mu.Unlock()
		assert.Len(t, m.st.allowables, 2)
	})

	t.Run("stops at the first failure, keeping earlier registrations", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		err := m.RegisterAllowables(ctx, []string{"widgets", "missing", "gadgets"}, false)
		var notFound *modrt.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.Spec)

		m.st.mu.Lock()
		defer m.st.mu.Unlock()
		assert.Len(t, m.st.allowables, 1, "only the registration before the failure should remain")
	})
}

func TestDeregisterAllowable(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
	}

	t.Run("unhooked entries are evicted from the cache", func(t *testing.T) {
		m, rt, ctx, _ := setup(t, files)
		require.NoError(t, m.RegisterAllowable(ctx, "widgets", true))

		m.Enable(ctx)
		defer m.Disable(ctx)

		first, err := rt.Load(ctx, "widgets", "")
		require.NoError(t, err)

		require.NoError(t, m.DeregisterAllowable(ctx, "widgets"))
		assert.Empty(t, rt.Cache(), "the observed cache entry should be gone")

		second, err := rt.Load(ctx, "widgets", "")
		require.NoError(t, err)
		assert.NotSame(t, first, second, "the module should reload from disk")
	})

	t.Run("without unhook the cache entry stays", func(t *testing.T) {
		m, rt, ctx, _ := setup(t, files)
		require.NoError(t, m.RegisterAllowable(ctx, "widgets", false))

		m.Enable(ctx)
		defer m.Disable(ctx)

		first, err := rt.Load(ctx, "widgets", "")
		require.NoError(t, err)

		require.NoError(t, m.DeregisterAllowable(ctx, "widgets"))

		second, err := rt.Load(ctx, "widgets", "")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("never-allowed module is a no-op", func(t *testing.T) {
		m, _, ctx, _ := setup(t, files)
		assert.NoError(t, m.DeregisterAllowable(ctx, "widgets"))
	})
}

func TestDeregisterAllowables(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
		"gadgets/module.hcl": widgetManifest,
	}

	m, _, ctx, _ := setup(t, files)
	require.NoError(t, m.RegisterAllowables(ctx, []string{"widgets", "gadgets"}, false))
	require.NoError(t, m.DeregisterAllowables(ctx, []string{"widgets", "gadgets"}))

	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	assert.Empty(t, m.st.allowables)
}

func TestDeregisterAll(t *testing.T) {
	files := map[string]string{
		"widgets/module.hcl": widgetManifest,
		"gadgets/module.hcl": widgetManifest,
		"stub.hcl":           stubManifest,
	}

	t.Run("clears every registry and evicts unhooked entries", func(t *testing.T) {
		m, rt, ctx, _ := setup(t, files)
		require.NoError(t, m.RegisterMock(ctx, "widgets", "fake"))
		require.NoError(t, m.RegisterSubstitute(ctx, "gadgets", "stub"))
		require.NoError(t, m.RegisterAllowable(ctx, "stub", true))

		m.Enable(ctx)
		defer m.Disable(ctx)

		_, err := rt.Load(ctx, "stub", "")
		require.NoError(t, err)

		m.DeregisterAll()

		assert.Empty(t, rt.Cache(), "the unhooked stub entry should be evicted")
		assert.Equal(t, "real", exportKind(t, ctx, rt, "widgets"), "mocks should be gone")
	})

	t.Run("leaves the hook installed", func(t *testing.T) {
		m, rt, ctx, logs := setup(t, files)
		m.Enable(ctx)
		defer m.Disable(ctx)

		m.DeregisterAll()

		_, err := rt.Load(ctx, "widgets", "")
		require.NoError(t, err)
		testutil.AssertLogged(t, logs, "Loading module with no mock registration.")
	})
}
