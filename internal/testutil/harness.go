package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/modmock/modrt"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteModuleTree writes the given files (relative path to content) under a
// fresh temporary directory and returns that directory. Parent directories
// are created as needed, so nested module layouts come from the paths alone.
func WriteModuleTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// SetupRuntime creates a runtime rooted at a temporary module tree for
// system testing, with the given builtins registered and a debug logger
// writing to the returned buffer.
func SetupRuntime(t *testing.T, files map[string]string, builtins ...modrt.Builtin) (*modrt.Runtime, context.Context, *SafeBuffer) {
	t.Helper()

	root := WriteModuleTree(t, files)

	logBuffer := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := modrt.WithLogger(context.Background(), logger)

	rt, err := modrt.New(modrt.Config{Root: root})
	require.NoError(t, err)
	for _, b := range builtins {
		rt.RegisterBuiltin(b)
	}

	t.Cleanup(func() {
		if os.Getenv("MODMOCK_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return rt, ctx, logBuffer
}

// Exports asserts that a loaded module value is a *modrt.Module and returns
// its export map.
func Exports(t *testing.T, v any) map[string]any {
	t.Helper()
	mod, ok := v.(*modrt.Module)
	require.True(t, ok, "expected a *modrt.Module, got %T", v)
	return mod.Exports
}
