package modrt

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree writes the given files (relative path to content) under a fresh
// temporary directory and returns that directory.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// newTestRuntime builds a runtime rooted at a temporary module tree.
func newTestRuntime(t *testing.T, files map[string]string) (*Runtime, context.Context) {
	t.Helper()
	rt, err := New(Config{Root: writeTree(t, files)})
	require.NoError(t, err)
	return rt, testContext()
}

// testContext returns a context with a discard logger, keeping debug output
// out of test logs.
func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return WithLogger(context.Background(), logger)
}
