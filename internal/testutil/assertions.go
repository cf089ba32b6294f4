package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged confirms that the captured log output contains the given
// substring. It keeps tests decoupled from the exact log line layout.
func AssertLogged(t *testing.T, logs *SafeBuffer, substring string) {
	t.Helper()
	require.True(t,
		strings.Contains(logs.String(), substring),
		"expected log output to contain '%s'", substring,
	)
}

// AssertNotLogged confirms that the captured log output does not contain the
// given substring.
func AssertNotLogged(t *testing.T, logs *SafeBuffer, substring string) {
	t.Helper()
	require.False(t,
		strings.Contains(logs.String(), substring),
		"expected log output to not contain '%s'", substring,
	)
}
